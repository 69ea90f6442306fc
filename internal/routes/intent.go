package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/voicebank/voicebank/internal/intent"
)

type intentRequest struct {
	Text string `json:"text"`
}

// RegisterIntentRoutes wires the keyword-matching intent endpoint.
func RegisterIntentRoutes(r fiber.Router) {
	r.Post("/intent/recognize", func(c *fiber.Ctx) error {
		var req intentRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		return c.Status(http.StatusOK).JSON(intent.Classify(req.Text))
	})
}
