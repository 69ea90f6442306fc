package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/voicebank/voicebank/internal/speech"
)

type synthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// RegisterVoiceRoutes wires the speech provider proxy endpoints.
func RegisterVoiceRoutes(r fiber.Router, client *speech.Client) {
	r.Post("/voice/transcribe", func(c *fiber.Ctx) error {
		header, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "audio file is required")
		}

		file, err := header.Open()
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		defer file.Close()

		text, err := client.Transcribe(c.UserContext(), header.Filename, file)
		if err != nil {
			if errors.Is(err, speech.ErrProviderFailure) {
				return fiber.NewError(http.StatusBadGateway, "transcription failed")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}

		return c.Status(http.StatusOK).JSON(fiber.Map{"text": text})
	})

	r.Post("/voice/synthesize", func(c *fiber.Ctx) error {
		// Text and voice arrive as query parameters; a JSON body works too.
		req := synthesizeRequest{Text: c.Query("text"), Voice: c.Query("voice")}
		if req.Text == "" {
			if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
				return fiber.NewError(http.StatusBadRequest, err.Error())
			}
		}
		if req.Text == "" {
			return fiber.NewError(http.StatusBadRequest, "text is required")
		}

		audio, err := client.Synthesize(c.UserContext(), req.Text, req.Voice)
		if err != nil {
			if errors.Is(err, speech.ErrProviderFailure) {
				return fiber.NewError(http.StatusBadGateway, "speech synthesis failed")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}

		c.Set(fiber.HeaderContentType, "audio/mpeg")
		c.Set(fiber.HeaderContentDisposition, `inline; filename=speech.mp3`)
		return c.Status(http.StatusOK).Send(audio)
	})
}
