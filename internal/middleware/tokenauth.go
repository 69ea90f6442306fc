package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/voicebank/voicebank/internal/auth"
)

// UserIDKey is the fiber locals key under which TokenAuth stores the
// authenticated user id.
const UserIDKey = "user_id"

// TokenAuth validates the signed token passed as the `token` request
// parameter and stores the resolved user id in locals. The query-parameter
// convention (rather than an Authorization header) is kept for client
// compatibility; it leaks tokens into access logs and should not be copied
// into new surfaces.
func TokenAuth(tokens *auth.Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			return fiber.NewError(http.StatusUnauthorized, "missing token")
		}

		userID, err := tokens.Verify(token)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}
