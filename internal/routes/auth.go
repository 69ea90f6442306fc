package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/voicebank/voicebank/internal/auth"
	"github.com/voicebank/voicebank/internal/identity"
	"github.com/voicebank/voicebank/internal/middleware"
	"github.com/voicebank/voicebank/internal/onboarding"
)

type registerRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	PIN      string `json:"pin"`
	Language string `json:"language"`
}

type loginRequest struct {
	Phone string `json:"phone"`
	PIN   string `json:"pin"`
}

type changePINRequest struct {
	OldPIN string `json:"old_pin"`
	NewPIN string `json:"new_pin"`
}

type tokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// RegisterAuthRoutes wires registration, login and PIN change. Registration
// also provisions the user's default savings account.
func RegisterAuthRoutes(r fiber.Router, ids *identity.Service, signup *onboarding.Service, tokens *auth.Tokens, tokenAuth fiber.Handler, logger *slog.Logger) {
	r.Post("/auth/register", func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		user, account, err := signup.Register(c.UserContext(), identity.RegisterInput{
			Name:     req.Name,
			Phone:    req.Phone,
			PIN:      req.PIN,
			Language: req.Language,
		})
		if err != nil {
			switch {
			case errors.Is(err, identity.ErrPhoneRegistered):
				return fiber.NewError(http.StatusConflict, "phone number already registered")
			case errors.Is(err, onboarding.ErrAccountProvisioning):
				return fiber.NewError(http.StatusInternalServerError, err.Error())
			default:
				return fiber.NewError(http.StatusBadRequest, err.Error())
			}
		}

		token, err := tokens.Issue(user.ID)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}

		if logger != nil {
			logger.Info("user registered",
				slog.String("user_id", user.ID),
				slog.String("account_number", account.AccountNumber),
			)
		}

		return c.Status(http.StatusOK).JSON(tokenResponse{Token: token, UserID: user.ID, Name: user.Name})
	})

	r.Post("/auth/login", func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		user, err := ids.Authenticate(c.UserContext(), req.Phone, req.PIN)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidCredentials) {
				return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}

		token, err := tokens.Issue(user.ID)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}

		return c.Status(http.StatusOK).JSON(tokenResponse{Token: token, UserID: user.ID, Name: user.Name})
	})

	r.Post("/auth/change-pin", tokenAuth, func(c *fiber.Ctx) error {
		var req changePINRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		userID, _ := c.Locals(middleware.UserIDKey).(string)
		if err := ids.ChangePIN(c.UserContext(), userID, req.OldPIN, req.NewPIN); err != nil {
			switch {
			case errors.Is(err, identity.ErrInvalidCredentials):
				return fiber.NewError(http.StatusUnauthorized, "invalid old PIN")
			case errors.Is(err, identity.ErrUserNotFound):
				return fiber.NewError(http.StatusNotFound, "user not found")
			default:
				return fiber.NewError(http.StatusBadRequest, err.Error())
			}
		}

		return c.Status(http.StatusOK).JSON(fiber.Map{"message": "PIN changed successfully"})
	})
}
