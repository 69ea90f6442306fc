package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers unknown phone numbers and PIN mismatches alike
// so the response does not reveal which part was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

const defaultLanguage = "en"

// Service manages the user lifecycle and PIN verification.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a user with a bcrypt-hashed PIN and logs the signup attempt.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	if len(input.PIN) < 4 {
		return User{}, errors.New("PIN must be at least 4 digits")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.PIN), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	language := input.Language
	if language == "" {
		language = defaultLanguage
	}

	user := User{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Phone:     input.Phone,
		PINHash:   hash,
		Language:  language,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	if err := s.logAttempt(ctx, user.ID, true, MethodRegistration); err != nil {
		return User{}, err
	}

	return user, nil
}

// Authenticate verifies a phone/PIN pair. A PIN mismatch on a known phone is
// recorded as a failed attempt; an unknown phone is not, since there is no
// user to attribute it to.
func (s *Service) Authenticate(ctx context.Context, phone, pin string) (User, error) {
	user, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PINHash, []byte(pin)); err != nil {
		if err := s.logAttempt(ctx, user.ID, false, MethodPIN); err != nil {
			return User{}, err
		}
		return User{}, ErrInvalidCredentials
	}

	if err := s.logAttempt(ctx, user.ID, true, MethodPIN); err != nil {
		return User{}, err
	}

	return user, nil
}

// ChangePIN swaps the stored hash after verifying the old PIN. Outstanding
// tokens stay valid until their natural expiry.
func (s *Service) ChangePIN(ctx context.Context, userID, oldPIN, newPIN string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword(user.PINHash, []byte(oldPIN)); err != nil {
		return ErrInvalidCredentials
	}

	if len(newPIN) < 4 {
		return errors.New("PIN must be at least 4 digits")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPIN), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.repo.UpdatePIN(ctx, user.ID, hash)
}

// Discard removes a user whose registration never completed, freeing the
// phone number for another attempt. Completed users are never deleted.
func (s *Service) Discard(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}

func (s *Service) logAttempt(ctx context.Context, userID string, success bool, method string) error {
	return s.repo.AppendAuthLog(ctx, AuthLog{
		ID:          uuid.New().String(),
		UserID:      userID,
		AttemptedAt: time.Now().UTC(),
		Success:     success,
		Method:      method,
	})
}
