package identity

import "time"

const (
	// MethodPIN marks an auth log entry created by a login attempt.
	MethodPIN = "pin"
	// MethodRegistration marks the auth log entry created at signup.
	MethodRegistration = "registration"
)

// User represents a registered customer identified by phone number.
type User struct {
	ID        string
	Name      string
	Phone     string
	PINHash   []byte
	Language  string
	CreatedAt time.Time
}

// AuthLog is an append-only record of a single authentication attempt.
type AuthLog struct {
	ID          string
	UserID      string
	AttemptedAt time.Time
	Success     bool
	Method      string
}

// RegisterInput captures the data required to onboard a user.
type RegisterInput struct {
	Name     string
	Phone    string
	PIN      string
	Language string
}
