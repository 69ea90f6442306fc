package identity

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)

	ctx := context.Background()
	user, err := svc.Register(ctx, RegisterInput{Name: "Amina", Phone: "+237650000000", PIN: "1234"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Language != "en" {
		t.Fatalf("expected default language en, got %s", user.Language)
	}

	authed, err := svc.Authenticate(ctx, user.Phone, "1234")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, authed.ID)
	}

	logs := AuthLogs(repo, user.ID)
	if len(logs) != 2 {
		t.Fatalf("expected 2 auth logs, got %d", len(logs))
	}
	if logs[0].Method != MethodRegistration || !logs[0].Success {
		t.Fatalf("unexpected registration log: %+v", logs[0])
	}
	if logs[1].Method != MethodPIN || !logs[1].Success {
		t.Fatalf("unexpected login log: %+v", logs[1])
	}
}

func TestRegisterDuplicatePhone(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Name: "First", Phone: "123", PIN: "1234"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Name: "Second", Phone: "123", PIN: "5678"}); !errors.Is(err, ErrPhoneRegistered) {
		t.Fatalf("expected ErrPhoneRegistered, got %v", err)
	}
}

func TestAuthenticateWrongPIN(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Amina", Phone: "123", PIN: "1234"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "123", "9999"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	logs := AuthLogs(repo, user.ID)
	last := logs[len(logs)-1]
	if last.Success || last.Method != MethodPIN {
		t.Fatalf("expected failed pin log, got %+v", last)
	}
}

func TestAuthenticateUnknownPhone(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	if _, err := svc.Authenticate(context.Background(), "999", "1234"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestChangePIN(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Amina", Phone: "123", PIN: "1234"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.ChangePIN(ctx, user.ID, "0000", "5678"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong old PIN, got %v", err)
	}

	if err := svc.ChangePIN(ctx, user.ID, "1234", "5678"); err != nil {
		t.Fatalf("change pin: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "123", "1234"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old PIN should be rejected, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "123", "5678"); err != nil {
		t.Fatalf("new PIN should work: %v", err)
	}
}
