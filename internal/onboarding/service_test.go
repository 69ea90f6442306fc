package onboarding

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/voicebank/voicebank/internal/identity"
	"github.com/voicebank/voicebank/internal/ledger"
)

type brokenStore struct {
	ledger.Store
}

func (s *brokenStore) CreateAccount(context.Context, ledger.Account) error {
	return errors.New("storage unavailable")
}

func TestRegisterCreatesUserAndAccount(t *testing.T) {
	users := identity.NewMemoryRepository()
	ids := identity.NewService(users)
	accounts := ledger.NewService(ledger.NewMemoryStore(), users, nil, nil, decimal.NewFromInt(10_000))
	svc := NewService(ids, accounts)

	user, account, err := svc.Register(context.Background(), identity.RegisterInput{Name: "Awa", Phone: "+243900000001", PIN: "4321"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if account.UserID != user.ID {
		t.Fatalf("account belongs to %s, want %s", account.UserID, user.ID)
	}
	if !account.Balance.Equal(decimal.NewFromInt(10_000)) {
		t.Fatalf("starting balance = %s, want 10000", account.Balance)
	}

	got, err := accounts.GetAccount(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got.ID != account.ID {
		t.Fatalf("fetched account %s, want %s", got.ID, account.ID)
	}
}

func TestRegisterRollsBackWhenProvisioningFails(t *testing.T) {
	users := identity.NewMemoryRepository()
	ids := identity.NewService(users)
	store := ledger.NewMemoryStore()
	broken := ledger.NewService(&brokenStore{Store: store}, users, nil, nil, decimal.NewFromInt(10_000))

	input := identity.RegisterInput{Name: "Awa", Phone: "+243900000001", PIN: "4321"}

	_, _, err := NewService(ids, broken).Register(context.Background(), input)
	if !errors.Is(err, ErrAccountProvisioning) {
		t.Fatalf("register with failing store: err = %v, want ErrAccountProvisioning", err)
	}

	// The half-created user must be gone: no credentials, no stranded phone.
	if _, err := ids.Authenticate(context.Background(), input.Phone, input.PIN); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("authenticate after rollback: err = %v, want ErrInvalidCredentials", err)
	}

	// Retrying against healthy storage must succeed.
	working := ledger.NewService(store, users, nil, nil, decimal.NewFromInt(10_000))
	user, account, err := NewService(ids, working).Register(context.Background(), input)
	if err != nil {
		t.Fatalf("retry register: %v", err)
	}
	if _, err := working.GetAccount(context.Background(), user.ID); err != nil {
		t.Fatalf("get account after retry: %v", err)
	}
	if account.UserID != user.ID {
		t.Fatalf("account belongs to %s, want %s", account.UserID, user.ID)
	}

	logs := identity.AuthLogs(users, user.ID)
	if len(logs) == 0 || logs[len(logs)-1].Method != identity.MethodRegistration {
		t.Fatalf("auth logs after retry = %+v, want a registration entry", logs)
	}
}
