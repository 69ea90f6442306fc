// Package onboarding composes the identity and ledger services so a new
// customer's user record and first account are created as one unit.
package onboarding

import (
	"context"
	"errors"
	"fmt"

	"github.com/voicebank/voicebank/internal/identity"
	"github.com/voicebank/voicebank/internal/ledger"
)

// ErrAccountProvisioning marks errors where the user was created but the
// account could not be, and the signup was rolled back.
var ErrAccountProvisioning = errors.New("account provisioning failed")

// Service signs up new customers.
type Service struct {
	ids      *identity.Service
	accounts *ledger.Service
}

// NewService creates a new onboarding service.
func NewService(ids *identity.Service, accounts *ledger.Service) *Service {
	return &Service{ids: ids, accounts: accounts}
}

// Register creates the user and their first account together. If account
// provisioning fails the user is discarded again, so the phone number stays
// free for a retry instead of being stranded without an account.
func (s *Service) Register(ctx context.Context, input identity.RegisterInput) (identity.User, ledger.Account, error) {
	user, err := s.ids.Register(ctx, input)
	if err != nil {
		return identity.User{}, ledger.Account{}, err
	}

	account, err := s.accounts.OpenAccount(ctx, user.ID)
	if err != nil {
		if derr := s.ids.Discard(ctx, user.ID); derr != nil {
			return identity.User{}, ledger.Account{}, fmt.Errorf("%w: %v (discard user: %v)", ErrAccountProvisioning, err, derr)
		}
		return identity.User{}, ledger.Account{}, fmt.Errorf("%w: %v", ErrAccountProvisioning, err)
	}

	return user, account, nil
}
