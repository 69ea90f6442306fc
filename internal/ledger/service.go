package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voicebank/voicebank/internal/identity"
	"github.com/voicebank/voicebank/internal/notification"
)

var (
	// ErrRecipientNotFound indicates the transfer destination phone number
	// does not resolve to a user with an account.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrInvalidAmount rejects zero and negative amounts.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Service exposes account and transaction operations backed by the store.
type Service struct {
	store           Store
	users           identity.Repository
	cache           *SnapshotCache
	notifier        notification.Notifier
	startingBalance decimal.Decimal
}

// NewService builds a ledger service instance. Cache and notifier may be nil.
func NewService(store Store, users identity.Repository, cache *SnapshotCache, notifier notification.Notifier, startingBalance decimal.Decimal) *Service {
	return &Service{store: store, users: users, cache: cache, notifier: notifier, startingBalance: startingBalance}
}

// TransferInput captures the data needed to move funds between users.
type TransferInput struct {
	UserID         string
	RecipientPhone string
	Amount         decimal.Decimal
	Description    string
}

// BillInput captures the data needed to pay a bill.
type BillInput struct {
	UserID      string
	BillType    string
	Amount      decimal.Decimal
	Description string
}

// OpenAccount provisions the default savings account created at registration.
func (s *Service) OpenAccount(ctx context.Context, userID string) (Account, error) {
	account := Account{
		ID:            uuid.New().String(),
		UserID:        userID,
		AccountNumber: newAccountNumber(),
		Balance:       s.startingBalance,
		AccountType:   AccountTypeSavings,
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return Account{}, err
	}
	return account, nil
}

// GetAccount returns the user's account snapshot, served from the cache
// when a fresh entry exists.
func (s *Service) GetAccount(ctx context.Context, userID string) (Account, error) {
	if account, ok := s.cache.Get(ctx, userID); ok {
		return account, nil
	}
	account, err := s.store.AccountByUser(ctx, userID)
	if err != nil {
		return Account{}, err
	}
	s.cache.Set(ctx, account)
	return account, nil
}

// Transfer debits the sender and credits the recipient resolved by phone
// number, appending one transaction row on each side. The returned record
// is the sender's debit.
func (s *Service) Transfer(ctx context.Context, input TransferInput) (Transaction, error) {
	if !input.Amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}

	sender, err := s.store.AccountByUser(ctx, input.UserID)
	if err != nil {
		return Transaction{}, err
	}
	if sender.Balance.LessThan(input.Amount) {
		return Transaction{}, ErrInsufficientFunds
	}

	recipientUser, err := s.users.FindByPhone(ctx, input.RecipientPhone)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return Transaction{}, ErrRecipientNotFound
		}
		return Transaction{}, err
	}
	recipientAccount, err := s.store.AccountByUser(ctx, recipientUser.ID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return Transaction{}, ErrRecipientNotFound
		}
		return Transaction{}, err
	}

	senderUser, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		return Transaction{}, err
	}

	debitDescription := input.Description
	if debitDescription == "" {
		debitDescription = fmt.Sprintf("Transfer to %s", recipientUser.Name)
	}
	creditDescription := input.Description
	if creditDescription == "" {
		creditDescription = "Received from sender"
	}

	debit, err := s.store.Transfer(ctx, TransferPosting{
		SenderAccountID:    sender.ID,
		RecipientAccountID: recipientAccount.ID,
		Amount:             input.Amount,
		DebitRecipient:     recipientUser.Name,
		DebitDescription:   debitDescription,
		CreditRecipient:    senderUser.Name,
		CreditDescription:  creditDescription,
	})
	if err != nil {
		return Transaction{}, err
	}

	s.cache.Invalidate(ctx, sender.UserID)
	s.cache.Invalidate(ctx, recipientAccount.UserID)

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindTransfer,
			Destination: recipientUser.ID,
			Body:        fmt.Sprintf("You received %s from %s", input.Amount.String(), senderUser.Name),
		})
	}

	return debit, nil
}

// PayBill debits the caller's account for a bill payment. No counterparty
// account is touched.
func (s *Service) PayBill(ctx context.Context, input BillInput) (Transaction, error) {
	if !input.Amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}

	account, err := s.store.AccountByUser(ctx, input.UserID)
	if err != nil {
		return Transaction{}, err
	}

	description := input.Description
	if description == "" {
		description = fmt.Sprintf("%s bill payment", input.BillType)
	}

	debit, err := s.store.Debit(ctx, DebitPosting{
		AccountID:   account.ID,
		Amount:      input.Amount,
		Recipient:   input.BillType,
		Description: description,
	})
	if err != nil {
		return Transaction{}, err
	}

	s.cache.Invalidate(ctx, account.UserID)

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindBillPayment,
			Destination: input.UserID,
			Body:        fmt.Sprintf("Paid %s for %s", input.Amount.String(), input.BillType),
		})
	}

	return debit, nil
}

// ListTransactions returns the caller's transactions, newest first.
func (s *Service) ListTransactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	account, err := s.store.AccountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.RecentTransactions(ctx, account.ID, limit)
}

func newAccountNumber() string {
	return fmt.Sprintf("ACC%s", strings.ToUpper(uuid.New().String()[:8]))
}
