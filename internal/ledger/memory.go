package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu           sync.RWMutex
	accounts     map[string]Account
	byUser       map[string]string
	transactions map[string][]Transaction
}

// NewMemoryStore creates a concurrency-safe in-memory ledger store used in
// development mode and unit tests.
func NewMemoryStore() Store {
	return &memoryStore{
		accounts:     make(map[string]Account),
		byUser:       make(map[string]string),
		transactions: make(map[string][]Transaction),
	}
}

func (s *memoryStore) CreateAccount(_ context.Context, account Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.ID]; exists {
		return fmt.Errorf("account %s exists", account.ID)
	}
	s.accounts[account.ID] = account
	s.byUser[account.UserID] = account.ID
	return nil
}

func (s *memoryStore) AccountByUser(_ context.Context, userID string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accountID, ok := s.byUser[userID]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return s.accounts[accountID], nil
}

func (s *memoryStore) Transfer(_ context.Context, p TransferPosting) (Transaction, error) {
	if !p.Amount.IsPositive() {
		return Transaction{}, fmt.Errorf("amount must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sender, ok := s.accounts[p.SenderAccountID]
	if !ok {
		return Transaction{}, ErrAccountNotFound
	}
	if _, ok := s.accounts[p.RecipientAccountID]; !ok {
		return Transaction{}, ErrAccountNotFound
	}

	if sender.Balance.LessThan(p.Amount) {
		return Transaction{}, ErrInsufficientFunds
	}

	sender.Balance = sender.Balance.Sub(p.Amount)
	s.accounts[sender.ID] = sender
	// Re-read after the debit so a self-transfer nets to zero.
	recipient := s.accounts[p.RecipientAccountID]
	recipient.Balance = recipient.Balance.Add(p.Amount)
	s.accounts[recipient.ID] = recipient

	now := time.Now().UTC()
	debit := Transaction{
		ID:          uuid.New().String(),
		AccountID:   sender.ID,
		Type:        TypeDebit,
		Amount:      p.Amount,
		Recipient:   p.DebitRecipient,
		Description: p.DebitDescription,
		CreatedAt:   now,
		Status:      StatusCompleted,
	}
	credit := Transaction{
		ID:          uuid.New().String(),
		AccountID:   recipient.ID,
		Type:        TypeCredit,
		Amount:      p.Amount,
		Recipient:   p.CreditRecipient,
		Description: p.CreditDescription,
		CreatedAt:   now,
		Status:      StatusCompleted,
	}
	s.transactions[sender.ID] = append(s.transactions[sender.ID], debit)
	s.transactions[recipient.ID] = append(s.transactions[recipient.ID], credit)

	return debit, nil
}

func (s *memoryStore) Debit(_ context.Context, p DebitPosting) (Transaction, error) {
	if !p.Amount.IsPositive() {
		return Transaction{}, fmt.Errorf("amount must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[p.AccountID]
	if !ok {
		return Transaction{}, ErrAccountNotFound
	}
	if account.Balance.LessThan(p.Amount) {
		return Transaction{}, ErrInsufficientFunds
	}

	account.Balance = account.Balance.Sub(p.Amount)
	s.accounts[account.ID] = account

	debit := Transaction{
		ID:          uuid.New().String(),
		AccountID:   account.ID,
		Type:        TypeDebit,
		Amount:      p.Amount,
		Recipient:   p.Recipient,
		Description: p.Description,
		CreatedAt:   time.Now().UTC(),
		Status:      StatusCompleted,
	}
	s.transactions[account.ID] = append(s.transactions[account.ID], debit)

	return debit, nil
}

func (s *memoryStore) RecentTransactions(_ context.Context, accountID string, limit int) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.accounts[accountID]; !ok {
		return nil, ErrAccountNotFound
	}
	history := s.transactions[accountID]
	var out []Transaction
	for i := len(history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, history[i])
	}
	return out, nil
}
