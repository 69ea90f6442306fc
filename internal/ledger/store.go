package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates the user has no account.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientFunds occurs when the debited account lacks available
	// balance to cover a requested posting.
	ErrInsufficientFunds = errors.New("insufficient balance")
)

// TransferPosting describes a paired debit/credit between two accounts. The
// debit row is written on the sender account, the credit row on the
// recipient account, both for the same amount.
type TransferPosting struct {
	SenderAccountID    string
	RecipientAccountID string
	Amount             decimal.Decimal
	DebitRecipient     string
	DebitDescription   string
	CreditRecipient    string
	CreditDescription  string
}

// DebitPosting describes a single-sided debit, used for bill payments.
type DebitPosting struct {
	AccountID   string
	Amount      decimal.Decimal
	Recipient   string
	Description string
}

// Store defines the contract implemented by ledger backends. Transfer and
// Debit must apply the funds check and the balance mutation as one atomic
// unit relative to other writers on the same account.
type Store interface {
	CreateAccount(ctx context.Context, account Account) error
	AccountByUser(ctx context.Context, userID string) (Account, error)
	Transfer(ctx context.Context, posting TransferPosting) (Transaction, error)
	Debit(ctx context.Context, posting DebitPosting) (Transaction, error)
	RecentTransactions(ctx context.Context, accountID string, limit int) ([]Transaction, error)
}
