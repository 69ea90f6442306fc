package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// TypeDebit marks a transaction that removed funds from its account.
	TypeDebit = "debit"
	// TypeCredit marks a transaction that added funds to its account.
	TypeCredit = "credit"

	// StatusCompleted is the only transaction status the system produces.
	StatusCompleted = "completed"

	// AccountTypeSavings is the account type provisioned at registration.
	AccountTypeSavings = "savings"
)

// Account is a customer account holding a decimal balance.
type Account struct {
	ID            string
	UserID        string
	AccountNumber string
	Balance       decimal.Decimal
	AccountType   string
}

// Transaction is an append-only record of a single balance change.
type Transaction struct {
	ID          string
	AccountID   string
	Type        string
	Amount      decimal.Decimal
	Recipient   string
	Description string
	CreatedAt   time.Time
	Status      string
}
