package ledger

import "github.com/shopspring/decimal"

// SeedBalance is a test helper that sets the balance for an account when using the in-memory store.
func SeedBalance(s Store, accountID string, amount decimal.Decimal) {
	if mem, ok := s.(*memoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		account := mem.accounts[accountID]
		account.Balance = amount
		mem.accounts[accountID] = account
	}
}
