package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore persists accounts and transactions in PostgreSQL. Funds
// checks and balance mutations run inside a single transaction with the
// affected account rows locked, so concurrent writers on the same account
// serialize instead of double-spending a stale balance.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed ledger store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateAccount inserts a new account row.
func (s *PostgresStore) CreateAccount(ctx context.Context, account Account) error {
	accountID, err := uuid.Parse(account.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(account.UserID)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO accounts (id, user_id, account_number, balance, account_type)
        VALUES ($1, $2, $3, $4, $5)`, accountID, userID, account.AccountNumber, account.Balance, account.AccountType)
	return err
}

// AccountByUser fetches the account owned by the given user.
func (s *PostgresStore) AccountByUser(ctx context.Context, userID string) (Account, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Account{}, ErrAccountNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT id, user_id, account_number, balance, account_type
        FROM accounts WHERE user_id = $1`, uid)
	return scanAccount(row)
}

// Transfer applies the paired debit/credit and appends both transaction rows
// in one database transaction.
func (s *PostgresStore) Transfer(ctx context.Context, p TransferPosting) (Transaction, error) {
	if !p.Amount.IsPositive() {
		return Transaction{}, fmt.Errorf("amount must be positive")
	}

	senderID, err := uuid.Parse(p.SenderAccountID)
	if err != nil {
		return Transaction{}, ErrAccountNotFound
	}
	recipientID, err := uuid.Parse(p.RecipientAccountID)
	if err != nil {
		return Transaction{}, ErrAccountNotFound
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Transaction{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	// Lock rows in id order so opposite-direction transfers cannot deadlock.
	first, second := senderID, recipientID
	if second.String() < first.String() {
		first, second = second, first
	}
	if _, err := lockBalance(ctx, tx, first); err != nil {
		return Transaction{}, err
	}
	if first != second {
		if _, err := lockBalance(ctx, tx, second); err != nil {
			return Transaction{}, err
		}
	}

	senderBalance, err := balanceFor(ctx, tx, senderID)
	if err != nil {
		return Transaction{}, err
	}
	if senderBalance.LessThan(p.Amount) {
		return Transaction{}, ErrInsufficientFunds
	}

	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = balance - $1 WHERE id = $2`, p.Amount, senderID); err != nil {
		return Transaction{}, err
	}
	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = balance + $1 WHERE id = $2`, p.Amount, recipientID); err != nil {
		return Transaction{}, err
	}

	now := time.Now().UTC()
	debit := Transaction{
		ID:          uuid.New().String(),
		AccountID:   p.SenderAccountID,
		Type:        TypeDebit,
		Amount:      p.Amount,
		Recipient:   p.DebitRecipient,
		Description: p.DebitDescription,
		CreatedAt:   now,
		Status:      StatusCompleted,
	}
	credit := Transaction{
		ID:          uuid.New().String(),
		AccountID:   p.RecipientAccountID,
		Type:        TypeCredit,
		Amount:      p.Amount,
		Recipient:   p.CreditRecipient,
		Description: p.CreditDescription,
		CreatedAt:   now,
		Status:      StatusCompleted,
	}
	if err := insertTransaction(ctx, tx, debit); err != nil {
		return Transaction{}, err
	}
	if err := insertTransaction(ctx, tx, credit); err != nil {
		return Transaction{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Transaction{}, err
	}

	return debit, nil
}

// Debit applies a single-sided debit and appends its transaction row in one
// database transaction.
func (s *PostgresStore) Debit(ctx context.Context, p DebitPosting) (Transaction, error) {
	if !p.Amount.IsPositive() {
		return Transaction{}, fmt.Errorf("amount must be positive")
	}

	accountID, err := uuid.Parse(p.AccountID)
	if err != nil {
		return Transaction{}, ErrAccountNotFound
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Transaction{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	balance, err := lockBalance(ctx, tx, accountID)
	if err != nil {
		return Transaction{}, err
	}
	if balance.LessThan(p.Amount) {
		return Transaction{}, ErrInsufficientFunds
	}

	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = balance - $1 WHERE id = $2`, p.Amount, accountID); err != nil {
		return Transaction{}, err
	}

	debit := Transaction{
		ID:          uuid.New().String(),
		AccountID:   p.AccountID,
		Type:        TypeDebit,
		Amount:      p.Amount,
		Recipient:   p.Recipient,
		Description: p.Description,
		CreatedAt:   time.Now().UTC(),
		Status:      StatusCompleted,
	}
	if err := insertTransaction(ctx, tx, debit); err != nil {
		return Transaction{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Transaction{}, err
	}

	return debit, nil
}

// RecentTransactions lists the newest transactions for an account.
func (s *PostgresStore) RecentTransactions(ctx context.Context, accountID string, limit int) ([]Transaction, error) {
	aid, err := uuid.Parse(accountID)
	if err != nil {
		return nil, ErrAccountNotFound
	}
	rows, err := s.db.Query(ctx, `SELECT id, account_id, type, amount, recipient, description, created_at, status
        FROM transactions WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2`, aid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var (
			id        uuid.UUID
			accID     uuid.UUID
			createdAt time.Time
			txn       Transaction
		)
		if err := rows.Scan(&id, &accID, &txn.Type, &txn.Amount, &txn.Recipient, &txn.Description, &createdAt, &txn.Status); err != nil {
			return nil, err
		}
		txn.ID = id.String()
		txn.AccountID = accID.String()
		txn.CreatedAt = createdAt.UTC()
		out = append(out, txn)
	}
	return out, rows.Err()
}

func lockBalance(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Decimal{}, ErrAccountNotFound
		}
		return decimal.Decimal{}, err
	}
	return balance, nil
}

func balanceFor(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Decimal{}, ErrAccountNotFound
		}
		return decimal.Decimal{}, err
	}
	return balance, nil
}

func insertTransaction(ctx context.Context, tx pgx.Tx, txn Transaction) error {
	txnID, err := uuid.Parse(txn.ID)
	if err != nil {
		return err
	}
	accountID, err := uuid.Parse(txn.AccountID)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `INSERT INTO transactions (id, account_id, type, amount, recipient, description, created_at, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		txnID, accountID, txn.Type, txn.Amount, txn.Recipient, txn.Description, txn.CreatedAt, txn.Status)
	return err
}

func scanAccount(row pgx.Row) (Account, error) {
	var (
		id      uuid.UUID
		userID  uuid.UUID
		account Account
	)
	if err := row.Scan(&id, &userID, &account.AccountNumber, &account.Balance, &account.AccountType); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	account.ID = id.String()
	account.UserID = userID.String()
	return account, nil
}
