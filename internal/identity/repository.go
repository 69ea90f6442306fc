package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrPhoneRegistered occurs when the phone number already belongs to a user.
	ErrPhoneRegistered = errors.New("phone number already registered")

	// ErrUserNotFound indicates no user matches the given phone or id.
	ErrUserNotFound = errors.New("user not found")
)

// Repository persists users and their auth logs. Delete exists only to roll
// back a registration whose account provisioning failed; completed users are
// never deleted.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByPhone(ctx context.Context, phone string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	UpdatePIN(ctx context.Context, id string, pinHash []byte) error
	AppendAuthLog(ctx context.Context, log AuthLog) error
	Delete(ctx context.Context, id string) error
}

const uniqueViolation = "23505"

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, name, phone, pin_hash, language, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, userID, user.Name, user.Phone, user.PINHash, user.Language, user.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrPhoneRegistered
	}
	return err
}

// FindByPhone fetches a user by phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, phone, pin_hash, language, created_at FROM users WHERE phone = $1`, phone)
	return scanUser(row)
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrUserNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, name, phone, pin_hash, language, created_at FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// UpdatePIN replaces the stored PIN hash for the user.
func (r *PostgresRepository) UpdatePIN(ctx context.Context, id string, pinHash []byte) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrUserNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET pin_hash = $1 WHERE id = $2`, pinHash, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// AppendAuthLog records one authentication attempt.
func (r *PostgresRepository) AppendAuthLog(ctx context.Context, log AuthLog) error {
	logID, err := uuid.Parse(log.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(log.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO auth_logs (id, user_id, attempted_at, success, method)
        VALUES ($1, $2, $3, $4, $5)`, logID, userID, log.AttemptedAt.UTC(), log.Success, log.Method)
	return err
}

// Delete removes the user and their auth logs in one transaction.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrUserNotFound
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM auth_logs WHERE user_id = $1`, userID); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return tx.Commit(ctx)
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
		user      User
	)
	if err := row.Scan(&id, &user.Name, &user.Phone, &user.PINHash, &user.Language, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	user.ID = id.String()
	user.CreatedAt = createdAt.UTC()
	return user, nil
}
