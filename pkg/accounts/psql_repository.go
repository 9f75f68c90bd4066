package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db DBTX
}

// NewPostgresRepository creates a new PostgreSQL account repository
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `
	id, email, phone, password_hash, two_factor_enabled, verified,
	reset_token, reset_token_expires, verification_token, created_at, updated_at
`

func (r *PostgresRepository) scanAccount(row pgx.Row) (Account, error) {
	var acct Account
	var phone, resetToken, verificationToken *string
	var resetTokenExpires *time.Time

	err := row.Scan(
		&acct.ID,
		&acct.Email,
		&phone,
		&acct.PasswordHash,
		&acct.TwoFactorEnabled,
		&acct.Verified,
		&resetToken,
		&resetTokenExpires,
		&verificationToken,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}

	if phone != nil {
		acct.Phone = *phone
	}
	if resetToken != nil {
		acct.ResetToken = *resetToken
	}
	if resetTokenExpires != nil {
		acct.ResetTokenExpires = *resetTokenExpires
	}
	if verificationToken != nil {
		acct.VerificationToken = *verificationToken
	}
	return acct, nil
}

// FindByEmail finds an account by email address
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account WHERE lower(email) = lower($1) AND deleted_at IS NULL`
	return r.scanAccount(r.db.QueryRow(ctx, query, email))
}

// FindByResetToken finds an account by its outstanding reset token
func (r *PostgresRepository) FindByResetToken(ctx context.Context, token string) (Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account WHERE reset_token = $1 AND deleted_at IS NULL`
	return r.scanAccount(r.db.QueryRow(ctx, query, token))
}

// FindByVerificationToken finds an account by its verification token
func (r *PostgresRepository) FindByVerificationToken(ctx context.Context, token string) (Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account WHERE verification_token = $1 AND deleted_at IS NULL`
	return r.scanAccount(r.db.QueryRow(ctx, query, token))
}

// SetResetToken stores a new reset token and expiry, replacing any outstanding one
func (r *PostgresRepository) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	query := `
		UPDATE account
		SET reset_token = $2, reset_token_expires = $3, updated_at = now()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, token, expiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ConsumeResetToken updates the password hash and clears the reset token fields
// in a single statement.
func (r *PostgresRepository) ConsumeResetToken(ctx context.Context, arg PasswordResetParams) error {
	query := `
		UPDATE account
		SET password_hash = $2, reset_token = NULL, reset_token_expires = NULL, updated_at = now()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, arg.ID, arg.PasswordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// SetVerificationToken stores a verification token for an account
func (r *PostgresRepository) SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error {
	query := `
		UPDATE account
		SET verification_token = $2, updated_at = now()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// MarkVerified sets the verified flag and clears the verification token
func (r *PostgresRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE account
		SET verified = true, verification_token = NULL, updated_at = now()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}
