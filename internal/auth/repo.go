package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Credential is the slice of a user row needed to authenticate.
type Credential struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Estado       bool
}

// RefreshToken is a stored refresh token row.
type RefreshToken struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	Revoked   bool
}

// Repository persists authentication state in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// FindUserByEmail returns the credential for an email, nil when absent.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*Credential, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, password, estado
		FROM users
		WHERE email = $1
	`, email)
	var cred Credential
	if err := row.Scan(&cred.ID, &cred.Name, &cred.Email, &cred.PasswordHash, &cred.Estado); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &cred, nil
}

// SaveRefreshToken stores a refresh token for rotation checks.
func (r *Repository) SaveRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, token, userID, expiresAt)
	return err
}

// FindRefreshToken returns a stored token, nil when unknown.
func (r *Repository) FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT token, user_id, expires_at, revoked
		FROM refresh_tokens
		WHERE token = $1
	`, token)
	var rt RefreshToken
	if err := row.Scan(&rt.Token, &rt.UserID, &rt.ExpiresAt, &rt.Revoked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rt, nil
}

// RevokeRefreshToken marks a token revoked.
func (r *Repository) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, token)
	return err
}

// FindUserByID returns the credential for a user id, nil when absent.
func (r *Repository) FindUserByID(ctx context.Context, id int64) (*Credential, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, password, estado
		FROM users
		WHERE id = $1
	`, id)
	var cred Credential
	if err := row.Scan(&cred.ID, &cred.Name, &cred.Email, &cred.PasswordHash, &cred.Estado); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &cred, nil
}

// RecordLogin stores login telemetry for a successful authentication.
func (r *Repository) RecordLogin(ctx context.Context, userID int64, ip, userAgent, deviceUID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO login_events (user_id, ip_address, user_agent, device_uid, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NOW())
	`, userID, ip, userAgent, deviceUID)
	return err
}
