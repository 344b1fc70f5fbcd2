package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Repository persists attendance data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// FindByToken looks up an active QR code by exact string match.
func (r *Repository) FindByToken(ctx context.Context, token string) (*ScanCode, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, qr_code, estado
		FROM qr_codes
		WHERE qr_code = $1 AND estado
		LIMIT 1
	`, token)
	var code ScanCode
	if err := row.Scan(&code.ID, &code.Code, &code.Estado); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

// FindByScanCodeID returns the user whose qr_code_id references the code.
func (r *Repository) FindByScanCodeID(ctx context.Context, scanCodeID int64) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, estado
		FROM users
		WHERE qr_code_id = $1
		LIMIT 1
	`, scanCodeID)
	var user User
	if err := row.Scan(&user.ID, &user.Name, &user.Estado); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// IDByClave resolves a marking method id by its symbolic key.
func (r *Repository) IDByClave(ctx context.Context, clave string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM attendance_methods WHERE clave = $1
	`, clave).Scan(&id)
	return id, err
}

// LatestWithCoordinates returns the user's most recent record holding both
// coordinates, regardless of date.
func (r *Repository) LatestWithCoordinates(ctx context.Context, userID int64) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, attendance_method_id, timestamp, ip_address, qr_token,
		       latitude::text, longitude::text, status, estado
		FROM attendance_records
		WHERE user_id = $1 AND latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY timestamp DESC
		LIMIT 1
	`, userID)
	var rec Record
	var ip, token sql.NullString
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.MethodID, &rec.Timestamp, &ip, &token,
		&rec.Latitude, &rec.Longitude, &rec.Status, &rec.Estado); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rec.IPAddress = ip.String
	rec.QRToken = token.String
	return &rec, nil
}

// HasRecentToken reports whether a record with the same token exists for the
// user at or after the cutoff time.
func (r *Repository) HasRecentToken(ctx context.Context, userID int64, token string, since time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM attendance_records
			WHERE user_id = $1 AND qr_token = $2 AND timestamp >= $3
		)
	`, userID, token, since).Scan(&exists)
	return exists, err
}

// InsertToggled computes the next status from the most recent same-day record
// and inserts the new one. The user row is locked for the duration of the
// transaction so two concurrent scans cannot both read the same last status.
func (r *Repository) InsertToggled(ctx context.Context, rec Record) (Record, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var lockedID int64
	if err := tx.QueryRowContext(ctx, `
		SELECT id FROM users WHERE id = $1 FOR UPDATE
	`, rec.UserID).Scan(&lockedID); err != nil {
		return Record{}, err
	}

	var last string
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM attendance_records
		WHERE user_id = $1 AND timestamp::date = CURRENT_DATE
		ORDER BY timestamp DESC
		LIMIT 1
	`, rec.UserID).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Record{}, err
	}
	rec.Status = NextStatus(last)

	err = tx.QueryRowContext(ctx, `
		INSERT INTO attendance_records
			(user_id, attendance_method_id, timestamp, ip_address, qr_token,
			 latitude, longitude, status, estado, created_at, updated_at)
		VALUES ($1, $2, NOW(), $3, $4, $5::numeric, $6::numeric, $7, TRUE, NOW(), NOW())
		RETURNING id, timestamp
	`, rec.UserID, rec.MethodID, rec.IPAddress, rec.QRToken, rec.Latitude, rec.Longitude, rec.Status).
		Scan(&rec.ID, &rec.Timestamp)
	if err != nil {
		return Record{}, err
	}

	if err := tx.Commit(); err != nil {
		return Record{}, err
	}
	rec.Estado = true
	return rec, nil
}
