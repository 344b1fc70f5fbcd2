package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// QRCode is the shared token employees scan. The schema permits many rows but
// a partial unique index keeps at most one active; the admin UI treats it as
// "the current QR".
type QRCode struct {
	ID        int64     `json:"id"`
	QRCode    string    `json:"qr_code"`
	Estado    bool      `json:"estado"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CurrentQRCode returns the active code, nil when none exists.
func (r *Repository) CurrentQRCode(ctx context.Context) (*QRCode, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, qr_code, estado, created_at, updated_at
		FROM qr_codes
		WHERE estado
		LIMIT 1
	`)
	var q QRCode
	if err := row.Scan(&q.ID, &q.QRCode, &q.Estado, &q.CreatedAt, &q.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

// SetCurrentQRCode upserts the single active code: update it when one exists,
// insert otherwise.
func (r *Repository) SetCurrentQRCode(ctx context.Context, token string) (QRCode, bool, error) {
	current, err := r.CurrentQRCode(ctx)
	if err != nil {
		return QRCode{}, false, err
	}
	if current != nil {
		current.QRCode = token
		err := r.db.QueryRowContext(ctx, `
			UPDATE qr_codes SET qr_code = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`, current.ID, token).Scan(&current.UpdatedAt)
		return *current, false, err
	}

	var q QRCode
	q.QRCode = token
	q.Estado = true
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO qr_codes (qr_code, estado, created_at, updated_at)
		VALUES ($1, TRUE, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, token).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	return q, true, err
}

// ListQRCodes returns every row, active or not.
func (r *Repository) ListQRCodes(ctx context.Context) ([]QRCode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, qr_code, estado, created_at, updated_at
		FROM qr_codes
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []QRCode
	for rows.Next() {
		var q QRCode
		if err := rows.Scan(&q.ID, &q.QRCode, &q.Estado, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// DeleteQRCodes removes the given ids.
func (r *Repository) DeleteQRCodes(ctx context.Context, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM qr_codes WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DuplicateQRCodes copies rows as INACTIVE duplicates; the partial unique
// index allows only one active code.
func (r *Repository) DuplicateQRCodes(ctx context.Context, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO qr_codes (qr_code, estado, created_at, updated_at)
		SELECT qr_code || ' (Copia)', FALSE, NOW(), NOW()
		FROM qr_codes
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExportQRCodes returns CSV header and rows.
func (r *Repository) ExportQRCodes(ctx context.Context) ([]string, [][]string, error) {
	codes, err := r.ListQRCodes(ctx)
	if err != nil {
		return nil, nil, err
	}
	header := []string{"id", "qr_code", "estado", "created_at"}
	rows := make([][]string, 0, len(codes))
	for _, q := range codes {
		rows = append(rows, []string{formatID(q.ID), q.QRCode, formatBool(q.Estado), formatTime(q.CreatedAt)})
	}
	return header, rows, nil
}
