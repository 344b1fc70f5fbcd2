package catalog

import (
	"context"
	"time"
)

// AttendanceRecordView is an attendance event row as the admin screens show
// it, with the owning user's name joined in.
type AttendanceRecordView struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	MethodID  int64     `json:"attendance_method_id"`
	Timestamp time.Time `json:"timestamp"`
	IPAddress *string   `json:"ip_address"`
	QRToken   *string   `json:"qr_token"`
	Latitude  *string   `json:"latitude"`
	Longitude *string   `json:"longitude"`
	Status    string    `json:"status"`
	Notas     *string   `json:"notas"`
	Estado    bool      `json:"estado"`
}

// AttendanceRecordInput is what the admin edit screens submit.
type AttendanceRecordInput struct {
	UserID    int64
	MethodID  int64
	Timestamp time.Time
	IPAddress *string
	QRToken   *string
	Latitude  *string
	Longitude *string
	Status    string
	Notas     *string
	Estado    bool
}

// ListRecords returns records newest first, optionally filtered by user, with
// limit/offset paging.
func (r *Repository) ListRecords(ctx context.Context, userID int64, limit, offset int) ([]AttendanceRecordView, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT ar.id, ar.user_id, u.name, ar.attendance_method_id, ar.timestamp,
		       ar.ip_address, ar.qr_token, ar.latitude::text, ar.longitude::text,
		       ar.status, ar.notas, ar.estado
		FROM attendance_records ar
		JOIN users u ON u.id = ar.user_id
		WHERE ($1 = 0 OR ar.user_id = $1)
		ORDER BY ar.timestamp DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AttendanceRecordView
	for rows.Next() {
		var v AttendanceRecordView
		if err := rows.Scan(&v.ID, &v.UserID, &v.UserName, &v.MethodID, &v.Timestamp,
			&v.IPAddress, &v.QRToken, &v.Latitude, &v.Longitude, &v.Status, &v.Notas, &v.Estado); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CreateRecord inserts an admin-entered record.
func (r *Repository) CreateRecord(ctx context.Context, in AttendanceRecordInput) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records
			(user_id, attendance_method_id, timestamp, ip_address, qr_token,
			 latitude, longitude, status, notas, estado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8, $9, $10, NOW(), NOW())
		RETURNING id
	`, in.UserID, in.MethodID, in.Timestamp, in.IPAddress, in.QRToken,
		in.Latitude, in.Longitude, in.Status, in.Notas, in.Estado).Scan(&id)
	return id, err
}

// UpdateRecord updates a record by id.
func (r *Repository) UpdateRecord(ctx context.Context, id int64, in AttendanceRecordInput) error {
	return affected(r.db.ExecContext(ctx, `
		UPDATE attendance_records
		SET user_id = $2, attendance_method_id = $3, timestamp = $4, ip_address = $5,
		    qr_token = $6, latitude = $7::numeric, longitude = $8::numeric,
		    status = $9, notas = $10, estado = $11, updated_at = NOW()
		WHERE id = $1
	`, id, in.UserID, in.MethodID, in.Timestamp, in.IPAddress, in.QRToken,
		in.Latitude, in.Longitude, in.Status, in.Notas, in.Estado))
}

// DeleteRecords removes the given ids.
func (r *Repository) DeleteRecords(ctx context.Context, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance_records WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DuplicateRecords copies rows as-is with fresh timestamps on the copy
// metadata only; the event timestamp is preserved.
func (r *Repository) DuplicateRecords(ctx context.Context, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records
			(user_id, attendance_method_id, timestamp, ip_address, qr_token,
			 latitude, longitude, status, notas, estado, created_at, updated_at)
		SELECT user_id, attendance_method_id, timestamp, ip_address, qr_token,
		       latitude, longitude, status, notas, estado, NOW(), NOW()
		FROM attendance_records
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExportRecords returns CSV header and rows for up to the latest 10000
// records.
func (r *Repository) ExportRecords(ctx context.Context) ([]string, [][]string, error) {
	records, err := r.ListRecords(ctx, 0, 10000, 0)
	if err != nil {
		return nil, nil, err
	}
	header := []string{"id", "user", "timestamp", "status", "ip_address", "qr_token", "latitude", "longitude", "notas"}
	rows := make([][]string, 0, len(records))
	for _, v := range records {
		rows = append(rows, []string{
			formatID(v.ID), v.UserName, formatTime(v.Timestamp), v.Status,
			formatNullString(v.IPAddress), formatNullString(v.QRToken),
			formatNullString(v.Latitude), formatNullString(v.Longitude),
			formatNullString(v.Notas),
		})
	}
	return header, rows, nil
}
