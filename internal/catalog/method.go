package catalog

import (
	"context"
	"time"
)

// AttendanceMethod is a way of marking attendance (QR, biometric, manual).
// clave is the stable symbolic key the registrar resolves against.
type AttendanceMethod struct {
	ID          int64     `json:"id"`
	Clave       string    `json:"clave"`
	Nombre      string    `json:"nombre"`
	Descripcion *string   `json:"descripcion"`
	Estado      bool      `json:"estado"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListMethods returns all marking methods.
func (r *Repository) ListMethods(ctx context.Context) ([]AttendanceMethod, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, clave, nombre, descripcion, estado, created_at, updated_at
		FROM attendance_methods
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AttendanceMethod
	for rows.Next() {
		var m AttendanceMethod
		if err := rows.Scan(&m.ID, &m.Clave, &m.Nombre, &m.Descripcion, &m.Estado, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CreateMethod inserts a marking method.
func (r *Repository) CreateMethod(ctx context.Context, m AttendanceMethod) (AttendanceMethod, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_methods (clave, nombre, descripcion, estado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, m.Clave, m.Nombre, m.Descripcion, m.Estado).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// UpdateMethod updates a marking method by id.
func (r *Repository) UpdateMethod(ctx context.Context, id int64, m AttendanceMethod) error {
	return affected(r.db.ExecContext(ctx, `
		UPDATE attendance_methods
		SET clave = $2, nombre = $3, descripcion = $4, estado = $5, updated_at = NOW()
		WHERE id = $1
	`, id, m.Clave, m.Nombre, m.Descripcion, m.Estado))
}

// DeleteMethods removes the given ids.
func (r *Repository) DeleteMethods(ctx context.Context, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance_methods WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DuplicateMethods copies rows; clave is unique so the copy keys off the
// source id.
func (r *Repository) DuplicateMethods(ctx context.Context, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_methods (clave, nombre, descripcion, estado, created_at, updated_at)
		SELECT clave || '-COPY-' || id, nombre || ' (Copia)', descripcion, estado, NOW(), NOW()
		FROM attendance_methods
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExportMethods returns CSV header and rows.
func (r *Repository) ExportMethods(ctx context.Context) ([]string, [][]string, error) {
	methods, err := r.ListMethods(ctx)
	if err != nil {
		return nil, nil, err
	}
	header := []string{"id", "clave", "nombre", "descripcion", "estado"}
	rows := make([][]string, 0, len(methods))
	for _, m := range methods {
		rows = append(rows, []string{formatID(m.ID), m.Clave, m.Nombre, formatNullString(m.Descripcion), formatBool(m.Estado)})
	}
	return header, rows, nil
}
