package catalog

import (
	"context"
	"time"
)

// Holiday is a non-working date. Recurrente marks dates that repeat yearly.
type Holiday struct {
	ID          int64     `json:"id"`
	Fecha       time.Time `json:"fecha"`
	Nombre      string    `json:"nombre"`
	Descripcion *string   `json:"descripcion"`
	Recurrente  bool      `json:"recurrente"`
	Estado      bool      `json:"estado"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListHolidays returns all holidays ordered by date.
func (r *Repository) ListHolidays(ctx context.Context) ([]Holiday, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, fecha, nombre, descripcion, recurrente, estado, created_at, updated_at
		FROM holidays
		ORDER BY fecha
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Fecha, &h.Nombre, &h.Descripcion, &h.Recurrente, &h.Estado, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// CreateHoliday inserts a holiday.
func (r *Repository) CreateHoliday(ctx context.Context, h Holiday) (Holiday, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO holidays (fecha, nombre, descripcion, recurrente, estado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, h.Fecha, h.Nombre, h.Descripcion, h.Recurrente, h.Estado).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}

// UpdateHoliday updates a holiday by id.
func (r *Repository) UpdateHoliday(ctx context.Context, id int64, h Holiday) error {
	return affected(r.db.ExecContext(ctx, `
		UPDATE holidays
		SET fecha = $2, nombre = $3, descripcion = $4, recurrente = $5, estado = $6, updated_at = NOW()
		WHERE id = $1
	`, id, h.Fecha, h.Nombre, h.Descripcion, h.Recurrente, h.Estado))
}

// DeleteHolidays removes the given ids.
func (r *Repository) DeleteHolidays(ctx context.Context, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DuplicateHolidays copies rows with a " (Copia)" name suffix.
func (r *Repository) DuplicateHolidays(ctx context.Context, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO holidays (fecha, nombre, descripcion, recurrente, estado, created_at, updated_at)
		SELECT fecha, nombre || ' (Copia)', descripcion, recurrente, estado, NOW(), NOW()
		FROM holidays
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExportHolidays returns CSV header and rows.
func (r *Repository) ExportHolidays(ctx context.Context) ([]string, [][]string, error) {
	holidays, err := r.ListHolidays(ctx)
	if err != nil {
		return nil, nil, err
	}
	header := []string{"id", "fecha", "nombre", "descripcion", "recurrente", "estado"}
	rows := make([][]string, 0, len(holidays))
	for _, h := range holidays {
		rows = append(rows, []string{
			formatID(h.ID), h.Fecha.Format("2006-01-02"), h.Nombre,
			formatNullString(h.Descripcion), formatBool(h.Recurrente), formatBool(h.Estado),
		})
	}
	return header, rows, nil
}
