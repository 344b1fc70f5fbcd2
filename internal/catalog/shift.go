package catalog

import (
	"context"
	"time"
)

// Shift is a named working-hours window. Users are attached through the
// shift_user join table.
type Shift struct {
	ID         int64     `json:"id"`
	Nombre     string    `json:"nombre"`
	HoraInicio string    `json:"hora_inicio"` // HH:MM
	HoraFin    string    `json:"hora_fin"`    // HH:MM
	CreadoPor  int64     `json:"creado_por"`
	Estado     bool      `json:"estado"`
	UserIDs    []int64   `json:"user_ids"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ListShifts returns all shifts with their assigned user ids.
func (r *Repository) ListShifts(ctx context.Context) ([]Shift, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, nombre, to_char(hora_inicio, 'HH24:MI'), to_char(hora_fin, 'HH24:MI'),
		       creado_por, estado, created_at, updated_at
		FROM shifts
		ORDER BY nombre
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Shift
	index := map[int64]int{}
	for rows.Next() {
		var s Shift
		if err := rows.Scan(&s.ID, &s.Nombre, &s.HoraInicio, &s.HoraFin,
			&s.CreadoPor, &s.Estado, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		index[s.ID] = len(out)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	links, err := r.db.QueryContext(ctx, `SELECT shift_id, user_id FROM shift_user`)
	if err != nil {
		return nil, err
	}
	defer links.Close()
	for links.Next() {
		var shiftID, userID int64
		if err := links.Scan(&shiftID, &userID); err != nil {
			return nil, err
		}
		if i, ok := index[shiftID]; ok {
			out[i].UserIDs = append(out[i].UserIDs, userID)
		}
	}
	return out, links.Err()
}

// CreateShift inserts a shift and its user assignments.
func (r *Repository) CreateShift(ctx context.Context, s Shift) (Shift, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Shift{}, err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO shifts (nombre, hora_inicio, hora_fin, creado_por, estado, created_at, updated_at)
		VALUES ($1, $2::time, $3::time, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, s.Nombre, s.HoraInicio, s.HoraFin, s.CreadoPor, s.Estado).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Shift{}, err
	}

	for _, userID := range s.UserIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO shift_user (shift_id, user_id) VALUES ($1, $2)`, s.ID, userID); err != nil {
			return Shift{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Shift{}, err
	}
	return s, nil
}

// UpdateShift updates a shift and replaces its user assignments.
func (r *Repository) UpdateShift(ctx context.Context, id int64, s Shift) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := affected(tx.ExecContext(ctx, `
		UPDATE shifts
		SET nombre = $2, hora_inicio = $3::time, hora_fin = $4::time,
		    creado_por = $5, estado = $6, updated_at = NOW()
		WHERE id = $1
	`, id, s.Nombre, s.HoraInicio, s.HoraFin, s.CreadoPor, s.Estado)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM shift_user WHERE shift_id = $1`, id); err != nil {
		return err
	}
	for _, userID := range s.UserIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO shift_user (shift_id, user_id) VALUES ($1, $2)`, id, userID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteShifts removes the given ids; assignments go with them.
func (r *Repository) DeleteShifts(ctx context.Context, ids []int64) (int64, error) {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shift_user WHERE shift_id = ANY($1)`, ids); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM shifts WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DuplicateShifts copies shifts (without assignments) with a " (Copia)"
// suffix.
func (r *Repository) DuplicateShifts(ctx context.Context, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO shifts (nombre, hora_inicio, hora_fin, creado_por, estado, created_at, updated_at)
		SELECT nombre || ' (Copia)', hora_inicio, hora_fin, creado_por, estado, NOW(), NOW()
		FROM shifts
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExportShifts returns CSV header and rows.
func (r *Repository) ExportShifts(ctx context.Context) ([]string, [][]string, error) {
	shifts, err := r.ListShifts(ctx)
	if err != nil {
		return nil, nil, err
	}
	header := []string{"id", "nombre", "hora_inicio", "hora_fin", "creado_por", "estado"}
	rows := make([][]string, 0, len(shifts))
	for _, s := range shifts {
		rows = append(rows, []string{
			formatID(s.ID), s.Nombre, s.HoraInicio, s.HoraFin, formatID(s.CreadoPor), formatBool(s.Estado),
		})
	}
	return header, rows, nil
}
