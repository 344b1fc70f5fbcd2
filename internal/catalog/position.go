package catalog

import (
	"context"
	"time"
)

// Position is a job title, optionally scoped to a company and department.
type Position struct {
	ID           int64     `json:"id"`
	CompanyID    *int64    `json:"company_id"`
	DepartmentID *int64    `json:"department_id"`
	ParentID     *int64    `json:"parent_id"`
	Nombre       string    `json:"nombre"`
	Descripcion  *string   `json:"descripcion"`
	Estado       bool      `json:"estado"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListPositions returns all positions ordered by name.
func (r *Repository) ListPositions(ctx context.Context) ([]Position, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, company_id, department_id, parent_id, nombre, descripcion, estado, created_at, updated_at
		FROM positions
		ORDER BY nombre
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Position
	for rows.Next() {
		var p Position
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.DepartmentID, &p.ParentID,
			&p.Nombre, &p.Descripcion, &p.Estado, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreatePosition inserts a position.
func (r *Repository) CreatePosition(ctx context.Context, p Position) (Position, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO positions (company_id, department_id, parent_id, nombre, descripcion, estado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, p.CompanyID, p.DepartmentID, p.ParentID, p.Nombre, p.Descripcion, p.Estado).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// UpdatePosition updates a position by id.
func (r *Repository) UpdatePosition(ctx context.Context, id int64, p Position) error {
	return affected(r.db.ExecContext(ctx, `
		UPDATE positions
		SET company_id = $2, department_id = $3, parent_id = $4,
		    nombre = $5, descripcion = $6, estado = $7, updated_at = NOW()
		WHERE id = $1
	`, id, p.CompanyID, p.DepartmentID, p.ParentID, p.Nombre, p.Descripcion, p.Estado))
}

// DeletePositions removes the given ids.
func (r *Repository) DeletePositions(ctx context.Context, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM positions WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DuplicatePositions copies rows with a " (Copia)" name suffix.
func (r *Repository) DuplicatePositions(ctx context.Context, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO positions (company_id, department_id, parent_id, nombre, descripcion, estado, created_at, updated_at)
		SELECT company_id, department_id, parent_id, nombre || ' (Copia)', descripcion, estado, NOW(), NOW()
		FROM positions
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExportPositions returns CSV header and rows.
func (r *Repository) ExportPositions(ctx context.Context) ([]string, [][]string, error) {
	positions, err := r.ListPositions(ctx)
	if err != nil {
		return nil, nil, err
	}
	header := []string{"id", "company_id", "department_id", "nombre", "descripcion", "estado"}
	rows := make([][]string, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, []string{
			formatID(p.ID), formatNullID(p.CompanyID), formatNullID(p.DepartmentID),
			p.Nombre, formatNullString(p.Descripcion), formatBool(p.Estado),
		})
	}
	return header, rows, nil
}
