package catalog

import (
	"context"
	"time"
)

// Department belongs to a company and may nest under a parent department.
type Department struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	ParentID    *int64    `json:"parent_id"`
	Nombre      string    `json:"nombre"`
	Codigo      string    `json:"codigo"`
	Direccion   *string   `json:"direccion"`
	Descripcion *string   `json:"descripcion"`
	Estado      bool      `json:"estado"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListDepartments returns all departments ordered by name.
func (r *Repository) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, company_id, parent_id, nombre, codigo, direccion, descripcion, estado, created_at, updated_at
		FROM departments
		ORDER BY nombre
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.CompanyID, &d.ParentID, &d.Nombre, &d.Codigo,
			&d.Direccion, &d.Descripcion, &d.Estado, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CreateDepartment inserts a department.
func (r *Repository) CreateDepartment(ctx context.Context, d Department) (Department, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO departments (company_id, parent_id, nombre, codigo, direccion, descripcion, estado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, d.CompanyID, d.ParentID, d.Nombre, d.Codigo, d.Direccion, d.Descripcion, d.Estado).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// UpdateDepartment updates a department by id.
func (r *Repository) UpdateDepartment(ctx context.Context, id int64, d Department) error {
	return affected(r.db.ExecContext(ctx, `
		UPDATE departments
		SET company_id = $2, parent_id = $3, nombre = $4, codigo = $5,
		    direccion = $6, descripcion = $7, estado = $8, updated_at = NOW()
		WHERE id = $1
	`, id, d.CompanyID, d.ParentID, d.Nombre, d.Codigo, d.Direccion, d.Descripcion, d.Estado))
}

// DeleteDepartments removes the given ids.
func (r *Repository) DeleteDepartments(ctx context.Context, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM departments WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DuplicateDepartments copies rows with suffixed name and code. codigo is
// unique, so the copy gets the source id appended.
func (r *Repository) DuplicateDepartments(ctx context.Context, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO departments (company_id, parent_id, nombre, codigo, direccion, descripcion, estado, created_at, updated_at)
		SELECT company_id, parent_id, nombre || ' (Copia)', codigo || '-copy-' || id,
		       direccion, descripcion, estado, NOW(), NOW()
		FROM departments
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExportDepartments returns CSV header and rows.
func (r *Repository) ExportDepartments(ctx context.Context) ([]string, [][]string, error) {
	departments, err := r.ListDepartments(ctx)
	if err != nil {
		return nil, nil, err
	}
	header := []string{"id", "company_id", "parent_id", "nombre", "codigo", "direccion", "descripcion", "estado"}
	rows := make([][]string, 0, len(departments))
	for _, d := range departments {
		rows = append(rows, []string{
			formatID(d.ID), formatID(d.CompanyID), formatNullID(d.ParentID),
			d.Nombre, d.Codigo, formatNullString(d.Direccion), formatNullString(d.Descripcion),
			formatBool(d.Estado),
		})
	}
	return header, rows, nil
}
