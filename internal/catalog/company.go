package catalog

import (
	"context"
	"time"
)

// Company is a legal entity employees belong to.
type Company struct {
	ID          int64     `json:"id"`
	RazonSocial string    `json:"razon_social"`
	RUC         string    `json:"ruc"`
	Estado      bool      `json:"estado"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListCompanies returns all companies ordered by name.
func (r *Repository) ListCompanies(ctx context.Context) ([]Company, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, razon_social, ruc, estado, created_at, updated_at
		FROM companies
		ORDER BY razon_social
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.RazonSocial, &c.RUC, &c.Estado, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCompany inserts a company and returns it with ids and timestamps set.
func (r *Repository) CreateCompany(ctx context.Context, c Company) (Company, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO companies (razon_social, ruc, estado, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, c.RazonSocial, c.RUC, c.Estado).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// UpdateCompany updates a company by id.
func (r *Repository) UpdateCompany(ctx context.Context, id int64, c Company) error {
	return affected(r.db.ExecContext(ctx, `
		UPDATE companies
		SET razon_social = $2, ruc = $3, estado = $4, updated_at = NOW()
		WHERE id = $1
	`, id, c.RazonSocial, c.RUC, c.Estado))
}

// DeleteCompanies removes the given ids, returning how many were deleted.
func (r *Repository) DeleteCompanies(ctx context.Context, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DuplicateCompanies copies the given rows with a " (Copia)" name suffix.
func (r *Repository) DuplicateCompanies(ctx context.Context, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO companies (razon_social, ruc, estado, created_at, updated_at)
		SELECT razon_social || ' (Copia)', ruc, estado, NOW(), NOW()
		FROM companies
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExportCompanies returns CSV header and rows.
func (r *Repository) ExportCompanies(ctx context.Context) ([]string, [][]string, error) {
	companies, err := r.ListCompanies(ctx)
	if err != nil {
		return nil, nil, err
	}
	header := []string{"id", "razon_social", "ruc", "estado", "created_at"}
	rows := make([][]string, 0, len(companies))
	for _, c := range companies {
		rows = append(rows, []string{formatID(c.ID), c.RazonSocial, c.RUC, formatBool(c.Estado), formatTime(c.CreatedAt)})
	}
	return header, rows, nil
}
