package catalog

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// User is an employee account. Password holds the bcrypt hash, never the
// plaintext, and is excluded from JSON.
type User struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Password        string     `json:"-"`
	QRCodeID        *int64     `json:"qr_code_id"`
	CompanyID       int64      `json:"company_id"`
	DepartmentID    *int64     `json:"department_id"`
	PositionID      *int64     `json:"position_id"`
	DNI             string     `json:"dni"`
	DeviceUID       *string    `json:"device_uid"`
	FechaIngreso    *time.Time `json:"fecha_ingreso"`
	FechaRetiro     *time.Time `json:"fecha_retiro"`
	FechaCumpleanos *time.Time `json:"fecha_cumpleanos"`
	Estado          bool       `json:"estado"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

const userColumns = `id, name, email, password, qr_code_id, company_id, department_id, position_id,
	dni, device_uid, fecha_ingreso, fecha_retiro, fecha_cumpleanos, estado, created_at, updated_at`

func scanUser(scan func(dest ...any) error) (User, error) {
	var u User
	err := scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.QRCodeID, &u.CompanyID,
		&u.DepartmentID, &u.PositionID, &u.DNI, &u.DeviceUID,
		&u.FechaIngreso, &u.FechaRetiro, &u.FechaCumpleanos, &u.Estado, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// ListUsers returns all users ordered by name.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CreateUser inserts a user. Password must already be hashed.
func (r *Repository) CreateUser(ctx context.Context, u User) (User, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password, qr_code_id, company_id, department_id, position_id,
			dni, device_uid, fecha_ingreso, fecha_retiro, fecha_cumpleanos, estado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, u.Name, u.Email, u.Password, u.QRCodeID, u.CompanyID, u.DepartmentID, u.PositionID,
		u.DNI, u.DeviceUID, u.FechaIngreso, u.FechaRetiro, u.FechaCumpleanos, u.Estado).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// UpdateUser updates a user by id. An empty Password keeps the stored hash.
func (r *Repository) UpdateUser(ctx context.Context, id int64, u User) error {
	return affected(r.db.ExecContext(ctx, `
		UPDATE users
		SET name = $2, email = $3,
		    password = CASE WHEN $4 = '' THEN password ELSE $4 END,
		    qr_code_id = $5, company_id = $6, department_id = $7, position_id = $8,
		    dni = $9, device_uid = $10, fecha_ingreso = $11, fecha_retiro = $12,
		    fecha_cumpleanos = $13, estado = $14, updated_at = NOW()
		WHERE id = $1
	`, id, u.Name, u.Email, u.Password, u.QRCodeID, u.CompanyID, u.DepartmentID, u.PositionID,
		u.DNI, u.DeviceUID, u.FechaIngreso, u.FechaRetiro, u.FechaCumpleanos, u.Estado))
}

// DeleteUsers removes the given ids.
func (r *Repository) DeleteUsers(ctx context.Context, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// EmailExists reports whether any user already holds the email.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

// CopyEmail derives a free email address for a duplicated user. exists is
// consulted for each candidate; after too many collisions, or when the suffix
// grows past 20 characters, a timestamped address is generated instead.
func CopyEmail(base string, exists func(string) bool) string {
	candidate := base + "_copy"
	counter := 1
	for exists(candidate) {
		candidate = fmt.Sprintf("%s_copy_%d", base, counter)
		counter++
		if len(candidate) > 20 {
			head := base
			if len(head) > 10 {
				head = head[:10]
			}
			return fmt.Sprintf("%s_%d%d", head, time.Now().Unix(), 10+rand.Intn(90))
		}
	}
	return candidate
}

// DuplicateUsers copies the given users one by one, de-duplicating emails
// with CopyEmail and appending " (Copia)" to the name.
func (r *Repository) DuplicateUsers(ctx context.Context, ids []int64) (int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	var copied int64
	for _, u := range users {
		email := CopyEmail(u.Email, func(candidate string) bool {
			taken, err := r.EmailExists(ctx, candidate)
			return err == nil && taken
		})
		copy := u
		copy.Email = email
		copy.Name = u.Name + " (Copia)"
		copy.QRCodeID = nil // the QR link stays with the original
		if _, err := r.CreateUser(ctx, copy); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}

// ExportUsers returns CSV header and rows. Password hashes are never
// exported.
func (r *Repository) ExportUsers(ctx context.Context) ([]string, [][]string, error) {
	users, err := r.ListUsers(ctx)
	if err != nil {
		return nil, nil, err
	}
	header := []string{"id", "name", "email", "dni", "company_id", "department_id", "position_id",
		"qr_code_id", "fecha_ingreso", "fecha_retiro", "estado"}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			formatID(u.ID), u.Name, u.Email, u.DNI,
			formatID(u.CompanyID), formatNullID(u.DepartmentID), formatNullID(u.PositionID),
			formatNullID(u.QRCodeID), formatNullDate(u.FechaIngreso), formatNullDate(u.FechaRetiro),
			formatBool(u.Estado),
		})
	}
	return header, rows, nil
}
