// Package catalog holds the admin-side stores: companies, departments,
// positions, users, shifts, holidays, attendance methods, QR codes and
// attendance records, with the duplicate / bulk-delete / export utilities the
// back office exposes.
package catalog

import (
	"database/sql"
	"errors"
	"strconv"
	"time"
)

// ErrNotFound is returned by update and delete operations when no row
// matched.
var ErrNotFound = errors.New("registro no encontrado")

// Repository persists catalog entities in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func formatNullID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func formatNullString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatNullDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// affected converts a sql.Result into ErrNotFound when nothing changed.
func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
