package attendance

import (
	"errors"
	"time"
)

// Statuses recorded for a scan. Consecutive records for one user on one day
// alternate, starting from Entrada.
const (
	StatusEntrada = "Entrada"
	StatusSalida  = "Salida"
)

// MethodQR is the symbolic key of the marking method used for every
// scanner-originated record. Resolved against attendance_methods.clave so the
// registrar does not depend on seed-data insertion order.
const MethodQR = "QR"

// ScanCode is the shared QR token employees scan. The schema allows many rows
// but at most one is active at a time.
type ScanCode struct {
	ID     int64
	Code   string
	Estado bool
}

// User is the subset of a user row the registrar needs.
type User struct {
	ID     int64
	Name   string
	Estado bool
}

// Record mirrors an attendance_records row.
type Record struct {
	ID        int64
	UserID    int64
	MethodID  int64
	Timestamp time.Time
	IPAddress string
	QRToken   string
	Latitude  *string
	Longitude *string
	Status    string
	Notas     *string
	Estado    bool
}

var (
	// ErrInvalidCode means the scanned token matches no active QR code.
	ErrInvalidCode = errors.New("código QR no válido")
	// ErrUnlinkedCode means the token is valid but no user references it.
	ErrUnlinkedCode = errors.New("ningún usuario asociado al código QR")
	// ErrDuplicate means a record for the same user and token exists inside
	// the configured suppression window.
	ErrDuplicate = errors.New("registro duplicado dentro de la ventana configurada")
	// ErrPersistence wraps a failed write to the record store.
	ErrPersistence = errors.New("error al registrar la asistencia")
)

// NextStatus returns the status for a new record given the status of the most
// recent record of the day. Empty input means no prior record today.
func NextStatus(last string) string {
	if last == StatusEntrada {
		return StatusSalida
	}
	return StatusEntrada
}
