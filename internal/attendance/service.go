package attendance

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// ScanCodeStore resolves scanned tokens. A nil result with nil error means no
// active code matched.
type ScanCodeStore interface {
	FindByToken(ctx context.Context, token string) (*ScanCode, error)
}

// UserStore resolves the employee owning a scan code.
type UserStore interface {
	FindByScanCodeID(ctx context.Context, scanCodeID int64) (*User, error)
}

// MethodStore resolves marking methods by their symbolic key.
type MethodStore interface {
	IDByClave(ctx context.Context, clave string) (int64, error)
}

// RecordStore persists and queries attendance records.
type RecordStore interface {
	// LatestWithCoordinates returns the user's most recent record that has
	// both coordinates set, regardless of date. Nil when none exists.
	LatestWithCoordinates(ctx context.Context, userID int64) (*Record, error)
	// HasRecentToken reports whether the user already has a record with the
	// given token at or after the cutoff instant.
	HasRecentToken(ctx context.Context, userID int64, token string, since time.Time) (bool, error)
	// InsertToggled assigns rec.Status from the user's most recent same-day
	// record and inserts, both inside one transaction so concurrent scans of
	// the same user cannot observe the same last status.
	InsertToggled(ctx context.Context, rec Record) (Record, error)
}

// Result is what a successful registration reports back to the scanner.
type Result struct {
	UserName  string
	Status    string
	Timestamp time.Time
	Warning   string
}

// Service is the attendance registrar.
type Service struct {
	codes     ScanCodeStore
	users     UserStore
	methods   MethodStore
	records   RecordStore
	dupWindow time.Duration
	now       func() time.Time

	mu       sync.Mutex
	methodID int64
}

// NewService builds a registrar. dupWindow <= 0 disables duplicate
// suppression, which is the default behavior.
func NewService(codes ScanCodeStore, users UserStore, methods MethodStore, records RecordStore, dupWindow time.Duration) *Service {
	return &Service{
		codes:     codes,
		users:     users,
		methods:   methods,
		records:   records,
		dupWindow: dupWindow,
		now:       time.Now,
	}
}

// Register resolves a scanned token to a user, attaches an optional location
// advisory, and inserts the next Entrada/Salida record. Empty latitude or
// longitude means no location was supplied.
func (s *Service) Register(ctx context.Context, token, latitude, longitude, clientIP string) (Result, error) {
	code, err := s.codes.FindByToken(ctx, token)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if code == nil {
		return Result{}, ErrInvalidCode
	}

	user, err := s.users.FindByScanCodeID(ctx, code.ID)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if user == nil {
		return Result{}, ErrUnlinkedCode
	}

	if s.dupWindow > 0 {
		dup, err := s.records.HasRecentToken(ctx, user.ID, token, s.now().Add(-s.dupWindow))
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if dup {
			return Result{}, ErrDuplicate
		}
	}

	warning := s.locationWarning(ctx, user.ID, latitude, longitude)

	methodID, err := s.qrMethodID(ctx)
	if err != nil {
		log.Printf("resolve method %s failed: %v", MethodQR, err)
		return Result{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	rec := Record{
		UserID:    user.ID,
		MethodID:  methodID,
		IPAddress: clientIP,
		QRToken:   token,
		Estado:    true,
	}
	if latitude != "" {
		rec.Latitude = &latitude
	}
	if longitude != "" {
		rec.Longitude = &longitude
	}

	inserted, err := s.records.InsertToggled(ctx, rec)
	if err != nil {
		log.Printf("insert attendance record for user %d failed: %v", user.ID, err)
		return Result{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return Result{
		UserName:  user.Name,
		Status:    inserted.Status,
		Timestamp: inserted.Timestamp,
		Warning:   warning,
	}, nil
}

// locationWarning never blocks a registration. Rules apply in order: hard
// range check, regional bounds, then drift against the last recorded point.
func (s *Service) locationWarning(ctx context.Context, userID int64, latitude, longitude string) string {
	if latitude == "" || longitude == "" {
		return ""
	}

	lat := parseCoord(latitude)
	lng := parseCoord(longitude)

	if msg := CheckCoordinates(lat, lng); msg != "" {
		return msg
	}

	last, err := s.records.LatestWithCoordinates(ctx, userID)
	if err != nil {
		log.Printf("lookup last located record for user %d failed: %v", userID, err)
		return ""
	}
	if last == nil || last.Latitude == nil || last.Longitude == nil {
		return ""
	}

	return DriftWarning(parseCoord(*last.Latitude), parseCoord(*last.Longitude), lat, lng)
}

// qrMethodID resolves the QR marking method once and caches the id.
func (s *Service) qrMethodID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.methodID != 0 {
		return s.methodID, nil
	}
	id, err := s.methods.IDByClave(ctx, MethodQR)
	if err != nil {
		return 0, err
	}
	s.methodID = id
	return id, nil
}
