package attendance_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/MarvinH10/asistencias-app/internal/attendance"
)

// fakeStore implements every registrar store interface in memory, returning
// inserted records so tests can inspect what was written.
type fakeStore struct {
	codes    map[string]*attendance.ScanCode
	users    map[int64]*attendance.User // keyed by scan code id
	methods  map[string]int64
	history  []attendance.Record
	inserted []attendance.Record
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		codes:   map[string]*attendance.ScanCode{},
		users:   map[int64]*attendance.User{},
		methods: map[string]int64{"QR": 1, "BIOMETRICO": 2, "MANUAL": 3},
	}
}

func (f *fakeStore) FindByToken(_ context.Context, token string) (*attendance.ScanCode, error) {
	return f.codes[token], nil
}

func (f *fakeStore) FindByScanCodeID(_ context.Context, id int64) (*attendance.User, error) {
	return f.users[id], nil
}

func (f *fakeStore) IDByClave(_ context.Context, clave string) (int64, error) {
	return f.methods[clave], nil
}

func (f *fakeStore) LatestWithCoordinates(_ context.Context, userID int64) (*attendance.Record, error) {
	all := append(append([]attendance.Record{}, f.history...), f.inserted...)
	for i := len(all) - 1; i >= 0; i-- {
		rec := all[i]
		if rec.UserID == userID && rec.Latitude != nil && rec.Longitude != nil {
			return &rec, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) HasRecentToken(_ context.Context, userID int64, token string, since time.Time) (bool, error) {
	all := append(append([]attendance.Record{}, f.history...), f.inserted...)
	for _, rec := range all {
		if rec.UserID == userID && rec.QRToken == token && !rec.Timestamp.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) InsertToggled(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	last := ""
	today := time.Now().Format("2006-01-02")
	all := append(append([]attendance.Record{}, f.history...), f.inserted...)
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].UserID == rec.UserID && all[i].Timestamp.Format("2006-01-02") == today {
			last = all[i].Status
			break
		}
	}
	rec.Status = attendance.NextStatus(last)
	rec.ID = int64(len(all) + 1)
	rec.Timestamp = time.Now()
	rec.Estado = true
	f.inserted = append(f.inserted, rec)
	return rec, nil
}

func newTestService(fs *fakeStore, dupWindow time.Duration) *attendance.Service {
	return attendance.NewService(fs, fs, fs, fs, dupWindow)
}

func seedEmployee(fs *fakeStore, token string, codeID, userID int64, name string) {
	fs.codes[token] = &attendance.ScanCode{ID: codeID, Code: token, Estado: true}
	fs.users[codeID] = &attendance.User{ID: userID, Name: name, Estado: true}
}

func TestRegisterUnknownTokenNoInsert(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs, 0)

	_, err := svc.Register(context.Background(), "NOPE", "", "", "10.0.0.1")
	if err != attendance.ErrInvalidCode {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if len(fs.inserted) != 0 {
		t.Fatalf("expected no insert, got %d", len(fs.inserted))
	}
}

func TestRegisterUnlinkedTokenNoInsert(t *testing.T) {
	fs := newFakeStore()
	fs.codes["ABC123"] = &attendance.ScanCode{ID: 7, Code: "ABC123", Estado: true}
	svc := newTestService(fs, 0)

	_, err := svc.Register(context.Background(), "ABC123", "", "", "10.0.0.1")
	if err != attendance.ErrUnlinkedCode {
		t.Fatalf("expected ErrUnlinkedCode, got %v", err)
	}
	if len(fs.inserted) != 0 {
		t.Fatalf("expected no insert, got %d", len(fs.inserted))
	}
}

func TestRegisterAlternatesStatuses(t *testing.T) {
	fs := newFakeStore()
	seedEmployee(fs, "ABC123", 7, 1, "Ana Torres")
	svc := newTestService(fs, 0)

	want := []string{attendance.StatusEntrada, attendance.StatusSalida, attendance.StatusEntrada}
	for i, expect := range want {
		res, err := svc.Register(context.Background(), "ABC123", "", "", "10.0.0.1")
		if err != nil {
			t.Fatalf("scan %d: %v", i+1, err)
		}
		if res.Status != expect {
			t.Fatalf("scan %d: got %s, want %s", i+1, res.Status, expect)
		}
		if res.UserName != "Ana Torres" {
			t.Fatalf("scan %d: got user %q", i+1, res.UserName)
		}
	}
	if len(fs.inserted) != 3 {
		t.Fatalf("expected 3 records, got %d", len(fs.inserted))
	}
}

func TestRegisterInvalidCoordinatesStillInserts(t *testing.T) {
	fs := newFakeStore()
	seedEmployee(fs, "ABC123", 7, 1, "Ana Torres")
	svc := newTestService(fs, 0)

	res, err := svc.Register(context.Background(), "ABC123", "200", "200", "10.0.0.1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !strings.Contains(res.Warning, "no son válidas") {
		t.Fatalf("expected hard-invalid warning, got %q", res.Warning)
	}
	if len(fs.inserted) != 1 {
		t.Fatalf("expected record inserted despite warning, got %d", len(fs.inserted))
	}
	if fs.inserted[0].Latitude == nil || *fs.inserted[0].Latitude != "200" {
		t.Fatalf("expected latitude stored as given, got %v", fs.inserted[0].Latitude)
	}
}

func TestRegisterOutsideRegionWinsOverDrift(t *testing.T) {
	fs := newFakeStore()
	seedEmployee(fs, "ABC123", 7, 1, "Ana Torres")
	lat, lng := "-9.93", "-76.24"
	fs.history = append(fs.history, attendance.Record{
		UserID: 1, Status: attendance.StatusEntrada, Timestamp: time.Now().Add(-48 * time.Hour),
		Latitude: &lat, Longitude: &lng,
	})
	svc := newTestService(fs, 0)

	// Madrid: globally valid, far outside the regional box and thousands of
	// kilometers from the prior point. Only the regional advisory applies.
	res, err := svc.Register(context.Background(), "ABC123", "40.4168", "-3.7038", "10.0.0.1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !strings.Contains(res.Warning, "fuera del rango esperado") {
		t.Fatalf("expected regional advisory, got %q", res.Warning)
	}
	if strings.Contains(res.Warning, "metros") {
		t.Fatalf("distance advisory should not combine: %q", res.Warning)
	}
}

func TestRegisterDriftAdvisory(t *testing.T) {
	fs := newFakeStore()
	seedEmployee(fs, "ABC123", 7, 1, "Ana Torres")
	lat, lng := "-9.93", "-76.24"
	fs.history = append(fs.history, attendance.Record{
		UserID: 1, Status: attendance.StatusEntrada, Timestamp: time.Now().Add(-2 * time.Hour),
		Latitude: &lat, Longitude: &lng,
	})
	svc := newTestService(fs, 0)

	res, err := svc.Register(context.Background(), "ABC123", "-9.935", "-76.245", "10.0.0.1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !strings.Contains(res.Warning, "780 metros") {
		t.Fatalf("expected drift advisory with rounded distance, got %q", res.Warning)
	}
}

func TestRegisterNoDriftWithin100Meters(t *testing.T) {
	fs := newFakeStore()
	seedEmployee(fs, "ABC123", 7, 1, "Ana Torres")
	lat, lng := "-9.93", "-76.24"
	fs.history = append(fs.history, attendance.Record{
		UserID: 1, Status: attendance.StatusEntrada, Timestamp: time.Now().Add(-2 * time.Hour),
		Latitude: &lat, Longitude: &lng,
	})
	svc := newTestService(fs, 0)

	res, err := svc.Register(context.Background(), "ABC123", "-9.9301", "-76.2401", "10.0.0.1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.Warning != "" {
		t.Fatalf("expected no warning within 100m, got %q", res.Warning)
	}
}

func TestRegisterNoCoordinatesNoWarning(t *testing.T) {
	fs := newFakeStore()
	seedEmployee(fs, "ABC123", 7, 1, "Ana Torres")
	svc := newTestService(fs, 0)

	res, err := svc.Register(context.Background(), "ABC123", "", "", "10.0.0.1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.Warning != "" {
		t.Fatalf("expected no warning without coordinates, got %q", res.Warning)
	}
}

func TestRegisterDuplicateWindow(t *testing.T) {
	fs := newFakeStore()
	seedEmployee(fs, "ABC123", 7, 1, "Ana Torres")
	svc := newTestService(fs, 30*time.Second)

	if _, err := svc.Register(context.Background(), "ABC123", "", "", "10.0.0.1"); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	_, err := svc.Register(context.Background(), "ABC123", "", "", "10.0.0.1")
	if err != attendance.ErrDuplicate {
		t.Fatalf("expected ErrDuplicate inside window, got %v", err)
	}
	if len(fs.inserted) != 1 {
		t.Fatalf("expected one record, got %d", len(fs.inserted))
	}
}

func TestRegisterDuplicateWindowDisabledByDefault(t *testing.T) {
	fs := newFakeStore()
	seedEmployee(fs, "ABC123", 7, 1, "Ana Torres")
	svc := newTestService(fs, 0)

	for i := 0; i < 2; i++ {
		if _, err := svc.Register(context.Background(), "ABC123", "", "", "10.0.0.1"); err != nil {
			t.Fatalf("scan %d: %v", i+1, err)
		}
	}
	if len(fs.inserted) != 2 {
		t.Fatalf("expected rapid repeat scans to both insert, got %d", len(fs.inserted))
	}
}
