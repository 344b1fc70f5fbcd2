package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MarvinH10/asistencias-app/internal/attendance"
)

// scanFixture backs the registrar with in-memory data for HTTP tests.
type scanFixture struct {
	codes   map[string]attendance.ScanCode
	users   map[int64]attendance.User
	records []attendance.Record
	nextID  int64
}

func (f *scanFixture) FindByToken(_ context.Context, token string) (*attendance.ScanCode, error) {
	if c, ok := f.codes[token]; ok && c.Estado {
		out := c
		return &out, nil
	}
	return nil, nil
}

func (f *scanFixture) FindByScanCodeID(_ context.Context, scanCodeID int64) (*attendance.User, error) {
	for _, u := range f.users {
		if u.ID == scanCodeID { // fixture convention: user id == code id
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (f *scanFixture) IDByClave(_ context.Context, clave string) (int64, error) {
	if clave == attendance.MethodQR {
		return 1, nil
	}
	return 0, nil
}

func (f *scanFixture) LatestWithCoordinates(_ context.Context, userID int64) (*attendance.Record, error) {
	for i := len(f.records) - 1; i >= 0; i-- {
		r := f.records[i]
		if r.UserID == userID && r.Latitude != nil && r.Longitude != nil {
			out := r
			return &out, nil
		}
	}
	return nil, nil
}

func (f *scanFixture) HasRecentToken(_ context.Context, userID int64, token string, since time.Time) (bool, error) {
	for _, r := range f.records {
		if r.UserID == userID && r.QRToken == token && !r.Timestamp.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *scanFixture) InsertToggled(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	last := ""
	today := time.Now().Format("2006-01-02")
	for i := len(f.records) - 1; i >= 0; i-- {
		r := f.records[i]
		if r.UserID == rec.UserID && r.Timestamp.Format("2006-01-02") == today {
			last = r.Status
			break
		}
	}
	f.nextID++
	rec.ID = f.nextID
	rec.Status = attendance.NextStatus(last)
	rec.Timestamp = time.Now()
	f.records = append(f.records, rec)
	return rec, nil
}

func newScanRouter(fix *scanFixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := attendance.NewService(fix, fix, fix, fix, 0)
	h := New(svc, nil, nil, nil)
	r := gin.New()
	r.POST("/attendance/register", h.RegisterAttendance)
	return r
}

func postScan(t *testing.T, r *gin.Engine, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/attendance/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w.Code, out
}

func TestRegisterUnknownCode(t *testing.T) {
	fix := &scanFixture{codes: map[string]attendance.ScanCode{}}
	r := newScanRouter(fix)

	code, out := postScan(t, r, `{"qr_code":"NOPE"}`)
	if code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
	if out["success"] != false {
		t.Errorf("success = %v, want false", out["success"])
	}
	if len(fix.records) != 0 {
		t.Errorf("records inserted = %d, want 0", len(fix.records))
	}
}

func TestRegisterUnlinkedCode(t *testing.T) {
	fix := &scanFixture{
		codes: map[string]attendance.ScanCode{
			"ABC123": {ID: 7, Code: "ABC123", Estado: true},
		},
		users: map[int64]attendance.User{},
	}
	r := newScanRouter(fix)

	code, out := postScan(t, r, `{"qr_code":"ABC123"}`)
	if code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
	got, _ := out["error"].(string)
	if !strings.Contains(got, "No se encontró un usuario") {
		t.Errorf("error = %q, want unlinked-code message", got)
	}
	if len(fix.records) != 0 {
		t.Errorf("records inserted = %d, want 0", len(fix.records))
	}
}

func TestRegisterTogglesStatus(t *testing.T) {
	fix := &scanFixture{
		codes: map[string]attendance.ScanCode{
			"ABC123": {ID: 3, Code: "ABC123", Estado: true},
		},
		users: map[int64]attendance.User{
			3: {ID: 3, Name: "Ana Torres", Estado: true},
		},
	}
	r := newScanRouter(fix)

	want := []string{attendance.StatusEntrada, attendance.StatusSalida, attendance.StatusEntrada}
	for i, status := range want {
		code, out := postScan(t, r, `{"qr_code":"ABC123"}`)
		if code != http.StatusOK {
			t.Fatalf("scan %d: status = %d, want 200", i, code)
		}
		msg, _ := out["message"].(string)
		if !strings.Contains(msg, status) {
			t.Errorf("scan %d: message = %q, want status %q", i, msg, status)
		}
		if out["user_name"] != "Ana Torres" {
			t.Errorf("scan %d: user_name = %v", i, out["user_name"])
		}
	}
	if len(fix.records) != 3 {
		t.Fatalf("records inserted = %d, want 3", len(fix.records))
	}
}

func TestRegisterInvalidCoordinatesStillInserts(t *testing.T) {
	fix := &scanFixture{
		codes: map[string]attendance.ScanCode{
			"ABC123": {ID: 3, Code: "ABC123", Estado: true},
		},
		users: map[int64]attendance.User{
			3: {ID: 3, Name: "Ana Torres", Estado: true},
		},
	}
	r := newScanRouter(fix)

	code, out := postScan(t, r, `{"qr_code":"ABC123","latitude":"200","longitude":"-76.24"}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if out["success"] != true {
		t.Errorf("success = %v, want true", out["success"])
	}
	warning, _ := out["warning"].(string)
	if !strings.Contains(warning, "no son válidas") {
		t.Errorf("warning = %q, want invalid-coordinates advisory", warning)
	}
	if len(fix.records) != 1 {
		t.Fatalf("records inserted = %d, want 1", len(fix.records))
	}
	if got := fix.records[0].Latitude; got == nil || *got != "200" {
		t.Errorf("stored latitude = %v, want \"200\"", got)
	}
}
