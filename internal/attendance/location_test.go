package attendance

import (
	"math"
	"strings"
	"testing"
)

func TestHaversineZeroAndSymmetry(t *testing.T) {
	if d := Haversine(-9.93, -76.24, -9.93, -76.24); d != 0 {
		t.Errorf("distance(A,A) = %f, want 0", d)
	}

	ab := Haversine(-9.93, -76.24, -9.935, -76.245)
	ba := Haversine(-9.935, -76.245, -9.93, -76.24)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", ab, ba)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Two points near Huánuco roughly 780 m apart.
	d := Haversine(-9.93, -76.24, -9.935, -76.245)
	if d < 770 || d > 790 {
		t.Errorf("expected ~780m, got %f", d)
	}
}

func TestCheckCoordinatesOutOfRange(t *testing.T) {
	cases := []struct{ lat, lng float64 }{
		{91, -76.24},
		{-91, -76.24},
		{-9.93, 181},
		{-9.93, -181},
		{200, 200},
	}
	for _, tc := range cases {
		msg := CheckCoordinates(tc.lat, tc.lng)
		if !strings.Contains(msg, "no son válidas") {
			t.Errorf("(%f,%f): expected hard-invalid message, got %q", tc.lat, tc.lng, msg)
		}
	}
}

func TestCheckCoordinatesOutsideRegion(t *testing.T) {
	// Valid globally, outside the Peru bounding box.
	msg := CheckCoordinates(40.4168, -3.7038) // Madrid
	if !strings.Contains(msg, "fuera del rango esperado") {
		t.Errorf("expected regional advisory, got %q", msg)
	}

	// The range check wins over the regional one.
	if msg := CheckCoordinates(91, 0); !strings.Contains(msg, "no son válidas") {
		t.Errorf("range check should win, got %q", msg)
	}
}

func TestCheckCoordinatesInsideRegion(t *testing.T) {
	if msg := CheckCoordinates(-12.0464, -77.0428); msg != "" { // Lima
		t.Errorf("expected no message inside region, got %q", msg)
	}
}

func TestDriftWarning(t *testing.T) {
	// ~780 m apart: advisory with the rounded distance.
	msg := DriftWarning(-9.93, -76.24, -9.935, -76.245)
	if !strings.Contains(msg, "780 metros") {
		t.Errorf("expected advisory with rounded distance, got %q", msg)
	}

	// ~16 m apart: no advisory.
	if msg := DriftWarning(-9.93, -76.24, -9.9301, -76.2401); msg != "" {
		t.Errorf("expected no advisory within 100m, got %q", msg)
	}
}

func TestNextStatus(t *testing.T) {
	if got := NextStatus(""); got != StatusEntrada {
		t.Errorf("first of day: got %s, want Entrada", got)
	}
	if got := NextStatus(StatusEntrada); got != StatusSalida {
		t.Errorf("after Entrada: got %s, want Salida", got)
	}
	if got := NextStatus(StatusSalida); got != StatusEntrada {
		t.Errorf("after Salida: got %s, want Entrada", got)
	}
}

func TestParseCoordMalformed(t *testing.T) {
	if got := parseCoord("not-a-number"); got != 0 {
		t.Errorf("malformed coordinate: got %f, want 0", got)
	}
	if got := parseCoord("-9.93"); got != -9.93 {
		t.Errorf("got %f, want -9.93", got)
	}
}
