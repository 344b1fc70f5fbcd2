package export

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf,
		[]string{"id", "nombre"},
		[][]string{{"1", "Recursos Humanos"}, {"2", "Ventas, Lima"}},
	)
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "id,nombre\n") {
		t.Errorf("missing header, got %q", out)
	}
	if !strings.Contains(out, `"Ventas, Lima"`) {
		t.Errorf("expected quoted field with comma, got %q", out)
	}
}
