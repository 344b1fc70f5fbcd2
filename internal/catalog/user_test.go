package catalog

import (
	"strings"
	"testing"
)

func TestCopyEmailFirstCandidateFree(t *testing.T) {
	got := CopyEmail("ana@x.pe", func(string) bool { return false })
	if got != "ana@x.pe_copy" {
		t.Errorf("got %q, want ana@x.pe_copy", got)
	}
}

func TestCopyEmailCountsUp(t *testing.T) {
	taken := map[string]bool{"a@x.pe_copy": true, "a@x.pe_copy_1": true}
	got := CopyEmail("a@x.pe", func(e string) bool { return taken[e] })
	if got != "a@x.pe_copy_2" {
		t.Errorf("got %q, want a@x.pe_copy_2", got)
	}
}

func TestCopyEmailFallsBackWhenTooLong(t *testing.T) {
	// Every candidate is taken, so the suffix keeps growing until the
	// timestamped fallback kicks in.
	got := CopyEmail("verylongaddress@x.pe", func(string) bool { return true })
	if strings.Contains(got, "_copy") {
		t.Errorf("expected timestamped fallback, got %q", got)
	}
	if !strings.HasPrefix(got, "verylongad_") {
		t.Errorf("expected truncated base prefix, got %q", got)
	}
}
