package table

import (
	"strings"
	"testing"
)

func TestFormatPadsColumns(t *testing.T) {
	rows := [][]string{
		{"Host", "Down"},
		{"example.com", "1"},
		{"a", "100"},
	}
	got := Format(rows, []Alignment{AlignLeft, AlignRight}, 0)
	want := []string{
		"Host         Down",
		"example.com     1",
		"a             100",
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestFormatShrinksToWidth(t *testing.T) {
	rows := [][]string{
		{"very-long-hostname.example.com", "ok"},
	}
	got := Format(rows, nil, 20)
	if CellWidth(got[0]) != 20 {
		t.Fatalf("expected width 20, got %d (%q)", CellWidth(got[0]), got[0])
	}
	if !strings.Contains(got[0], "…") {
		t.Fatalf("expected truncation marker in %q", got[0])
	}
}

func TestCellWidthIgnoresEscapes(t *testing.T) {
	if w := CellWidth("\x1b[31mred\x1b[0m"); w != 3 {
		t.Fatalf("expected width 3, got %d", w)
	}
	if w := CellWidth("日本"); w != 4 {
		t.Fatalf("expected wide runes to count double, got %d", w)
	}
}

func TestFit(t *testing.T) {
	if got := Fit("abc", 5, AlignRight); got != "  abc" {
		t.Fatalf("expected right aligned, got %q", got)
	}
	if got := Fit("abcdef", 4, AlignLeft); got != "abc…" {
		t.Fatalf("expected truncated, got %q", got)
	}
	if got := Fit("abc", 0, AlignLeft); got != "" {
		t.Fatalf("expected empty for zero width, got %q", got)
	}
}
