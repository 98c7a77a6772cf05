package table

import "testing"

func TestFormatPadsColumns(t *testing.T) {
	rows := [][]string{
		{"amy", "online"},
		{"bartholomew", "away"},
	}
	out := Format(rows, []Alignment{AlignLeft, AlignLeft})
	if len(out) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out))
	}
	if out[0] != "amy          online" {
		t.Fatalf("unexpected row: %q", out[0])
	}
	if out[1] != "bartholomew  away" {
		t.Fatalf("unexpected row: %q", out[1])
	}
}

func TestFormatRightAlignment(t *testing.T) {
	rows := [][]string{
		{"a", "1"},
		{"bb", "22"},
	}
	out := Format(rows, []Alignment{AlignLeft, AlignRight})
	if out[0] != "a    1" {
		t.Fatalf("unexpected row: %q", out[0])
	}
	if out[1] != "bb  22" {
		t.Fatalf("unexpected row: %q", out[1])
	}
}

func TestFormatCountsWideRunes(t *testing.T) {
	rows := [][]string{
		{"日本語", "x"},
		{"abc", "y"},
	}
	out := Format(rows, nil)
	// 日本語 occupies six cells; abc needs three trailing spaces to match.
	if out[1] != "abc     y" {
		t.Fatalf("unexpected row: %q", out[1])
	}
}

func TestFormatEmpty(t *testing.T) {
	if out := Format(nil, nil); out != nil {
		t.Fatalf("expected nil for no rows, got %v", out)
	}
}
