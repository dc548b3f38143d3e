package util

import (
	"testing"
	"time"
)

func TestFormatISO(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	got := FormatISO(time.Date(2023, 11, 15, 5, 13, 20, 123456789, loc))
	if got != "2023-11-14T22:13:20.123Z" {
		t.Fatalf("unexpected iso %s", got)
	}
}

func TestTruncateKeepsRunes(t *testing.T) {
	if got := Truncate("héllo", 2); got != "h" {
		t.Fatalf("unexpected %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestNormalizeSymbol(t *testing.T) {
	if got := NormalizeSymbol("  brk.b "); got != "BRK.B" {
		t.Fatalf("unexpected %q", got)
	}
}
