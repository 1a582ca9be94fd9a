package helpers

import (
	"testing"
	"time"
)

func TestEscapeMarkdownV2(t *testing.T) {
	got := EscapeMarkdownV2("Jean-Luc (born 1940). Painter!")
	want := "Jean\\-Luc \\(born 1940\\)\\. Painter\\!"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWikipediaURL(t *testing.T) {
	if got := WikipediaURL("Ada Lovelace"); got != "https://en.wikipedia.org/wiki/Ada%20Lovelace" {
		t.Errorf("got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := Truncate("one two three four five", 12); got != "one two…" {
		t.Errorf("got %q", got)
	}
}

func TestFormatCount(t *testing.T) {
	if got := FormatCount(1234567); got != "1,234,567" {
		t.Errorf("got %q", got)
	}
}

func TestFormatAge(t *testing.T) {
	if got := FormatAge(time.Time{}); got != "" {
		t.Errorf("zero time: got %q", got)
	}
	if got := FormatAge(time.Now().Add(-3 * time.Hour)); got != "3 hours ago" {
		t.Errorf("got %q", got)
	}
}
