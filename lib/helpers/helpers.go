package helpers

import (
	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"net/url"
	"strings"
	"time"
)

func EscapeMarkdownV2(text string) string {
	text = strings.ReplaceAll(text, "\\", "\\\\")

	charactersToEscape := []string{".", "-", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "=", "|", "{", "}", "!"}

	for _, char := range charactersToEscape {
		text = strings.ReplaceAll(text, char, "\\"+char)
	}
	return text
}

// WikipediaURL links to the English Wikipedia article for title
func WikipediaURL(title string) string {
	return "https://en.wikipedia.org/wiki/" + url.PathEscape(title)
}

// Truncate shortens text to at most max runes, cutting at a word boundary when possible
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	cut := string(runes[:max])
	if i := strings.LastIndex(cut, " "); i > max/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:") + "…"
}

func FormatCount(n int64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%d", n)
}

// FormatAge renders t relative to now, e.g. "3 hours ago"
func FormatAge(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}
