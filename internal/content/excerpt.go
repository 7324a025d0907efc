package content

import (
	"strings"

	"golang.org/x/net/html"
)

// Excerpt extracts up to limit runes of visible text from an HTML fragment.
func Excerpt(markup string, limit int) string {
	if limit <= 0 {
		return ""
	}
	z := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return truncateRunes(strings.Join(strings.Fields(b.String()), " "), limit)
		case html.StartTagToken:
			name, _ := z.TagName()
			if isHiddenElement(string(name)) {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if isHiddenElement(string(name)) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isHiddenElement(name string) bool {
	switch name {
	case "script", "style", "template", "noscript":
		return true
	}
	return false
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimSpace(string(r[:limit])) + "…"
}
