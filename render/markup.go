package render

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	titleDelim = regexp.MustCompile(`[:\-–]`)
	inlineMark = regexp.MustCompile(`\*\*.*?\*\*|__.*?__`)
)

// Segment is one styled span of a bullet.
type Segment struct {
	Text      string
	Bold      bool
	Underline bool
}

// SplitTitle splits at the first ':', '-' or en dash. ok is false when the
// title has no delimiter, in which case head is the trimmed title.
func SplitTitle(title string) (head, tail string, ok bool) {
	loc := titleDelim.FindStringIndex(title)
	if loc == nil {
		return strings.TrimSpace(title), "", false
	}
	return strings.TrimSpace(title[:loc[0]]), strings.TrimSpace(title[loc[1]:]), true
}

// BulletLevel is 1 for bullets indented with two spaces, else 0.
func BulletLevel(bullet string) int {
	if strings.HasPrefix(bullet, "  ") {
		return 1
	}
	return 0
}

// TokenizeBullet trims the bullet and splits it on **bold** and __underline__
// markers. Text outside markers keeps its spacing; empty spans are dropped.
func TokenizeBullet(bullet string) []Segment {
	text := strings.TrimSpace(bullet)
	var out []Segment
	last := 0
	for _, m := range inlineMark.FindAllStringIndex(text, -1) {
		if m[0] > last {
			out = append(out, Segment{Text: text[last:m[0]]})
		}
		mark := text[m[0]:m[1]]
		inner := mark[2 : len(mark)-2]
		if inner != "" {
			if strings.HasPrefix(mark, "**") {
				out = append(out, Segment{Text: inner, Bold: true})
			} else {
				out = append(out, Segment{Text: inner, Underline: true})
			}
		}
		last = m[1]
	}
	if last < len(text) {
		out = append(out, Segment{Text: text[last:]})
	}
	return out
}

// truncate cuts s to n runes and appends "..." when it was longer.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// SanitizeFilename keeps letters, digits, space, '-' and '_', then drops
// trailing spaces.
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}
