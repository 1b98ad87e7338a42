package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTitle(t *testing.T) {
	cases := []struct {
		in, head, tail string
		ok             bool
	}{
		{"Why It Matters - Setting the Stage", "Why It Matters", "Setting the Stage", true},
		{"Causes: Climate and Demand", "Causes", "Climate and Demand", true},
		{"Impact – On Cities", "Impact", "On Cities", true},
		{"Long-term Outlook: Next Decade", "Long", "term Outlook: Next Decade", true},
		{"Overview", "Overview", "", false},
	}
	for _, c := range cases {
		head, tail, ok := SplitTitle(c.in)
		assert.Equal(t, c.head, head, c.in)
		assert.Equal(t, c.tail, tail, c.in)
		assert.Equal(t, c.ok, ok, c.in)
	}
}

func TestTokenizeBullet(t *testing.T) {
	got := TokenizeBullet("**Alpha** – __Beta__ gamma")
	assert.Equal(t, []Segment{
		{Text: "Alpha", Bold: true},
		{Text: " – "},
		{Text: "Beta", Underline: true},
		{Text: " gamma"},
	}, got)
}

func TestTokenizeBulletPlainAndEdgeCases(t *testing.T) {
	assert.Equal(t, []Segment{{Text: "plain text"}}, TokenizeBullet("  plain text  "))
	assert.Empty(t, TokenizeBullet("   "))
	assert.Equal(t, []Segment{{Text: "a ** b"}}, TokenizeBullet("a ** b"))
	assert.Equal(t, []Segment{{Text: "x", Bold: true}, {Text: "y", Bold: true}}, TokenizeBullet("**x****y**"))
}

func TestBulletLevel(t *testing.T) {
	assert.Equal(t, 1, BulletLevel("  - nested"))
	assert.Equal(t, 0, BulletLevel(" single space"))
	assert.Equal(t, 0, BulletLevel("top"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 40))
	assert.Equal(t, "abc...", truncate("abcdef", 3))
	assert.Equal(t, "水资源...", truncate("水资源短缺", 3))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Water Scarcity 2030", SanitizeFilename("Water Scarcity: 2030?  "))
	assert.Equal(t, "a-b_c", SanitizeFilename("a-b_c/../"))
	assert.Equal(t, "Café", SanitizeFilename("Café!"))
	assert.Equal(t, "", SanitizeFilename("???"))
}
