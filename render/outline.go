package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"auto_slide_deck_generator/generator"
)

// OutlineMarkdown renders the deck as a Markdown handout: one section per
// slide with its bullets and sources. Bullet markup is already Markdown.
func OutlineMarkdown(topic, presenter string, slides []generator.SlideContent) string {
	var b strings.Builder
	title := topic
	if len(slides) > 0 {
		title = slides[0].Title
	}
	fmt.Fprintf(&b, "# %s\n\n_Presented by %s_\n\n", title, presenter)
	for i := 1; i < len(slides); i++ {
		sc := slides[i]
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, sc.Title)
		for _, bullet := range sc.Bullets {
			indent := ""
			if BulletLevel(bullet) > 0 {
				indent = "    "
			}
			fmt.Fprintf(&b, "%s- %s\n", indent, strings.TrimSpace(bullet))
		}
		refs := sc.References
		if len(refs) > maxRefs {
			refs = refs[:maxRefs]
		}
		if len(refs) > 0 {
			links := make([]string, 0, len(refs))
			for _, u := range refs {
				links = append(links, fmt.Sprintf("<%s>", u))
			}
			fmt.Fprintf(&b, "\nSources: %s\n", strings.Join(links, " | "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func mdToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// OutlineHTML wraps the converted outline in a standalone page styled with
// the deck theme.
func OutlineHTML(topic, presenter string, th Theme, slides []generator.SlideContent) (string, error) {
	body, err := mdToHTML(OutlineMarkdown(topic, presenter, slides))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", esc(topic))
	fmt.Fprintf(&b, "<style>body{background:#%s;color:#%s;font-family:'%s',sans-serif;max-width:900px;margin:2em auto;}"+
		"h1,h2{font-family:'%s',sans-serif;}strong,a{color:#%s;}em{color:#%s;}</style>\n",
		th.Background.Hex(), th.Primary.Hex(), th.BodyFont, th.TitleFont, th.Secondary.Hex(), th.Accent.Hex())
	b.WriteString("</head><body>\n")
	b.WriteString(body)
	b.WriteString("</body></html>\n")
	return b.String(), nil
}
