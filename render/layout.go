package render

import (
	"fmt"
	"math"
	"strings"

	"auto_slide_deck_generator/generator"
)

const (
	emuPerInch = 914400

	slideWidth  = 12192000 // 13.333in
	slideHeight = 6858000  // 7.5in

	titleMaxRunes = 60
	refMaxRunes   = 40
	maxRefs       = 2
)

func inches(v float64) int64 { return int64(math.Round(v * emuPerInch)) }

type ShapeKind int

const (
	TextBox ShapeKind = iota
	RoundRect
)

type Align string

const (
	AlignLeft   Align = "l"
	AlignCenter Align = "ctr"
)

// TextRun is a span of text with one set of character properties.
type TextRun struct {
	Text      string
	Font      string
	SizePt    float64
	Bold      bool
	Underline bool
	Color     Color
	Link      string
}

type Paragraph struct {
	Align Align
	Level int
	// LineSpacing is a multiple of single spacing; 0 leaves it unset.
	LineSpacing  float64
	SpaceAfterPt float64
	Runs         []TextRun
}

// Shape is a positioned box in EMU.
type Shape struct {
	Kind       ShapeKind
	X, Y, W, H int64
	Fill       *Color
	WordWrap   bool
	MidAnchor  bool
	Paragraphs []Paragraph
}

type Slide struct {
	Shapes []Shape
}

// Deck is the fully laid out presentation, ready to be serialized.
type Deck struct {
	Title  string
	Author string
	Theme  Theme
	Width  int64
	Height int64
	Slides []Slide
}

func box(x, y, w, h float64) Shape {
	return Shape{Kind: TextBox, X: inches(x), Y: inches(y), W: inches(w), H: inches(h)}
}

// Layout places the title slide, one slide per entry after the first, and a
// closing slide. slides[0] only supplies the deck title.
func Layout(topic, presenter string, theme Theme, slides []generator.SlideContent) *Deck {
	d := &Deck{
		Title:  topic,
		Author: presenter,
		Theme:  theme,
		Width:  slideWidth,
		Height: slideHeight,
	}
	title := topic
	if len(slides) > 0 {
		title = slides[0].Title
	}
	d.Slides = append(d.Slides, titleSlide(theme, title, presenter))
	for i := 1; i < len(slides); i++ {
		d.Slides = append(d.Slides, contentSlide(theme, topic, i, slides[i]))
	}
	d.Slides = append(d.Slides, closingSlide(theme))
	return d
}

func titleSlide(th Theme, title, presenter string) Slide {
	t := box(1, 2, 11.33, 2.5)
	t.WordWrap = true
	t.MidAnchor = true
	t.Paragraphs = []Paragraph{{
		Align:       AlignCenter,
		LineSpacing: 1.2,
		Runs: []TextRun{{
			Text: truncate(title, titleMaxRunes), Font: th.TitleFont, SizePt: 48, Bold: true, Color: th.Primary,
		}},
	}}

	sub := box(0.7, 4.8, 11.63, 1)
	sub.Paragraphs = []Paragraph{{
		Align: AlignCenter,
		Runs: []TextRun{{
			Text: "Presented by " + presenter, Font: th.BodyFont, SizePt: 20, Color: th.Accent,
		}},
	}}
	return Slide{Shapes: []Shape{t, sub}}
}

func contentSlide(th Theme, topic string, index int, sc generator.SlideContent) Slide {
	header := box(0.5, 0.2, 12, 0.5)
	header.Paragraphs = []Paragraph{{Runs: []TextRun{{
		Text: strings.ToUpper(topic), Font: th.BodyFont, SizePt: 12, Bold: true, Color: th.Accent,
	}}}}

	title := box(0.5, 0.7, 12, 1.0)
	title.WordWrap = true
	head, tail, split := SplitTitle(sc.Title)
	titleRuns := []TextRun{{Text: head, Font: th.TitleFont, SizePt: 28, Bold: true, Color: th.Primary}}
	if split {
		titleRuns = append(titleRuns, TextRun{Text: " - " + tail, Font: th.TitleFont, SizePt: 28, Bold: true, Color: th.Secondary})
	}
	title.Paragraphs = []Paragraph{{Align: AlignLeft, Runs: titleRuns}}

	body := box(0.5, 1.6, 12, 4.4)
	body.WordWrap = true
	for _, b := range sc.Bullets {
		p := Paragraph{LineSpacing: 1.3, SpaceAfterPt: 12, Level: BulletLevel(b)}
		for _, seg := range TokenizeBullet(b) {
			run := TextRun{Text: seg.Text, Font: th.BodyFont, SizePt: 22, Color: th.Primary}
			if seg.Bold {
				run.Bold = true
				run.Color = th.Secondary
			}
			run.Underline = seg.Underline
			p.Runs = append(p.Runs, run)
		}
		body.Paragraphs = append(body.Paragraphs, p)
	}

	shapes := []Shape{header, title, body}
	if refs := referenceBox(th, sc.References); refs != nil {
		shapes = append(shapes, *refs)
	}

	fill := th.Secondary
	badge := Shape{
		Kind: RoundRect,
		X:    inches(10.5), Y: inches(6.6), W: inches(1.8), H: inches(0.4),
		Fill:      &fill,
		MidAnchor: true,
		Paragraphs: []Paragraph{{Align: AlignCenter, Runs: []TextRun{{
			Text: fmt.Sprintf("Page No. %02d", index+1), Font: th.BodyFont, SizePt: 11, Bold: true, Color: th.BadgeText(),
		}}}},
	}
	return Slide{Shapes: append(shapes, badge)}
}

func referenceBox(th Theme, refs []string) *Shape {
	if len(refs) == 0 {
		return nil
	}
	if len(refs) > maxRefs {
		refs = refs[:maxRefs]
	}
	runs := []TextRun{{Text: "Sources: ", Font: th.BodyFont, SizePt: 9, Bold: true, Color: th.Accent}}
	for i, u := range refs {
		if i > 0 {
			runs = append(runs, TextRun{Text: " | ", Font: th.BodyFont, SizePt: 9, Color: th.Accent})
		}
		runs = append(runs, TextRun{Text: truncate(u, refMaxRunes), Font: th.BodyFont, SizePt: 9, Color: th.Accent, Link: u})
	}
	s := box(0.8, 6.2, 8.2, 0.8)
	s.Paragraphs = []Paragraph{{Runs: runs}}
	return &s
}

func closingSlide(th Theme) Slide {
	thanks := box(1, 2.5, 11.33, 2)
	thanks.Paragraphs = []Paragraph{{Align: AlignCenter, Runs: []TextRun{{
		Text: "Thank You", Font: th.TitleFont, SizePt: 54, Bold: true, Color: th.Secondary,
	}}}}
	q := box(1, 4.8, 11.33, 1)
	q.Paragraphs = []Paragraph{{Align: AlignCenter, Runs: []TextRun{{
		Text: "Questions & Discussion", Font: th.BodyFont, SizePt: 20, Color: th.Accent,
	}}}}
	return Slide{Shapes: []Shape{thanks, q}}
}
