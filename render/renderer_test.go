package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto_slide_deck_generator/generator"
)

func sampleSlides() []generator.SlideContent {
	return []generator.SlideContent{
		{Title: "Water Scarcity: A Global Challenge"},
		{Title: "Overview - What We Cover", Bullets: []string{"Causes", "Impacts"}},
		{
			Title:      "Key Drivers - What Shapes It",
			Bullets:    []string{"**Agriculture** uses 70% of __freshwater__", "  Groundwater & aquifers <declining>"},
			References: []string{"https://example.org/a-very-long-path/that-goes-on-and-on/report.html", "https://b.example", "https://c.example"},
		},
		{Title: "Real-World Impact", Bullets: []string{"Content generation failed."}},
		{Title: "Cities", Bullets: []string{"Cape Town day zero"}},
		{Title: "Solutions", Bullets: []string{"Desalination"}},
		{Title: "Key Takeaways - The Path Forward", Bullets: []string{"Act now"}},
	}
}

func readZip(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	out := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = string(data)
	}
	return out
}

func wellFormed(t *testing.T, name, doc string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		require.NoError(t, err, name)
	}
}

func TestRenderWritesDeck(t *testing.T) {
	dir := t.TempDir()
	r := New(dir)
	res, err := r.Render(Request{
		Topic:         "Water Scarcity",
		PresenterName: "Dana",
		ThemeName:     "Minimalist_Dark",
		Slides:        sampleSlides(),
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Water Scarcity_Minimalist_Dark.pptx"), res.Path)
	assert.Equal(t, 8, res.SlideCount)
	assert.Empty(t, res.OutlinePath)

	parts := readZip(t, res.Path)
	for name, doc := range parts {
		wellFormed(t, name, doc)
	}
	for i := 1; i <= 8; i++ {
		assert.Contains(t, parts, "ppt/slides/slide"+string(rune('0'+i))+".xml")
	}
	assert.NotContains(t, parts, "ppt/slides/slide9.xml")
	assert.Contains(t, parts["[Content_Types].xml"], "/ppt/slides/slide8.xml")
	assert.Equal(t, 8, strings.Count(parts["ppt/presentation.xml"], "<p:sldId "))
	assert.Contains(t, parts["ppt/theme/theme1.xml"], `<a:latin typeface="Segoe UI"/>`)

	title := parts["ppt/slides/slide1.xml"]
	assert.Contains(t, title, "Water Scarcity: A Global Challenge")
	assert.Contains(t, title, "Presented by Dana")
	assert.Contains(t, title, `<a:srgbClr val="121212"/>`)

	drivers := parts["ppt/slides/slide3.xml"]
	assert.Contains(t, drivers, "WATER SCARCITY")
	assert.Contains(t, drivers, "<a:t>Key Drivers</a:t>")
	assert.Contains(t, drivers, "<a:t> - What Shapes It</a:t>")
	assert.Contains(t, drivers, `lvl="1"`)
	assert.Contains(t, drivers, "Groundwater &amp; aquifers &lt;declining&gt;")
	assert.Contains(t, drivers, `u="sng"`)
	assert.Contains(t, drivers, "Sources: ")
	assert.Contains(t, drivers, "https://example.org/a-very-long-path/tha...")
	assert.Contains(t, drivers, "Page No. 03")
	assert.Equal(t, 2, strings.Count(drivers, "<a:hlinkClick "))

	rels := parts["ppt/slides/_rels/slide3.xml.rels"]
	assert.Contains(t, rels, `Target="https://b.example" TargetMode="External"`)
	assert.NotContains(t, rels, "c.example")

	closing := parts["ppt/slides/slide8.xml"]
	assert.Contains(t, closing, "Thank You")
	assert.Contains(t, closing, "Questions &amp; Discussion")
}

func TestRenderUnknownThemeUsesDefault(t *testing.T) {
	dir := t.TempDir()
	res, err := New(dir).Render(Request{Topic: "Solar", PresenterName: "P", ThemeName: "Neon", Slides: sampleSlides()[:2]})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Solar_Neon.pptx"), res.Path)
	parts := readZip(t, res.Path)
	assert.Contains(t, parts["ppt/slides/slide1.xml"], `<a:srgbClr val="FFFFFF"/>`)
}

func TestRenderWithoutSlidesUsesTopic(t *testing.T) {
	res, err := New(t.TempDir()).Render(Request{Topic: "Ocean Plastics", PresenterName: "P", ThemeName: DefaultThemeName})
	require.NoError(t, err)
	assert.Equal(t, 2, res.SlideCount)
	parts := readZip(t, res.Path)
	assert.Contains(t, parts["ppt/slides/slide1.xml"], "<a:t>Ocean Plastics</a:t>")
}

func TestRenderTruncatesLongTitle(t *testing.T) {
	long := strings.Repeat("x", 70)
	deck := Layout("t", "p", BuiltinThemes().Resolve(""), []generator.SlideContent{{Title: long}})
	got := deck.Slides[0].Shapes[0].Paragraphs[0].Runs[0].Text
	assert.Equal(t, strings.Repeat("x", 60)+"...", got)
}

func TestRenderWritesOutline(t *testing.T) {
	res, err := New(t.TempDir(), WithOutline(true)).Render(Request{
		Topic: "Water Scarcity", PresenterName: "Dana", ThemeName: "Business_Corporate", Slides: sampleSlides(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.OutlinePath)
	html, err := os.ReadFile(res.OutlinePath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h2>3. Key Drivers - What Shapes It</h2>")
	assert.Contains(t, string(html), "<strong>Agriculture</strong>")
	assert.Contains(t, string(html), `<a href="https://b.example">`)
}

func TestRenderFailureWrapsErrRender(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	_, err := New(filepath.Join(blocker, "out")).Render(Request{Topic: "x", ThemeName: "default"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRender)
}

func TestWritePPTXEmptyBody(t *testing.T) {
	deck := Layout("t", "p", BuiltinThemes().Resolve(""), []generator.SlideContent{{Title: "T"}, {Title: "Empty"}})
	var buf bytes.Buffer
	require.NoError(t, WritePPTX(&buf, deck))
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Len(t, zr.File, 11+2*3)
}
