// Package render lays out slide contents and writes them as a themed .pptx
// deck, plus an optional HTML outline of the same content.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"auto_slide_deck_generator/generator"
)

// ErrRender marks a failure to produce the output deck.
var ErrRender = errors.New("render failed")

const DefaultOutputDir = "outputs"

// Request is everything the renderer needs for one deck.
type Request struct {
	Topic         string
	PresenterName string
	ThemeName     string
	Slides        []generator.SlideContent
}

type Result struct {
	Path string
	// OutlinePath is empty unless outline export is enabled.
	OutlinePath string
	SlideCount  int
}

// Renderer turns slide contents into files under outputDir.
type Renderer struct {
	outputDir string
	outline   bool
	themes    *Themes
	logger    *zap.Logger
}

type Option func(*Renderer)

func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithOutline also writes an HTML outline next to each deck.
func WithOutline(enabled bool) Option {
	return func(r *Renderer) { r.outline = enabled }
}

func WithThemes(t *Themes) Option {
	return func(r *Renderer) {
		if t != nil {
			r.themes = t
		}
	}
}

func New(outputDir string, opts ...Option) *Renderer {
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	r := &Renderer{
		outputDir: outputDir,
		themes:    BuiltinThemes(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OutputPath is where a deck for topic and theme name is written.
func (r *Renderer) OutputPath(topic, themeName string) string {
	base := SanitizeFilename(topic)
	if base == "" {
		base = "presentation"
	}
	return filepath.Join(r.outputDir, fmt.Sprintf("%s_%s.pptx", base, SanitizeFilename(themeName)))
}

// Render writes the deck. Every failure is wrapped in ErrRender.
func (r *Renderer) Render(req Request) (Result, error) {
	theme := r.themes.Resolve(req.ThemeName)
	if !r.themes.Has(req.ThemeName) {
		r.logger.Info("unknown theme, using default", zap.String("theme", req.ThemeName))
	}

	deck := Layout(req.Topic, req.PresenterName, theme, req.Slides)
	var buf bytes.Buffer
	if err := WritePPTX(&buf, deck); err != nil {
		return Result{}, fmt.Errorf("%w: encode deck: %w", ErrRender, err)
	}

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("%w: create output dir: %w", ErrRender, err)
	}
	path := r.OutputPath(req.Topic, req.ThemeName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return Result{}, fmt.Errorf("%w: write %s: %w", ErrRender, path, err)
	}
	res := Result{Path: path, SlideCount: len(deck.Slides)}
	r.logger.Info("deck written", zap.String("path", path), zap.Int("slides", res.SlideCount), zap.String("theme", theme.Name))

	if r.outline {
		html, err := OutlineHTML(req.Topic, req.PresenterName, theme, req.Slides)
		if err != nil {
			return Result{}, fmt.Errorf("%w: outline: %w", ErrRender, err)
		}
		res.OutlinePath = strings.TrimSuffix(path, ".pptx") + ".html"
		if err := os.WriteFile(res.OutlinePath, []byte(html), 0o644); err != nil {
			return Result{}, fmt.Errorf("%w: write %s: %w", ErrRender, res.OutlinePath, err)
		}
	}
	return res, nil
}
