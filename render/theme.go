package render

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultThemeName is used whenever a requested theme is unknown.
const DefaultThemeName = "default"

// Color is an sRGB triple.
type Color struct {
	R, G, B uint8
}

func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

// Hex returns the color as OOXML expects it, e.g. "0096FF".
func (c Color) Hex() string { return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B) }

func (c Color) sum() int { return int(c.R) + int(c.G) + int(c.B) }

// UnmarshalYAML accepts either "#RRGGBB" or a [r, g, b] sequence.
func (c *Color) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		s := strings.TrimPrefix(strings.TrimSpace(n.Value), "#")
		if len(s) != 6 {
			return fmt.Errorf("line %d: color %q must be #RRGGBB", n.Line, n.Value)
		}
		v, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return fmt.Errorf("line %d: color %q: %w", n.Line, n.Value, err)
		}
		*c = RGB(uint8(v>>16), uint8(v>>8), uint8(v))
		return nil
	case yaml.SequenceNode:
		var parts []int
		if err := n.Decode(&parts); err != nil {
			return fmt.Errorf("line %d: color components: %w", n.Line, err)
		}
		if len(parts) != 3 {
			return fmt.Errorf("line %d: color needs 3 components, got %d", n.Line, len(parts))
		}
		for _, v := range parts {
			if v < 0 || v > 255 {
				return fmt.Errorf("line %d: color component %d out of range", n.Line, v)
			}
		}
		*c = RGB(uint8(parts[0]), uint8(parts[1]), uint8(parts[2]))
		return nil
	default:
		return fmt.Errorf("line %d: unsupported color value", n.Line)
	}
}

// Theme is the palette and font pair applied to every slide of a deck.
type Theme struct {
	Name       string `yaml:"-"`
	Background Color  `yaml:"background"`
	Primary    Color  `yaml:"primary"`
	Secondary  Color  `yaml:"secondary"`
	Accent     Color  `yaml:"accent"`
	TitleFont  string `yaml:"title_font"`
	BodyFont   string `yaml:"body_font"`
}

// BadgeText picks white or black for text drawn on the secondary color.
func (t Theme) BadgeText() Color {
	if t.Secondary.sum() < 382 {
		return RGB(255, 255, 255)
	}
	return RGB(0, 0, 0)
}

// Themes is a read-only lookup table built once at startup.
type Themes struct {
	byName map[string]Theme
}

var builtinThemes = []Theme{
	{Name: "Minimalist_Dark", Background: RGB(18, 18, 18), Primary: RGB(240, 240, 240), Secondary: RGB(0, 150, 255), Accent: RGB(130, 130, 130), TitleFont: "Segoe UI", BodyFont: "Calibri"},
	{Name: "Business_Corporate", Background: RGB(245, 245, 245), Primary: RGB(10, 30, 60), Secondary: RGB(0, 123, 255), Accent: RGB(108, 117, 125), TitleFont: "Arial", BodyFont: "Helvetica"},
	{Name: "Education_Creative", Background: RGB(255, 253, 248), Primary: RGB(50, 50, 50), Secondary: RGB(255, 110, 60), Accent: RGB(120, 120, 120), TitleFont: "Century Gothic", BodyFont: "Trebuchet MS"},
	{Name: "Historical_Vintage", Background: RGB(245, 245, 220), Primary: RGB(80, 50, 20), Secondary: RGB(139, 69, 19), Accent: RGB(160, 82, 45), TitleFont: "Garamond", BodyFont: "Georgia"},
	{Name: "Technology_Futuristic", Background: RGB(10, 0, 25), Primary: RGB(0, 255, 127), Secondary: RGB(190, 70, 255), Accent: RGB(105, 105, 105), TitleFont: "Tw Cen MT", BodyFont: "Verdana"},
	{Name: "Environmental_Natural", Background: RGB(240, 255, 240), Primary: RGB(0, 80, 0), Secondary: RGB(34, 139, 34), Accent: RGB(107, 142, 35), TitleFont: "Rockwell", BodyFont: "Calibri"},
	{Name: DefaultThemeName, Background: RGB(255, 255, 255), Primary: RGB(0, 0, 0), Secondary: RGB(100, 100, 100), Accent: RGB(150, 150, 150), TitleFont: "Segoe UI", BodyFont: "Calibri"},
}

// BuiltinThemes returns the seven bundled themes.
func BuiltinThemes() *Themes {
	t := &Themes{byName: make(map[string]Theme, len(builtinThemes))}
	for _, th := range builtinThemes {
		t.byName[th.Name] = th
	}
	return t
}

// Resolve returns the named theme, or the default theme for unknown names.
func (t *Themes) Resolve(name string) Theme {
	if th, ok := t.byName[name]; ok {
		return th
	}
	return t.byName[DefaultThemeName]
}

// Has reports whether name is a known theme.
func (t *Themes) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

type themesFile struct {
	Themes map[string]Theme `yaml:"themes"`
}

// LoadThemes reads a YAML themes file and layers its entries over the
// built-in table. Missing fonts are filled from the default theme.
//
//	themes:
//	  Ocean_Calm:
//	    background: "#F0F8FF"
//	    primary: [0, 40, 80]
//	    secondary: "#0077B6"
//	    accent: "#5C7C8A"
//	    title_font: Georgia
func LoadThemes(path string) (*Themes, error) {
	t := BuiltinThemes()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read themes file: %w", err)
	}
	var f themesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse themes file %s: %w", path, err)
	}
	if len(f.Themes) == 0 {
		return nil, errors.New("themes file defines no themes")
	}
	def := t.byName[DefaultThemeName]
	for name, th := range f.Themes {
		if strings.TrimSpace(name) == "" {
			return nil, errors.New("themes file has an entry with an empty name")
		}
		th.Name = name
		if th.TitleFont == "" {
			th.TitleFont = def.TitleFont
		}
		if th.BodyFont == "" {
			th.BodyFont = def.BodyFont
		}
		t.byName[name] = th
	}
	return t, nil
}
