// Package theme holds the color palettes of the interactive browser.
package theme

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	tint "github.com/lrstanley/bubbletint"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/storeops/storectl/internal/meta"
)

// DefaultName is the built-in theme used when no override is provided.
const DefaultName = "store-light"

// Token is a semantic color slot.
type Token string

const (
	ColorTextPrimary Token = "text.primary"
	ColorTextMuted   Token = "text.muted"
	ColorBorder      Token = "border"
	ColorPrimary     Token = "primary"
	ColorPrimaryText Token = "primary.text"
	ColorAccent      Token = "accent"
	ColorSuccess     Token = "success"
	ColorWarning     Token = "warning"
	ColorDanger      Token = "danger"
	ColorHighlight   Token = "highlight"
)

// Color stores light and dark variants for adaptive rendering.
type Color struct {
	Light string
	Dark  string
}

func (c Color) Adaptive() lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: c.Light, Dark: c.Dark}
}

// Palette is a named set of token colors.
type Palette struct {
	Name        string
	DisplayName string
	Colors      map[Token]Color
}

// Color returns the color for token, falling back to the default palette.
func (p Palette) Color(token Token) Color {
	if c, ok := p.Colors[token]; ok {
		return c
	}
	if c, ok := storeLight.Colors[token]; ok {
		return c
	}
	return Color{Light: "#000000", Dark: "#FFFFFF"}
}

func (p Palette) Adaptive(token Token) lipgloss.AdaptiveColor {
	return p.Color(token).Adaptive()
}

// ForegroundStyle returns a style with the foreground set to token.
func (p Palette) ForegroundStyle(token Token) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.Adaptive(token))
}

type contextKey struct{}

var (
	registryOnce sync.Once
	registryMu   sync.RWMutex
	palettes     map[string]Palette
	current      Palette
	themeKey     contextKey
)

// ensureRegistry loads the palettes on first use. Terminal themes from
// bubbletint are registered first so the built-in names always win.
func ensureRegistry() {
	registryOnce.Do(func() {
		registryMu.Lock()
		defer registryMu.Unlock()

		palettes = make(map[string]Palette)
		for _, t := range tint.DefaultTints() {
			register(paletteFromTint(t))
		}

		register(storeLight)
		register(storeDark)
		// Seeded palettes derive every token from three base colors.
		register(FromSeed("ocean", "Ocean", "#0B3D5C", "#F4F8FB", "#1F8ACB"))
		register(FromSeed("forest", "Forest", "#183A1D", "#F6FBF4", "#3E8E41"))
		register(FromSeed("ember", "Ember", "#3B1F12", "#FFF8F3", "#D9622B"))
		current = storeLight
	})
}

func register(p Palette) {
	p.Name = normalize(p.Name)
	if p.Name == "" {
		return
	}
	if p.DisplayName == "" {
		p.DisplayName = p.Name
	}
	palettes[p.Name] = p
}

// Exists reports whether name is a registered theme.
func Exists(name string) bool {
	_, ok := Get(name)
	return ok
}

// ContextWithPalette stores the palette on the context.
func ContextWithPalette(ctx context.Context, p Palette) context.Context {
	return context.WithValue(ctx, themeKey, p)
}

// FromContext returns the palette stored on ctx or the current palette.
func FromContext(ctx context.Context) Palette {
	if ctx != nil {
		if p, ok := ctx.Value(themeKey).(Palette); ok {
			return p
		}
	}
	return Current()
}

// Available returns the registered theme names, sorted.
func Available() []string {
	ensureRegistry()
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Get(name string) (Palette, bool) {
	ensureRegistry()
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := palettes[normalize(name)]
	return p, ok
}

// SetCurrent selects the active palette. An empty name selects the default.
func SetCurrent(name string) error {
	ensureRegistry()
	name = normalize(name)
	if name == "" {
		name = DefaultName
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	p, ok := palettes[name]
	if !ok {
		return fmt.Errorf("unknown color theme %q, run '%s themes' to list the available themes", name, meta.CLIName)
	}
	current = p
	return nil
}

func Current() Palette {
	ensureRegistry()
	registryMu.RLock()
	defer registryMu.RUnlock()
	return current
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FromSeed derives a full palette from a foreground, background and accent
// color. Light and dark variants are blended in Lab space.
func FromSeed(name, display, fg, bg, accent string) Palette {
	return Palette{
		Name:        name,
		DisplayName: display,
		Colors: map[Token]Color{
			ColorTextPrimary: {Light: fg, Dark: bg},
			ColorTextMuted:   {Light: blend(fg, bg, 0.45), Dark: blend(bg, fg, 0.45)},
			ColorBorder:      {Light: blend(fg, bg, 0.75), Dark: blend(bg, fg, 0.7)},
			ColorPrimary:     {Light: accent, Dark: blend(accent, "#FFFFFF", 0.2)},
			ColorPrimaryText: {Light: contrast(accent), Dark: contrast(blend(accent, "#FFFFFF", 0.2))},
			ColorAccent:      {Light: blend(accent, fg, 0.3), Dark: blend(accent, bg, 0.3)},
			ColorSuccess:     {Light: "#2E7D32", Dark: "#81C784"},
			ColorWarning:     {Light: "#B26A00", Dark: "#FFB74D"},
			ColorDanger:      {Light: "#C62828", Dark: "#E57373"},
			ColorHighlight:   {Light: blend(accent, bg, 0.85), Dark: blend(accent, fg, 0.8)},
		},
	}
}

// paletteFromTint maps a terminal color scheme onto the browser tokens. Tint
// colors are used as is for both light and dark terminals.
func paletteFromTint(t tint.Tint) Palette {
	if t == nil {
		return Palette{}
	}
	fg := normalizeHex(tint.Hex(t.Fg()))
	bg := normalizeHex(tint.Hex(t.Bg()))
	accent := normalizeHex(tint.Hex(t.Cyan()))
	accentBright := normalizeHex(tint.Hex(t.BrightBlue()))
	muted := normalizeHex(tint.Hex(t.BrightBlack()))
	if fg == "" || bg == "" || accent == "" {
		return Palette{}
	}
	if accentBright == "" {
		accentBright = accent
	}
	if muted == "" {
		muted = blend(fg, bg, 0.45)
	}

	colors := map[Token]Color{
		ColorTextPrimary: single(fg),
		ColorTextMuted:   single(muted),
		ColorBorder:      single(blend(muted, bg, 0.4)),
		ColorPrimary:     single(accent),
		ColorPrimaryText: single(contrast(accent)),
		ColorAccent:      single(accentBright),
		ColorHighlight:   single(blend(accent, bg, 0.8)),
	}
	for token, c := range map[Token]string{
		ColorSuccess: normalizeHex(tint.Hex(t.Green())),
		ColorWarning: normalizeHex(tint.Hex(t.Yellow())),
		ColorDanger:  normalizeHex(tint.Hex(t.Red())),
	} {
		if c != "" {
			colors[token] = single(c)
		}
	}

	return Palette{
		Name:        t.ID(),
		DisplayName: strings.TrimSpace(t.DisplayName()),
		Colors:      colors,
	}
}

func single(hex string) Color {
	return Color{Light: hex, Dark: hex}
}

// normalizeHex returns hex as #RRGGBB, or "" when it is not a color.
func normalizeHex(hex string) string {
	c, err := colorful.Hex("#" + strings.TrimPrefix(strings.TrimSpace(hex), "#"))
	if err != nil {
		return ""
	}
	return strings.ToUpper(c.Hex())
}

func blend(from, to string, amount float64) string {
	a, err := colorful.Hex(from)
	if err != nil {
		return from
	}
	b, err := colorful.Hex(to)
	if err != nil {
		return from
	}
	return a.BlendLab(b, amount).Clamped().Hex()
}

// contrast picks near-black or near-white text for the given background.
func contrast(hex string) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return "#121418"
	}
	r, g, b := c.LinearRgb()
	if 0.2126*r+0.7152*g+0.0722*b > 0.5 {
		return "#121418"
	}
	return "#F8F8F8"
}

var storeLight = Palette{
	Name:        DefaultName,
	DisplayName: "Store Light",
	Colors: map[Token]Color{
		ColorTextPrimary: {Light: "#1B1F24", Dark: "#F2F4F7"},
		ColorTextMuted:   {Light: "#6A737D", Dark: "#9AA4AF"},
		ColorBorder:      {Light: "#D0D7DE", Dark: "#3D444D"},
		ColorPrimary:     {Light: "#0969DA", Dark: "#4493F8"},
		ColorPrimaryText: {Light: "#FFFFFF", Dark: "#0D1117"},
		ColorAccent:      {Light: "#8250DF", Dark: "#AB7DF8"},
		ColorSuccess:     {Light: "#1A7F37", Dark: "#3FB950"},
		ColorWarning:     {Light: "#9A6700", Dark: "#D29922"},
		ColorDanger:      {Light: "#CF222E", Dark: "#F85149"},
		ColorHighlight:   {Light: "#DDF4FF", Dark: "#1F2A37"},
	},
}

var storeDark = Palette{
	Name:        "store-dark",
	DisplayName: "Store Dark",
	Colors: map[Token]Color{
		ColorTextPrimary: {Light: "#F2F4F7", Dark: "#F2F4F7"},
		ColorTextMuted:   {Light: "#9AA4AF", Dark: "#9AA4AF"},
		ColorBorder:      {Light: "#3D444D", Dark: "#3D444D"},
		ColorPrimary:     {Light: "#4493F8", Dark: "#4493F8"},
		ColorPrimaryText: {Light: "#0D1117", Dark: "#0D1117"},
		ColorAccent:      {Light: "#AB7DF8", Dark: "#AB7DF8"},
		ColorSuccess:     {Light: "#3FB950", Dark: "#3FB950"},
		ColorWarning:     {Light: "#D29922", Dark: "#D29922"},
		ColorDanger:      {Light: "#F85149", Dark: "#F85149"},
		ColorHighlight:   {Light: "#1F2A37", Dark: "#1F2A37"},
	},
}
