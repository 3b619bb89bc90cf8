package theme

import (
	"context"
	"sort"
	"testing"

	tint "github.com/lrstanley/bubbletint"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetCurrent(t *testing.T) {
	t.Cleanup(func() { _ = SetCurrent(DefaultName) })

	require.NoError(t, SetCurrent(" Store-Dark "))
	assert.Equal(t, "store-dark", Current().Name)

	require.NoError(t, SetCurrent(""))
	assert.Equal(t, DefaultName, Current().Name)

	assert.Error(t, SetCurrent("neon"))
	assert.Equal(t, DefaultName, Current().Name)
}

func TestAvailableIsSorted(t *testing.T) {
	names := Available()
	assert.True(t, sort.StringsAreSorted(names))
	for _, name := range []string{"ember", "forest", "ocean", "store-dark", "store-light"} {
		assert.Contains(t, names, name)
	}
}

func TestAvailableIncludesTerminalTints(t *testing.T) {
	tints := tint.DefaultTints()
	require.NotEmpty(t, tints)

	names := Available()
	assert.Greater(t, len(names), 5)

	registered := 0
	for _, tn := range tints {
		p, ok := Get(tn.ID())
		if !ok {
			continue
		}
		registered++
		assert.Contains(t, names, p.Name)
		for _, token := range []Token{ColorTextPrimary, ColorTextMuted, ColorPrimary, ColorPrimaryText, ColorBorder} {
			_, err := colorful.Hex(p.Color(token).Light)
			assert.NoError(t, err, "%s %s", p.Name, token)
		}
	}
	assert.NotZero(t, registered)
}

func TestSetCurrentAcceptsTint(t *testing.T) {
	t.Cleanup(func() { _ = SetCurrent(DefaultName) })

	var name string
	for _, tn := range tint.DefaultTints() {
		if Exists(tn.ID()) {
			name = tn.ID()
			break
		}
	}
	require.NotEmpty(t, name)

	require.NoError(t, SetCurrent(name))
	assert.Equal(t, normalize(name), Current().Name)
}

func TestNormalizeHex(t *testing.T) {
	assert.Equal(t, "#1F8ACB", normalizeHex("1f8acb"))
	assert.Equal(t, "#FFFFFF", normalizeHex("#fff"))
	assert.Empty(t, normalizeHex("not a color"))
}

func TestSeededPalettesHaveEveryToken(t *testing.T) {
	p, ok := Get("ocean")
	require.True(t, ok)
	for token := range storeLight.Colors {
		c, ok := p.Colors[token]
		require.True(t, ok, token)
		_, err := colorful.Hex(c.Light)
		assert.NoError(t, err, token)
		_, err = colorful.Hex(c.Dark)
		assert.NoError(t, err, token)
	}
}

func TestContrast(t *testing.T) {
	assert.Equal(t, "#121418", contrast("#FFFFFF"))
	assert.Equal(t, "#F8F8F8", contrast("#000000"))
}

func TestFromContext(t *testing.T) {
	forest, ok := Get("forest")
	require.True(t, ok)

	ctx := ContextWithPalette(context.Background(), forest)
	assert.Equal(t, "forest", FromContext(ctx).Name)
	assert.Equal(t, Current().Name, FromContext(context.Background()).Name)
}

func TestColorFallsBackToDefault(t *testing.T) {
	p := Palette{Name: "empty"}
	assert.Equal(t, storeLight.Colors[ColorDanger], p.Color(ColorDanger))
}
