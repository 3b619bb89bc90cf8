package profile

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager() Manager {
	v := viper.New()
	v.Set("main-street", map[string]any{
		"backend": map[string]any{"base-url": "https://main.example/api", "token": "t0k"},
	})
	v.Set("default", map[string]any{"output": "text"})
	return NewManager(v)
}

func TestNamesAreSorted(t *testing.T) {
	assert.Equal(t, []string{"default", "main-street"}, newManager().Names())
}

func TestSummarize(t *testing.T) {
	m := newManager()

	s, err := m.Summarize("main-street")
	require.NoError(t, err)
	assert.Equal(t, Summary{Name: "main-street", BaseURL: "https://main.example/api", HasToken: true}, s)

	s, err = m.Summarize("default")
	require.NoError(t, err)
	assert.Empty(t, s.BaseURL)
	assert.False(t, s.HasToken)

	_, err = m.Summarize("missing")
	assert.ErrorIs(t, err, errProfileNotFound)
}
