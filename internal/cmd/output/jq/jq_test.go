package jq

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	cmdcommon "github.com/storeops/storectl/internal/cmd/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConfig struct {
	values     map[string]string
	boolValues map[string]bool
}

func (s stubConfig) Save() error                           { return nil }
func (s stubConfig) GetString(key string) string           { return s.values[key] }
func (s stubConfig) GetBool(key string) bool               { return s.boolValues[key] }
func (s stubConfig) GetInt(string) int                     { return 0 }
func (s stubConfig) GetIntOrElse(_ string, orElse int) int { return orElse }
func (s stubConfig) GetDuration(string) time.Duration      { return 0 }
func (s stubConfig) SetString(string, string)              {}
func (s stubConfig) Set(string, any)                       {}
func (s stubConfig) BindFlag(string, *pflag.Flag) error    { return nil }
func (s stubConfig) GetProfile() string                    { return "default" }
func (s stubConfig) GetPath() string                       { return "" }

func (s stubConfig) IsSet(key string) bool {
	_, ok := s.values[key]
	return ok
}

func newCommand() *cobra.Command {
	command := &cobra.Command{Use: "list"}
	AddFlags(command.Flags())
	return command
}

type page struct {
	Items []map[string]any `json:"items"`
	Total int              `json:"total"`
}

var samplePage = page{
	Items: []map[string]any{{"id": "1", "name": "Rice"}, {"id": "2", "name": "Flour"}},
	Total: 2,
}

func TestResolveSettingsDefaults(t *testing.T) {
	settings, err := ResolveSettings(newCommand(), nil)
	require.NoError(t, err)
	assert.False(t, settings.Enabled())
	assert.Equal(t, cmdcommon.ColorModeAuto, settings.ColorMode)
	assert.Equal(t, DefaultTheme, settings.Theme)
}

func TestResolveSettingsEmptyFlagIsIdentity(t *testing.T) {
	command := newCommand()
	require.NoError(t, command.Flags().Set(FlagName, ""))

	cfg := stubConfig{values: map[string]string{DefaultExpressionConfigPath: ".total"}}
	settings, err := ResolveSettings(command, cfg)
	require.NoError(t, err)
	assert.Equal(t, ".", settings.Filter)
}

func TestResolveSettingsRawShortFlagWithoutConfig(t *testing.T) {
	command := newCommand()
	require.NoError(t, command.Flags().Parse([]string{"-r", "--jq", ".items[].name"}))

	settings, err := ResolveSettings(command, nil)
	require.NoError(t, err)
	assert.True(t, settings.RawOutput)
	assert.Equal(t, ".items[].name", settings.Filter)
}

func TestResolveSettingsReadsConfig(t *testing.T) {
	cfg := stubConfig{
		values: map[string]string{
			DefaultExpressionConfigPath: ".items",
			ColorEnabledConfigPath:      "Always",
			ColorThemeConfigPath:        "dracula",
		},
		boolValues: map[string]bool{RawOutputConfigPath: true},
	}

	settings, err := ResolveSettings(newCommand(), cfg)
	require.NoError(t, err)
	assert.Equal(t, ".items", settings.Filter)
	assert.Equal(t, cmdcommon.ColorModeAlways, settings.ColorMode)
	assert.Equal(t, "dracula", settings.Theme)
	assert.True(t, settings.RawOutput)
}

func TestResolveSettingsRejectsBadColorMode(t *testing.T) {
	cfg := stubConfig{values: map[string]string{ColorEnabledConfigPath: "sometimes"}}
	_, err := ResolveSettings(newCommand(), cfg)
	require.Error(t, err)
}

func TestResolveSettingsIgnoresCommandsWithoutJQ(t *testing.T) {
	cfg := stubConfig{values: map[string]string{DefaultExpressionConfigPath: ".items"}}
	settings, err := ResolveSettings(&cobra.Command{Use: "collections"}, cfg)
	require.NoError(t, err)
	assert.False(t, settings.Enabled())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(cmdcommon.TEXT, Settings{}))
	assert.NoError(t, Validate(cmdcommon.YAML, Settings{Filter: "."}))
	assert.ErrorContains(t, Validate(cmdcommon.TEXT, Settings{Filter: "."}), "only supported")
	assert.ErrorContains(t, Validate(cmdcommon.JSON, Settings{RawOutput: true}), "requires")
	assert.ErrorContains(t, Validate(cmdcommon.YAML, Settings{Filter: ".", RawOutput: true}), "--output json")
}

func TestApplyReturnsFilteredValue(t *testing.T) {
	settings := Settings{Filter: ".items[0].name", ColorMode: cmdcommon.ColorModeNever}

	result, handled, err := Apply(samplePage, cmdcommon.JSON, settings, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Equal(t, "Rice", result)
}

func TestApplyWithoutFilterPassesThrough(t *testing.T) {
	result, handled, err := Apply(samplePage, cmdcommon.TEXT, Settings{}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Equal(t, samplePage, result)
}

func TestApplyRawOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	settings := Settings{Filter: ".items[] | .name, .id", RawOutput: true}

	result, handled, err := Apply(samplePage, cmdcommon.JSON, settings, buf)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Nil(t, result)
	assert.Equal(t, "Rice\n1\nFlour\n2\n", buf.String())
}

func TestApplyColorized(t *testing.T) {
	buf := &bytes.Buffer{}
	settings := Settings{Filter: ".", ColorMode: cmdcommon.ColorModeAlways, Theme: DefaultTheme}

	_, handled, err := Apply(samplePage, cmdcommon.JSON, settings, buf)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestFilter(t *testing.T) {
	out, err := Filter([]byte(`{"total":3}`), ".missing")
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	out, err = Filter([]byte(`[1,2]`), ".[]")
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", string(out))

	_, err = Filter([]byte(`{"total":3}`), ".total[")
	assert.ErrorContains(t, err, "invalid jq expression")

	_, err = Filter(nil, ".")
	assert.Error(t, err)
}

func TestUseColorNever(t *testing.T) {
	assert.False(t, UseColor(cmdcommon.ColorModeNever, &bytes.Buffer{}))
	assert.True(t, UseColor(cmdcommon.ColorModeAlways, &bytes.Buffer{}))
	assert.False(t, UseColor(cmdcommon.ColorModeAuto, &bytes.Buffer{}))
}
