// Package profile reads the profiles of a configuration file. Each top-level
// key of the file is one profile, typically one store backend.
package profile

import (
	"errors"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/storeops/storectl/internal/cmd/common"
)

var errProfileNotFound = errors.New("profile not found")

// Summary is what the profiles command shows for one profile.
type Summary struct {
	Name     string `json:"name"`
	BaseURL  string `json:"base_url"`
	HasToken bool   `json:"has_token"`
	Current  bool   `json:"current"`
}

type Manager interface {
	Names() []string
	Summarize(name string) (Summary, error)
}

type profileManager struct {
	config *viper.Viper
}

// Empty type to represent the _type_ Manager. Genesis is to support a key in a Context
type Key struct{}

// Global instance of the ProfileManagerKey type
var ProfileManagerKey = Key{}

// Names returns the profile names in the file, sorted.
func (m *profileManager) Names() []string {
	seen := map[string]bool{}
	for _, key := range m.config.AllKeys() {
		top, _, _ := strings.Cut(key, ".")
		seen[top] = true
	}
	rv := make([]string, 0, len(seen))
	for k := range seen {
		rv = append(rv, k)
	}
	slices.Sort(rv)
	return rv
}

func (m *profileManager) Summarize(name string) (Summary, error) {
	if !m.config.IsSet(name) {
		return Summary{}, errProfileNotFound
	}
	sub := m.config.Sub(name)
	if sub == nil {
		return Summary{Name: name}, nil
	}
	return Summary{
		Name:     name,
		BaseURL:  sub.GetString(common.BaseURLConfigPath),
		HasToken: sub.GetString(common.TokenConfigPath) != "",
	}, nil
}

func NewManager(config *viper.Viper) Manager {
	return &profileManager{
		config: config,
	}
}
