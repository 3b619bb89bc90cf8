package backend

import (
	"log/slog"

	"github.com/storeops/storectl/internal/cmd/common"
	"github.com/storeops/storectl/internal/config"
)

// Factory builds an API from the active configuration. The root command
// stores one on the context so tests can swap in a fake backend.
type Factory func(cfg config.Hook, logger *slog.Logger) (API, error)

type Key struct{}

// FactoryKey stores a Factory on a command context.
var FactoryKey = Key{}

// DefaultFactory builds a Client from the backend.* configuration keys.
func DefaultFactory(cfg config.Hook, logger *slog.Logger) (API, error) {
	return NewClient(Settings{
		BaseURL: cfg.GetString(common.BaseURLConfigPath),
		Token:   cfg.GetString(common.TokenConfigPath),
		Timeout: cfg.GetDuration(common.TimeoutConfigPath),
	}, logger)
}
