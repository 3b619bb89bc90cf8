package common

import (
	"fmt"
	"time"
)

// Represents an enum of valid values for the format of the output for this CLI execution
type OutputFormat int

type ColorMode int

const (
	JSON OutputFormat = iota
	YAML
	TEXT
)

const (
	ColorModeAuto ColorMode = iota
	ColorModeAlways
	ColorModeNever
)

const (
	// related to the --output flag
	DefaultOutputFormat = "text"
	OutputFlagName      = "output"
	OutputFlagShort     = "o"
	OutputConfigPath    = OutputFlagName

	// related to the --profile flag
	ProfileFlagName  = "profile"
	ProfileFlagShort = "p"
	DefaultProfile   = "default"

	// related to the --config-file flag
	ConfigFilePathFlagName = "config-file"

	// related to the --log-level flag
	LogLevelFlagName   = "log-level"
	DefaultLogLevel    = "info"
	LogLevelConfigPath = LogLevelFlagName
	LogFileConfigPath  = "log-file"

	// related to the --color flag used by jq output
	DefaultColorMode = "auto"

	ThemeConfigPath = "theme"

	// backend connection
	BaseURLFlagName   = "base-url"
	BaseURLConfigPath = "backend." + BaseURLFlagName
	DefaultBaseURL    = "http://localhost:8080/api"
	TokenConfigPath   = "backend.token"
	TimeoutConfigPath = "backend.timeout"
	DefaultTimeout    = 30 * time.Second

	// list behaviour, overridable per collection under lists.<name>.*
	PageSizeFlagName     = "page-size"
	PageSizeConfigPath   = "list." + PageSizeFlagName
	DefaultPageSize      = 4
	SearchModeFlagName   = "search-mode"
	SearchModeConfigPath = "list." + SearchModeFlagName
	MatchFlagName        = "match"
	MatchConfigPath      = "list." + MatchFlagName
	DefaultMatch         = "substring"
	CollectionConfigRoot = "lists"

	SearchFlagName      = "search"
	SearchFlagShort     = "s"
	PageFlagName        = "page"
	InteractiveFlagName = "interactive"
)

func (of OutputFormat) String() string {
	return [...]string{"json", "yaml", "text"}[of]
}

func OutputFormatStringToIota(format string) (OutputFormat, error) {
	switch format {
	case "json":
		return JSON, nil
	case "yaml":
		return YAML, nil
	case "text", "":
		return TEXT, nil
	default:
		return TEXT, fmt.Errorf("invalid output format %q, must be one of %v", format, []string{"json", "yaml", "text"})
	}
}

func (cm ColorMode) String() string {
	switch cm {
	case ColorModeAuto:
		return "auto"
	case ColorModeAlways:
		return "always"
	case ColorModeNever:
		return "never"
	default:
		return "auto"
	}
}

func ColorModeStringToIota(mode string) (ColorMode, error) {
	switch mode {
	case "auto", "":
		return ColorModeAuto, nil
	case "always":
		return ColorModeAlways, nil
	case "never":
		return ColorModeNever, nil
	default:
		return ColorModeAuto, fmt.Errorf("invalid color mode %q, must be one of %v", mode,
			[]string{"auto", "always", "never"})
	}
}

// CollectionConfigPath returns the per-collection override path for key,
// e.g. lists.pending-approvals.search-mode.
func CollectionConfigPath(collection, key string) string {
	return CollectionConfigRoot + "." + collection + "." + key
}
