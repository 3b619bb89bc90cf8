package meta

const (
	// CLIName is used for the binary name, the config directory and the
	// environment variable prefix.
	CLIName = "storectl"
	// EnvPrefix is the upper case prefix for environment overrides.
	EnvPrefix = "STORECTL"
)
