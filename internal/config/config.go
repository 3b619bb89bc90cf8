package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"github.com/storeops/storectl/internal/cmd/common"
	"github.com/storeops/storectl/internal/meta"
	"github.com/storeops/storectl/internal/util/viper"
)

var defaultConfigFileName = "config.yaml"

// GetDefaultConfigPath returns $XDG_CONFIG_HOME/storectl when XDG_CONFIG_HOME
// is set and ~/.config/storectl otherwise.
func GetDefaultConfigPath() (string, error) {
	val, set := os.LookupEnv("XDG_CONFIG_HOME")
	if !set || val == "" {
		var err error
		val, err = os.UserHomeDir()
		if err != nil {
			return "", err
		}
		val = filepath.Join(val, ".config")
	}
	val = filepath.Join(val, meta.CLIName)
	return os.ExpandEnv(val), nil
}

func GetDefaultConfigFilePath() (string, error) {
	path, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(path, defaultConfigFileName), nil
}

// ExpandDefaultConfigFilePath is GetDefaultConfigFilePath for flag defaults,
// where an error can only be reported as an empty value.
func ExpandDefaultConfigFilePath() string {
	path, err := GetDefaultConfigFilePath()
	if err != nil {
		return ""
	}
	return path
}

// GetConfig returns the configuration for this instance of the CLI. An
// explicit path must exist; the default path is created with defaults.
func GetConfig(path string, profile string, defaultConfigFilePath string) (*ProfiledConfig, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); err == nil {
		vip, err := viper.NewViperE(path)
		if err != nil {
			return nil, err
		}
		return BuildProfiledConfig(profile, path, vip), nil
	}

	if path != defaultConfigFilePath {
		return nil, fmt.Errorf("the provided config file path does not exist: %s", path)
	}

	vip, err := viper.InitializeDefaultViper(getDefaultConfig(profile, path), path)
	if err != nil {
		return nil, err
	}
	return BuildProfiledConfig(profile, path, vip), nil
}

// Empty type to represent the _type_ Config. Genesis is to support a key in a Context
type Key struct{}

// ConfigKey stores the Hook on a command context.
var ConfigKey = Key{}

// Hook is the restricted view of the configuration commands work with. All
// keys are relative to the active profile.
type Hook interface {
	Save() error
	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	GetIntOrElse(key string, orElse int) int
	GetDuration(key string) time.Duration
	IsSet(key string) bool
	SetString(key string, value string)
	Set(k string, v any)
	BindFlag(configPath string, f *pflag.Flag) error
	GetProfile() string
	GetPath() string
}

// ProfiledConfig is a Viper scoped to one profile of the config file.
type ProfiledConfig struct {
	*v.Viper
	subViper    *v.Viper
	ProfileName string
	Path        string
}

func (p *ProfiledConfig) GetProfile() string {
	return p.ProfileName
}

func (p *ProfiledConfig) Save() error {
	p.Viper.Set(p.ProfileName, p.subViper.AllSettings())
	return p.WriteConfig()
}

func (p *ProfiledConfig) GetString(key string) string {
	return p.subViper.GetString(key)
}

func (p *ProfiledConfig) GetBool(key string) bool {
	return p.subViper.GetBool(key)
}

func (p *ProfiledConfig) GetInt(key string) int {
	return p.subViper.GetInt(key)
}

func (p *ProfiledConfig) GetIntOrElse(key string, orElse int) int {
	if p.subViper.IsSet(key) {
		return p.subViper.GetInt(key)
	}
	return orElse
}

func (p *ProfiledConfig) GetDuration(key string) time.Duration {
	return p.subViper.GetDuration(key)
}

func (p *ProfiledConfig) IsSet(key string) bool {
	return p.subViper.IsSet(key)
}

func (p *ProfiledConfig) BindFlag(configPath string, f *pflag.Flag) error {
	return p.subViper.BindPFlag(configPath, f)
}

func (p *ProfiledConfig) SetString(k string, v string) {
	p.subViper.Set(k, v)
}

func (p *ProfiledConfig) Set(k string, v any) {
	p.subViper.Set(k, v)
}

func (p *ProfiledConfig) GetPath() string {
	return p.Path
}

// BuildProfiledConfig scopes mainv to profile. Keys read from the profile
// can be overridden with STORECTL_<PROFILE>_<KEY> environment variables,
// whether or not the profile exists in the file.
func BuildProfiledConfig(profile string, path string, mainv *v.Viper) *ProfiledConfig {
	subv := mainv.Sub(profile)
	if subv == nil {
		// A sub-viper from Sub already resolves STORECTL_<PROFILE>_<KEY>
		// through its parent key; a fresh one needs the profile in the prefix.
		subv = v.New()
		envPrefix := meta.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(profile, "-", "_"))
		viper.ConfigureEnvVars(subv, envPrefix)
	}
	applyDefaults(subv)

	return &ProfiledConfig{
		Viper:       mainv,
		ProfileName: profile,
		subViper:    subv,
		Path:        path,
	}
}

func applyDefaults(vip *v.Viper) {
	vip.SetDefault(common.OutputConfigPath, common.DefaultOutputFormat)
	vip.SetDefault(common.LogLevelConfigPath, common.DefaultLogLevel)
	vip.SetDefault(common.BaseURLConfigPath, common.DefaultBaseURL)
	vip.SetDefault(common.TimeoutConfigPath, common.DefaultTimeout)
	vip.SetDefault(common.PageSizeConfigPath, common.DefaultPageSize)
	vip.SetDefault(common.MatchConfigPath, common.DefaultMatch)
}

func getDefaultConfig(profileName, configFilePath string) map[string]any {
	configDir := filepath.Dir(configFilePath)
	defaultLogPath := filepath.Join(configDir, "logs", meta.CLIName+".log")

	return map[string]any{
		profileName: map[string]any{
			common.OutputConfigPath:   common.DefaultOutputFormat,
			common.LogFileConfigPath:  defaultLogPath,
			common.LogLevelConfigPath: common.DefaultLogLevel,
			"backend": map[string]any{
				"base-url": common.DefaultBaseURL,
				"timeout":  common.DefaultTimeout.String(),
			},
			"list": map[string]any{
				"page-size": common.DefaultPageSize,
				"match":     common.DefaultMatch,
			},
		},
	}
}

// CollectionString returns lists.<collection>.<key> when set and
// list.<key> otherwise.
func CollectionString(cfg Hook, collection, key string) string {
	if path := common.CollectionConfigPath(collection, key); cfg.IsSet(path) {
		return cfg.GetString(path)
	}
	return cfg.GetString("list." + key)
}

// CollectionInt is the integer form of CollectionString.
func CollectionInt(cfg Hook, collection, key string, orElse int) int {
	if path := common.CollectionConfigPath(collection, key); cfg.IsSet(path) {
		return cfg.GetInt(path)
	}
	return cfg.GetIntOrElse("list."+key, orElse)
}
