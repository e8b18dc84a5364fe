package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envSettingsPrefix = "LSX"
	envConfigDir      = "LSX_CONFIG_DIR"
)

// Settings are CLI defaults that are not secrets. They come from
// $XDG_CONFIG_HOME/lsx/config.yaml and LSX_* environment variables.
type Settings struct {
	Output     string        `mapstructure:"output"`
	Timeout    time.Duration `mapstructure:"timeout"`
	APIVersion string        `mapstructure:"api_version"`
	Endpoint   string        `mapstructure:"endpoint"`

	// ConfigFile is the file that was read, empty when none was found.
	ConfigFile string `mapstructure:"-"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		Output:     "text",
		Timeout:    30 * time.Second,
		APIVersion: "2.0",
	}
}

// SettingsDir returns the directory holding config.yaml: LSX_CONFIG_DIR
// when set, otherwise lsx under the user config directory.
func SettingsDir() string {
	if dir := strings.TrimSpace(os.Getenv(envConfigDir)); dir != "" {
		return dir
	}
	if dir, err := userConfigDir(); err == nil && strings.TrimSpace(dir) != "" {
		return filepath.Join(dir, serviceName)
	}
	return ""
}

// LoadSettings reads settings from the default config directory.
func LoadSettings() (Settings, error) {
	return LoadSettingsFrom(SettingsDir())
}

// LoadSettingsFrom reads config.yaml from dir when present. Environment
// variables override the file; a missing file is not an error.
func LoadSettingsFrom(dir string) (Settings, error) {
	defaults := DefaultSettings()

	v := viper.New()
	v.SetDefault("output", defaults.Output)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("api_version", defaults.APIVersion)
	v.SetDefault("endpoint", "")

	v.SetEnvPrefix(envSettingsPrefix)
	v.AutomaticEnv()

	if dir != "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return Settings{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal config: %w", err)
	}
	s.ConfigFile = v.ConfigFileUsed()

	if s.Timeout < 0 {
		return Settings{}, fmt.Errorf("invalid timeout %s (must not be negative)", s.Timeout)
	}
	s.Output = strings.ToLower(strings.TrimSpace(s.Output))
	s.APIVersion = strings.TrimSpace(s.APIVersion)
	s.Endpoint = strings.TrimSpace(s.Endpoint)
	return s, nil
}
