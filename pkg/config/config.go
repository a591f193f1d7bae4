package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion  int                `mapstructure:"config_version" yaml:"config_version"`
	DefaultProfile string             `mapstructure:"default_profile" yaml:"default_profile"`
	Profiles       map[string]Profile `mapstructure:"profiles" yaml:"profiles"`
	Log            LogConfig          `mapstructure:"log" yaml:"log"`
	HTTP           HTTPConfig         `mapstructure:"http" yaml:"http"`
	Run            RunConfig          `mapstructure:"run" yaml:"run"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// Profile is a named set of connection parameters.
type Profile struct {
	Type      string            `mapstructure:"type" yaml:"type"`
	Host      string            `mapstructure:"host" yaml:"host,omitempty"`
	Port      string            `mapstructure:"port" yaml:"port,omitempty"`
	Database  string            `mapstructure:"database" yaml:"database,omitempty"`
	User      string            `mapstructure:"user" yaml:"user,omitempty"`
	Password  string            `mapstructure:"password" yaml:"password,omitempty"`
	Path      string            `mapstructure:"path" yaml:"path,omitempty"`
	Account   string            `mapstructure:"account" yaml:"account,omitempty"`
	Warehouse string            `mapstructure:"warehouse" yaml:"warehouse,omitempty"`
	Schema    string            `mapstructure:"schema" yaml:"schema,omitempty"`
	Options   map[string]string `mapstructure:"options" yaml:"options,omitempty"`
}

// LogConfig controls the application logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// RunConfig controls batch runs.
type RunConfig struct {
	TTLMinutes int        `mapstructure:"ttl_minutes" yaml:"ttl_minutes"`
	BusyPolicy BusyPolicy `mapstructure:"busy_policy" yaml:"busy_policy"`
}

// TTL returns how long finished runs are kept.
func (r RunConfig) TTL() time.Duration {
	return time.Duration(r.TTLMinutes) * time.Minute
}

// DefaultConfig returns the built-in configuration: a single in-memory DuckDB
// profile.
func DefaultConfig() Config {
	return Config{
		ConfigVersion:  CurrentConfigVersion,
		DefaultProfile: DefaultProfileName,
		Profiles: map[string]Profile{
			DefaultProfileName: {Type: DefaultDatabaseType},
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		HTTP: HTTPConfig{
			Addr: DefaultHTTPAddr,
		},
		Run: RunConfig{
			TTLMinutes: DefaultRunTTLMinutes,
			BusyPolicy: DefaultBusyPolicy,
		},
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/sqlbuddy/config.yaml or its
// platform equivalent.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config dir: %w", err)
	}
	return filepath.Join(dir, "sqlbuddy", "config.yaml"), nil
}

// Profile returns the named profile, or the default profile when name is empty.
func (c Config) Profile(name string) (Profile, error) {
	if name == "" {
		name = c.DefaultProfile
	}
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q not found", name)
	}
	return p, nil
}

// ProfileNames returns the configured profile names in sorted order.
func (c Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
