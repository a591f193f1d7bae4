package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment variable overrides, e.g. SQLBUDDY_HTTP_ADDR.
const EnvPrefix = "SQLBUDDY"

// Load reads configuration from the provided path. If path is empty, uses
// DefaultConfigPath. A missing file is not an error; defaults apply.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("default_profile", cfg.DefaultProfile)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("http.addr", cfg.HTTP.Addr)
	v.SetDefault("run.ttl_minutes", cfg.Run.TTLMinutes)
	v.SetDefault("run.busy_policy", string(cfg.Run.BusyPolicy))

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		configLoaded = true
	}

	if configLoaded && v.GetInt("config_version") != CurrentConfigVersion {
		return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
	}

	defaultProfiles := cfg.Profiles
	cfg.Profiles = nil
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if len(cfg.Profiles) == 0 {
		cfg.Profiles = defaultProfiles
	}

	expandConfigEnv(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints of a loaded configuration.
func Validate(cfg Config) error {
	if _, ok := cfg.Profiles[cfg.DefaultProfile]; !ok {
		return fmt.Errorf("default_profile %q is not defined in profiles", cfg.DefaultProfile)
	}
	for name, p := range cfg.Profiles {
		if strings.TrimSpace(p.Type) == "" {
			return fmt.Errorf("profiles.%s.type is required", name)
		}
	}

	switch cfg.Run.BusyPolicy {
	case BusyPolicyWait, BusyPolicyReject:
	default:
		return fmt.Errorf("unsupported run.busy_policy %q", cfg.Run.BusyPolicy)
	}
	if cfg.Run.TTLMinutes <= 0 {
		return fmt.Errorf("run.ttl_minutes must be positive")
	}

	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log.format %q", cfg.Log.Format)
	}
	return nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	for name, p := range cfg.Profiles {
		p.Host = expandEnv(p.Host)
		p.Path = expandEnv(p.Path)
		p.User = expandEnv(p.User)
		p.Password = expandEnv(p.Password)
		cfg.Profiles[name] = p
	}
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
