package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "NEWSROOM"

var (
	appConfig *Config
	configMu  sync.RWMutex
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", ModeDevelopment)
	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.max_retries", 3)
	v.SetDefault("api.retry_base_delay", 1*time.Second)
	v.SetDefault("api.retry_max_delay", 10*time.Second)
	v.SetDefault("api.rate_limit_window", 60*time.Second)
	v.SetDefault("api.rate_limit_ceiling", 120)
	v.SetDefault("api.refresh_threshold", 5*time.Minute)
	v.SetDefault("features.fallback_enabled", true)
	v.SetDefault("features.error_reporting_enabled", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("session_file", "")
}

// Load reads configuration from defaults, an optional config file, and
// NEWSROOM_* environment variables. cfgFile may be empty.
//
// Safe to call multiple times; the last successful load wins.
func Load(cfgFile string) (*Config, error) {
	// A .env next to the binary is a development convenience; missing is
	// fine.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", cfgFile, err)
		}
	}

	cfg := &Config{}
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	setConfig(cfg)
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Mode != ModeDevelopment && cfg.Mode != ModeProduction {
		return fmt.Errorf("invalid mode %q: want %s or %s", cfg.Mode, ModeDevelopment, ModeProduction)
	}
	if strings.TrimSpace(cfg.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if cfg.API.MaxRetries < 0 {
		return fmt.Errorf("api.max_retries must not be negative")
	}
	return nil
}

// Get returns the current configuration (thread-safe).
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}
