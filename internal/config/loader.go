package config

import (
	"context"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/turtacn/pairgate/pkg/errors"
	"github.com/turtacn/pairgate/pkg/logger"
)

// LoadConfig loads the configuration from file and environment variables.
func LoadConfig() (*Config, *viper.Viper, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.environment", "development")
	v.SetDefault("state.root", "/var/lib/pairgate")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Load from config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/pairgate/")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, err
		}
	}

	// Load from environment variables
	v.SetEnvPrefix("PAIRGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, errors.ErrInvalidRequest("failed to unmarshal config").WithCause(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return &cfg, v, nil
}

// WatchLogLevel re-applies log.level when the config file changes on disk.
// Only the log level is hot-reloadable; state paths and server bindings
// require a restart.
func WatchLogLevel(v *viper.Viper, log logger.Logger, apply func(level string)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		level := v.GetString("log.level")
		apply(level)
		log.Info(context.Background(), "config reloaded", logger.Fields{
			"file":      e.Name,
			"log_level": level,
		})
	})
	v.WatchConfig()
}

//Personal.AI order the ending
