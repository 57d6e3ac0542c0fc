package config

import (
	"path/filepath"
	"strings"

	"github.com/turtacn/pairgate/pkg/constants"
	"github.com/turtacn/pairgate/pkg/errors"
)

// Config holds the application's configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	State  StateConfig  `mapstructure:"state"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout   int      `mapstructure:"write_timeout"` // in seconds
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StateConfig locates the persisted pairing state. One directory per
// registry variant lives under Root; a single writer process per store is
// assumed (there is no cross-process locking).
type StateConfig struct {
	Root string `mapstructure:"root"`
}

// DeviceDir returns the device pairing store directory.
func (c *StateConfig) DeviceDir() string {
	return filepath.Join(c.Root, constants.DeviceStateDir)
}

// NodeDir returns the node pairing store directory.
func (c *StateConfig) NodeDir() string {
	return filepath.Join(c.Root, constants.NodeStateDir)
}

// CredentialFile returns the client-side credential cache path.
func (c *StateConfig) CredentialFile() string {
	return filepath.Join(c.Root, constants.IdentityStateDir, constants.CredentialFileName)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.State.Root) == "" {
		return errors.ErrInvalidRequest("state.root must not be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.ErrInvalidRequest("server.port must be a valid TCP port")
	}
	return nil
}

//Personal.AI order the ending
