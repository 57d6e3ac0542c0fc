package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/turtacn/pairgate/internal/config"
	"github.com/turtacn/pairgate/pkg/constants"
)

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "0.0.0.0", Port: 8080},
		State:  config.StateConfig{Root: "/var/lib/pairgate"},
		Log:    config.LogConfig{Level: "info", Format: "json"},
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	missingRoot := validConfig()
	missingRoot.State.Root = "  "
	assert.Error(t, missingRoot.Validate())

	badPort := validConfig()
	badPort.Server.Port = 0
	assert.Error(t, badPort.Validate())

	badPort.Server.Port = 70000
	assert.Error(t, badPort.Validate())
}

func TestStateConfigPaths(t *testing.T) {
	state := config.StateConfig{Root: "/var/lib/pairgate"}

	assert.Equal(t, filepath.Join("/var/lib/pairgate", constants.DeviceStateDir), state.DeviceDir())
	assert.Equal(t, filepath.Join("/var/lib/pairgate", constants.NodeStateDir), state.NodeDir())
	assert.Equal(t,
		filepath.Join("/var/lib/pairgate", constants.IdentityStateDir, constants.CredentialFileName),
		state.CredentialFile())
}
