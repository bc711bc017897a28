package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabriclab/fabric-pulse/internal/errors"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Targets = []Target{
		{Name: "dc1-spine1", Host: "172.20.20.11"},
		{Name: "dc1-leaf1", Host: "172.20.20.21"},
	}
	return cfg
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	// Roles are inferred from names when not set
	assert.Equal(t, "spine", cfg.Targets[0].Role)
	assert.Equal(t, "leaf", cfg.Targets[1].Role)
}

func TestValidateEmptyTargets(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTargets))
}

func TestValidateIntervalFloor(t *testing.T) {
	cfg := validConfig()
	cfg.Interval = 100 * time.Millisecond
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestValidateBadTransport(t *testing.T) {
	cfg := validConfig()
	cfg.EAPI.Transport = "telnet"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telnet")
}

func TestValidateBadPort(t *testing.T) {
	cfg := validConfig()
	cfg.EAPI.Port = 70000
	require.Error(t, cfg.Validate())
}

func TestValidateMaxBackoffBelowInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Interval = 10 * time.Second
	cfg.MaxBackoff = 5 * time.Second
	require.Error(t, cfg.Validate())
}

func TestValidateDedupesByAddress(t *testing.T) {
	cfg := validConfig()
	cfg.Targets = append(cfg.Targets, Target{Name: "dup", Host: "172.20.20.11"})

	require.NoError(t, cfg.Validate())

	// First occurrence wins; the repeat address is dropped
	require.Len(t, cfg.Targets, 2)
	assert.Equal(t, "dc1-spine1", cfg.Targets[0].Name)
}

func TestValidateRejectsDuplicateNames(t *testing.T) {
	cfg := validConfig()
	cfg.Targets = append(cfg.Targets, Target{Name: "dc1-spine1", Host: "172.20.20.99"})

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTargets))
}

func TestValidateRejectsMissingHost(t *testing.T) {
	cfg := validConfig()
	cfg.Targets = append(cfg.Targets, Target{Name: "ghost"})
	require.Error(t, cfg.Validate())
}

func TestValidateNameDefaultsToHost(t *testing.T) {
	cfg := Default()
	cfg.Targets = []Target{{Host: "10.0.0.1"}}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "10.0.0.1", cfg.Targets[0].Name)
}

func TestInferRole(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"dc1-spine1", "spine"},
		{"DC1-SPINE2", "spine"},
		{"dc1-leaf1a", "leaf"},
		{"dc1-borderleaf1", "border"},
		{"core-rtr1", "fabric"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, InferRole(tt.name), tt.name)
	}
}

func TestValidateFutureVersion(t *testing.T) {
	cfg := validConfig()
	cfg.Version = CurrentConfigVersion + 1
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
