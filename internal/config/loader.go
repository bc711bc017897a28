package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/fabriclab/fabric-pulse/internal/errors"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = "fabric-pulse.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/fabric-pulse"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
)

// Load reads config from the specified path, applies defaults, resolves
// topology-derived targets, and validates the result. Loading is fail-fast:
// any malformed input aborts with a descriptive error rather than producing
// a partial target set.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'fabric-pulse init' to create one, or specify a path with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid configuration in "+path,
			"Check field names and value types against the documented schema")
	}
	cfg.applyDefaults()

	if cfg.Topology.File != "" {
		// Topology paths are relative to the config file, not the cwd.
		topoPath := cfg.Topology.File
		if !filepath.IsAbs(topoPath) {
			topoPath = filepath.Join(filepath.Dir(path), topoPath)
		}
		derived, err := LoadTopologyTargets(topoPath, cfg.Topology.Kinds)
		if err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, derived...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. fabric-pulse.yaml in current directory
// 3. ~/.config/fabric-pulse/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// Credentials resolves the eAPI username and password for this config.
// FABRIC_PULSE_USERNAME overrides the configured username; the password
// always comes from the environment variable named by password_env.
func (c *Config) Credentials() (username, password string, err error) {
	username = c.EAPI.Username
	if env := os.Getenv("FABRIC_PULSE_USERNAME"); env != "" {
		username = env
	}
	if username == "" {
		return "", "", errors.New(errors.ErrAuth,
			"No eAPI username configured",
			"Set eapi.username in the config or export FABRIC_PULSE_USERNAME")
	}

	password = os.Getenv(c.EAPI.PasswordEnv)
	if password == "" {
		return "", "", errors.New(errors.ErrAuth,
			"No eAPI password in environment",
			"Export "+c.EAPI.PasswordEnv+" before starting the monitor")
	}

	return username, password, nil
}
