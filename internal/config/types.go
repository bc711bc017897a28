package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete fabric-pulse.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Interval is the base poll interval per device.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Timeout bounds a single device query (connect + request + response).
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// FrameInterval is the dashboard redraw cadence, independent of polling.
	FrameInterval time.Duration `yaml:"frame_interval" mapstructure:"frame_interval"`

	// MaxBackoff caps the per-device retry backoff after repeated failures.
	MaxBackoff time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`

	// Grace is how long shutdown waits for in-flight polls before abandoning them.
	Grace time.Duration `yaml:"grace" mapstructure:"grace"`

	EAPI EAPIConfig `yaml:"eapi" mapstructure:"eapi"`

	// Topology optionally derives targets from a containerlab topology file.
	Topology TopologyConfig `yaml:"topology" mapstructure:"topology"`

	// Targets are monitored devices, in display order.
	Targets []Target `yaml:"targets" mapstructure:"targets"`
}

// EAPIConfig holds connection settings shared by all targets.
type EAPIConfig struct {
	// Transport is "https" or "http".
	Transport string `yaml:"transport" mapstructure:"transport"`

	// Port is the eAPI TCP port.
	Port int `yaml:"port" mapstructure:"port"`

	// Username for eAPI authentication. FABRIC_PULSE_USERNAME overrides.
	Username string `yaml:"username" mapstructure:"username"`

	// PasswordEnv names the environment variable holding the password.
	// The password itself never lives in the config file.
	PasswordEnv string `yaml:"password_env" mapstructure:"password_env"`

	// Insecure disables TLS certificate verification. Lab cEOS nodes
	// present self-signed certificates, so this is commonly true.
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
}

// TopologyConfig points at a containerlab topology file whose nodes'
// management IPs become monitoring targets.
type TopologyConfig struct {
	File string `yaml:"file" mapstructure:"file"`

	// Kinds restricts which node kinds become targets. Empty means any
	// node with a management IP.
	Kinds []string `yaml:"kinds" mapstructure:"kinds"`
}

// Target identifies one monitored device. Immutable after load.
type Target struct {
	// Name is the display label (usually the device hostname).
	Name string `yaml:"name" mapstructure:"name"`

	// Host is the management address (IP or resolvable name).
	Host string `yaml:"host" mapstructure:"host"`

	// Role labels the device's fabric role: spine, leaf, border, fabric.
	Role string `yaml:"role" mapstructure:"role"`
}

// Defaults mirror the original lab tooling: 3s refresh, eAPI over HTTPS on 443.
const (
	DefaultInterval      = 3 * time.Second
	DefaultTimeout       = 5 * time.Second
	DefaultFrameInterval = time.Second
	DefaultMaxBackoff    = 30 * time.Second
	DefaultGrace         = 5 * time.Second
	DefaultTransport     = "https"
	DefaultPort          = 443
	DefaultUsername      = "admin"
	DefaultPasswordEnv   = "FABRIC_PULSE_PASSWORD"
)

// applyDefaults fills zero-valued fields with package defaults.
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = CurrentConfigVersion
	}
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.FrameInterval == 0 {
		c.FrameInterval = DefaultFrameInterval
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	if c.Grace == 0 {
		c.Grace = DefaultGrace
	}
	if c.EAPI.Transport == "" {
		c.EAPI.Transport = DefaultTransport
	}
	if c.EAPI.Port == 0 {
		c.EAPI.Port = DefaultPort
	}
	if c.EAPI.Username == "" {
		c.EAPI.Username = DefaultUsername
	}
	if c.EAPI.PasswordEnv == "" {
		c.EAPI.PasswordEnv = DefaultPasswordEnv
	}
}

// Default returns a config populated with defaults and no targets.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// MarshalYAML writes durations as strings ("3s", not 3000000000) so files
// generated by 'fabric-pulse init' stay readable. Viper's duration hook
// parses the strings back on load.
func (c Config) MarshalYAML() (interface{}, error) {
	type rendered struct {
		Version       int            `yaml:"version"`
		Interval      string         `yaml:"interval"`
		Timeout       string         `yaml:"timeout"`
		FrameInterval string         `yaml:"frame_interval"`
		MaxBackoff    string         `yaml:"max_backoff"`
		Grace         string         `yaml:"grace"`
		EAPI          EAPIConfig     `yaml:"eapi"`
		Topology      TopologyConfig `yaml:"topology"`
		Targets       []Target       `yaml:"targets"`
	}
	return rendered{
		Version:       c.Version,
		Interval:      c.Interval.String(),
		Timeout:       c.Timeout.String(),
		FrameInterval: c.FrameInterval.String(),
		MaxBackoff:    c.MaxBackoff.String(),
		Grace:         c.Grace.String(),
		EAPI:          c.EAPI,
		Topology:      c.Topology,
		Targets:       c.Targets,
	}, nil
}
