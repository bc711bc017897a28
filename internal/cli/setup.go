package cli

import (
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/fabriclab/fabric-pulse/internal/config"
	"github.com/fabriclab/fabric-pulse/internal/eapi"
	"github.com/fabriclab/fabric-pulse/internal/errors"
	"github.com/fabriclab/fabric-pulse/internal/logger"
	"github.com/fabriclab/fabric-pulse/internal/poller"
	"github.com/fabriclab/fabric-pulse/internal/state"
)

// sessionOptions collects the flag overrides shared by watch and check.
type sessionOptions struct {
	configPath string
	targets    string // comma-separated name filter
	topology   string
	interval   time.Duration
	timeout    time.Duration
}

// loadSessionConfig resolves the effective config for a monitoring session:
// config file (explicit, cwd, or global), optional topology-only startup,
// flag overrides, and target filtering.
func loadSessionConfig(opts sessionOptions) (*config.Config, error) {
	path, err := config.Find(opts.configPath)
	if err != nil {
		return nil, err
	}

	var cfg *config.Config
	switch {
	case path != "":
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	case opts.topology != "":
		// No config file, but a topology file is enough to start.
		cfg = config.Default()
	default:
		return nil, errors.New(errors.ErrConfig,
			"No configuration found",
			"Run 'fabric-pulse init' to create fabric-pulse.yaml, or pass --config / --topology")
	}

	if opts.topology != "" {
		derived, err := config.LoadTopologyTargets(opts.topology, cfg.Topology.Kinds)
		if err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, derived...)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	if opts.interval > 0 {
		cfg.Interval = opts.interval
	}
	if opts.timeout > 0 {
		cfg.Timeout = opts.timeout
	}

	if opts.targets != "" {
		cfg.Targets = filterTargets(cfg.Targets, opts.targets)
		if len(cfg.Targets) == 0 {
			return nil, errors.New(errors.ErrTargets,
				fmt.Sprintf("No devices match '%s'", opts.targets),
				"Double-check device names or drop the --targets filter")
		}
	}

	return cfg, nil
}

// filterTargets returns only targets whose name appears in the
// comma-separated filter, preserving configured order.
func filterTargets(targets []config.Target, filter string) []config.Target {
	names := make(map[string]bool)
	for _, name := range strings.Split(filter, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			names[name] = true
		}
	}

	var filtered []config.Target
	for _, t := range targets {
		if names[t.Name] {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// resolveCredentials returns the eAPI username and password. When the
// password env var is unset and stdin is a terminal, falls back to a hidden
// prompt; otherwise the auth error propagates.
func resolveCredentials(cfg *config.Config) (string, string, error) {
	username, password, err := cfg.Credentials()
	if err == nil {
		return username, password, nil
	}
	if !errors.IsCode(err, errors.ErrAuth) || !term.IsTerminal(int(syscall.Stdin)) {
		return "", "", err
	}

	fmt.Fprintf(os.Stderr, "Password for %s (set %s to skip this prompt): ",
		cfg.EAPI.Username, cfg.EAPI.PasswordEnv)
	raw, readErr := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if readErr != nil {
		return "", "", errors.WrapWithCode(readErr, errors.ErrAuth,
			"Cannot read password from terminal",
			"Export "+cfg.EAPI.PasswordEnv+" instead")
	}
	if len(raw) == 0 {
		return "", "", err
	}

	username = cfg.EAPI.Username
	if env := os.Getenv("FABRIC_PULSE_USERNAME"); env != "" {
		username = env
	}
	return username, string(raw), nil
}

// buildPollers creates the store and poller group for the configured
// targets, one eAPI client per device.
func buildPollers(cfg *config.Config, username, password string, log logger.Logger) (*state.Store, *poller.Group) {
	store := state.NewStore(cfg.Targets)
	group := poller.NewGroup(log)

	clientOpts := eapi.Options{
		Transport: cfg.EAPI.Transport,
		Port:      cfg.EAPI.Port,
		Username:  username,
		Password:  password,
		Insecure:  cfg.EAPI.Insecure,
	}
	pollOpts := poller.Options{
		Interval:   cfg.Interval,
		Timeout:    cfg.Timeout,
		MaxBackoff: cfg.MaxBackoff,
	}

	for _, target := range cfg.Targets {
		client := eapi.NewClient(target.Host, clientOpts)
		group.Add(poller.New(target, client, store, pollOpts, log))
	}

	return store, group
}
