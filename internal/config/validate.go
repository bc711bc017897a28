package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fabriclab/fabric-pulse/internal/errors"
)

// MinInterval is the floor for the poll interval, protecting devices from
// being hammered by an over-eager refresh setting.
const MinInterval = 500 * time.Millisecond

// Validate checks the config for errors and normalizes the target list.
// Targets are deduplicated by management address (first occurrence wins);
// everything else that looks wrong aborts with a structured error, so a
// malformed config can never produce a silently incomplete monitor.
func (c *Config) Validate() error {
	if c.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but fabric-pulse only knows up to %d)", c.Version, CurrentConfigVersion),
			"Upgrade fabric-pulse or lower the version field")
	}

	if c.Interval < MinInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Poll interval %s is too short", c.Interval),
			fmt.Sprintf("Use at least %s to avoid overwhelming the fabric", MinInterval))
	}
	if c.Timeout <= 0 {
		return errors.New(errors.ErrConfig,
			"Timeout must be positive",
			"Use something like 5s")
	}
	if c.FrameInterval <= 0 {
		return errors.New(errors.ErrConfig,
			"Frame interval must be positive",
			"Use something like 1s")
	}
	if c.MaxBackoff < c.Interval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("max_backoff %s is below the poll interval %s", c.MaxBackoff, c.Interval),
			"Set max_backoff to at least the poll interval")
	}

	switch c.EAPI.Transport {
	case "http", "https":
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown eAPI transport '%s'", c.EAPI.Transport),
			"Use 'https' (default) or 'http'")
	}
	if c.EAPI.Port < 1 || c.EAPI.Port > 65535 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Invalid eAPI port %d", c.EAPI.Port),
			"Use a TCP port between 1 and 65535")
	}

	deduped, err := dedupeTargets(c.Targets)
	if err != nil {
		return err
	}
	c.Targets = deduped

	if len(c.Targets) == 0 {
		return errors.New(errors.ErrTargets,
			"No targets to monitor",
			"Add targets to fabric-pulse.yaml or point topology.file at a containerlab topology")
	}

	return nil
}

// dedupeTargets validates each target and drops repeats of the same
// management address, preserving order. Duplicate names are an error since
// the name is the snapshot key.
func dedupeTargets(targets []Target) ([]Target, error) {
	seenName := make(map[string]bool, len(targets))
	seenHost := make(map[string]bool, len(targets))
	result := make([]Target, 0, len(targets))

	for i, t := range targets {
		t.Name = strings.TrimSpace(t.Name)
		t.Host = strings.TrimSpace(t.Host)

		if t.Host == "" {
			return nil, errors.New(errors.ErrTargets,
				fmt.Sprintf("Target %d has no host address", i+1),
				"Every target needs a management IP or hostname")
		}
		if t.Name == "" {
			t.Name = t.Host
		}
		if t.Role == "" {
			t.Role = InferRole(t.Name)
		}

		if seenName[t.Name] {
			return nil, errors.New(errors.ErrTargets,
				fmt.Sprintf("Duplicate target name '%s'", t.Name),
				"Target names must be unique; rename one of them")
		}
		seenName[t.Name] = true

		if seenHost[t.Host] {
			continue
		}
		seenHost[t.Host] = true

		result = append(result, t)
	}

	return result, nil
}

// InferRole guesses a fabric role from a device name. Containerlab and AVD
// labs follow the spine/leaf naming convention, so a substring match covers
// the common cases.
func InferRole(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "spine"):
		return "spine"
	case strings.Contains(lower, "borderleaf"), strings.Contains(lower, "border"):
		return "border"
	case strings.Contains(lower, "leaf"):
		return "leaf"
	default:
		return "fabric"
	}
}
