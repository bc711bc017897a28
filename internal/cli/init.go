package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"

	"github.com/fabriclab/fabric-pulse/internal/config"
	"github.com/fabriclab/fabric-pulse/internal/errors"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Overwrite      bool // Overwrite existing config without asking
	NonInteractive bool // Skip prompts, use defaults
}

// Init creates a new fabric-pulse.yaml configuration file.
func Init(opts InitOptions) error {
	configPath := filepath.Join(".", config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	cfg := config.Default()

	if !opts.NonInteractive {
		var firstHost, firstName, transport, portText string
		var insecure bool
		transport = cfg.EAPI.Transport
		portText = strconv.Itoa(cfg.EAPI.Port)

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("First device management address").
					Description("IP or resolvable name of a switch's management interface").
					Placeholder("172.20.20.11").
					Value(&firstHost).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("a device address is required")
						}
						return nil
					}),
				huh.NewInput().
					Title("Device name").
					Description("Display label for the dashboard").
					Placeholder("spine1").
					Value(&firstName),
			),
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("eAPI transport").
					Options(
						huh.NewOption("https (default)", "https"),
						huh.NewOption("http", "http"),
					).
					Value(&transport),
				huh.NewInput().
					Title("eAPI port").
					Value(&portText).
					Validate(func(s string) error {
						port, err := strconv.Atoi(strings.TrimSpace(s))
						if err != nil || port < 1 || port > 65535 {
							return fmt.Errorf("port must be 1-65535")
						}
						return nil
					}),
				huh.NewConfirm().
					Title("Skip TLS certificate verification?").
					Description("Lab cEOS nodes usually present self-signed certificates").
					Value(&insecure),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("eAPI username").
					Value(&cfg.EAPI.Username),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or use --non-interactive")
		}

		cfg.EAPI.Transport = transport
		cfg.EAPI.Port, _ = strconv.Atoi(strings.TrimSpace(portText))
		cfg.EAPI.Insecure = insecure

		firstHost = strings.TrimSpace(firstHost)
		firstName = strings.TrimSpace(firstName)
		if firstName == "" {
			firstName = firstHost
		}
		cfg.Targets = []config.Target{{
			Name: firstName,
			Host: firstHost,
			Role: config.InferRole(firstName),
		}}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}

	header := `# fabric-pulse configuration
# Run 'fabric-pulse watch' for the live dashboard.
# The eAPI password is never stored here: export ` + cfg.EAPI.PasswordEnv + ` instead.

`
	if err := os.WriteFile(configPath, []byte(header+string(data)), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}

	fmt.Printf("✓ Created %s\n\n", configPath)
	fmt.Println("Next steps:")
	fmt.Printf("  export %s=<password>\n", cfg.EAPI.PasswordEnv)
	fmt.Println("  fabric-pulse check   - one-shot health check")
	fmt.Println("  fabric-pulse watch   - live dashboard")

	return nil
}

// initCommand is the implementation called by the cobra command.
func initCommand(force, nonInteractive bool) error {
	return Init(InitOptions{
		Overwrite:      force,
		NonInteractive: nonInteractive,
	})
}
