package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fabriclab/fabric-pulse/internal/config"
	"github.com/fabriclab/fabric-pulse/internal/errors"
)

// Command-specific flags
var (
	configFlag         string
	watchTargetsFlag   string
	watchIntervalFlag  string
	watchTimeoutFlag   string
	watchTopologyFlag  string
	checkTargetsFlag   string
	checkTimeoutFlag   string
	checkTopologyFlag  string
	initForce          bool
	initNonInteractive bool
)

// watchCmd starts the live TUI dashboard
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live fabric health dashboard",
	Long: `Start an interactive TUI dashboard polling every configured device
over eAPI and showing real-time fabric health.

Displays per device: model, EOS version, uptime, CPU, temperature,
BGP adjacencies, MLAG state, and link counts, with color-coded
health indicators.

Keyboard shortcuts:
  q / Ctrl+C  Quit
  r           Force refresh
  s           Cycle sort order (default/name/role/CPU)
  up/k        Select previous device
  down/j      Select next device
  Enter       Expand selected device details
  Esc         Collapse / go back
  ?           Show help

Examples:
  fabric-pulse watch
  fabric-pulse watch --targets spine1,leaf1
  fabric-pulse watch --interval 5s
  fabric-pulse watch --topology clab/topology.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, err := parseIntervalFlag(watchIntervalFlag)
		if err != nil {
			return err
		}
		timeout, err := parseTimeoutFlag(watchTimeoutFlag)
		if err != nil {
			return err
		}
		return watchCommand(watchOptions{
			configPath: configFlag,
			targets:    watchTargetsFlag,
			topology:   watchTopologyFlag,
			interval:   interval,
			timeout:    timeout,
		})
	},
}

// checkCmd polls every device once and prints a static table
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "One-shot fabric health check",
	Long: `Poll every configured device once, in parallel, and print a static
health table to stdout.

Exits non-zero when any device could not be reached, making it
suitable for scripting and CI gates on lab fabrics.

Examples:
  fabric-pulse check
  fabric-pulse check --targets leaf1,leaf2
  fabric-pulse check --timeout 10s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, err := parseTimeoutFlag(checkTimeoutFlag)
		if err != nil {
			return err
		}
		return checkCommand(checkOptions{
			configPath: configFlag,
			targets:    checkTargetsFlag,
			topology:   checkTopologyFlag,
			timeout:    timeout,
		})
	},
}

// initCmd creates a new fabric-pulse.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create fabric-pulse.yaml configuration",
	Long: `Initialize a new fabric-pulse configuration file.

Creates fabric-pulse.yaml in the current directory, guiding you
through eAPI connection settings and the first targets with
interactive prompts.

Examples:
  fabric-pulse init
  fabric-pulse init --force
  fabric-pulse init --non-interactive`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(initForce, initNonInteractive)
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for fabric-pulse.

Examples:
  # Bash
  fabric-pulse completion bash > /etc/bash_completion.d/fabric-pulse

  # Zsh
  fabric-pulse completion zsh > "${fpath[1]}/_fabric-pulse"

  # Fish
  fabric-pulse completion fish > ~/.config/fish/completions/fabric-pulse.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

// parseIntervalFlag parses and bounds-checks the poll interval flag.
// Empty means "use the config value".
func parseIntervalFlag(flag string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}
	parsed, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Invalid interval: %s", flag),
			"Use a valid duration like 2s, 5s, or 1m")
	}
	if parsed < config.MinInterval {
		return 0, errors.New(errors.ErrConfig,
			"Interval too short",
			fmt.Sprintf("Minimum interval is %s to avoid overwhelming the fabric", config.MinInterval))
	}
	return parsed, nil
}

// parseTimeoutFlag parses the per-device timeout flag. Empty means "use the
// config value".
func parseTimeoutFlag(flag string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}
	parsed, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Invalid timeout: %s", flag),
			"Use a valid duration like 5s or 500ms")
	}
	if parsed <= 0 {
		return 0, errors.New(errors.ErrConfig,
			"Timeout must be positive",
			"Use a valid duration like 5s or 500ms")
	}
	return parsed, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to fabric-pulse.yaml")

	watchCmd.Flags().StringVar(&watchTargetsFlag, "targets", "", "filter to specific devices (comma-separated names)")
	watchCmd.Flags().StringVar(&watchIntervalFlag, "interval", "", "poll interval (e.g., 3s, 5s, 1m)")
	watchCmd.Flags().StringVar(&watchTimeoutFlag, "timeout", "", "per-device poll timeout (e.g., 5s)")
	watchCmd.Flags().StringVar(&watchTopologyFlag, "topology", "", "derive targets from a containerlab topology file")

	checkCmd.Flags().StringVar(&checkTargetsFlag, "targets", "", "filter to specific devices (comma-separated names)")
	checkCmd.Flags().StringVar(&checkTimeoutFlag, "timeout", "", "per-device poll timeout (e.g., 5s)")
	checkCmd.Flags().StringVar(&checkTopologyFlag, "topology", "", "derive targets from a containerlab topology file")

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "skip prompts, write defaults")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
}
