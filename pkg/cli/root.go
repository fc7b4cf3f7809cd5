package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/contractguard/pkg/config"
	"github.com/getmockd/contractguard/pkg/logging"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// ErrContractViolated is returned by commands that observed traffic not
// matching the contract. The details have already been printed.
var ErrContractViolated = errors.New("contract violated")

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	jsonOutput bool
}

// NewRootCommand builds the contractguard command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "contractguard",
		Short: "contractguard checks HTTP traffic against an OpenAPI contract",
		Long: `contractguard validates HTTP requests and responses against an OpenAPI 3 document.

It can lint a document, send a single request through the validating
transport, or replay traffic recorded in HAR files. Run "contractguard init"
to create a config file.

Configuration is read from --config, $CONTRACTGUARD_CONFIG, or
.contractguard.yaml in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true, // We handle errors in Execute()
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file path (default: discovered .contractguard.yaml)")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output command results in JSON format")

	root.AddCommand(
		newLintCommand(opts),
		newCheckCommand(opts),
		newReplayCommand(opts),
		newInitCommand(opts),
		newVersionCommand(opts),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	os.Exit(Main())
}

// Main runs contractguard with the process arguments and returns the exit code.
func Main() int {
	return Run(os.Args[1:], os.Stdout, os.Stderr)
}

// Run executes the command tree with args and returns the exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig resolves the effective configuration for a command.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.FromStrings(cfg.Log.Level, cfg.Log.Format, w)
}
