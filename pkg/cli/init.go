package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/contractguard/pkg/config"
	"github.com/getmockd/contractguard/pkg/printer"
)

// InitResult is the machine-readable output of the init command.
type InitResult struct {
	Path   string         `json:"path"`
	Config *config.Config `json:"config"`
}

type initOptions struct {
	spec          string
	printer       string
	ignoreServers bool
	redact        bool
	output        string
	force         bool
}

func newInitCommand(opts *globalOptions) *cobra.Command {
	iopts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .contractguard.yaml config file",
		Long: `Write a starter configuration file. Without --spec the values are asked
for interactively.

Examples:
  contractguard init
  contractguard init --spec openapi.yaml --printer pretty --redact`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("spec") {
				if err := promptInit(iopts); err != nil {
					return err
				}
			}
			return runInit(cmd, opts, iopts)
		},
	}

	cmd.Flags().StringVar(&iopts.spec, "spec", "", "OpenAPI document path or URL")
	cmd.Flags().StringVar(&iopts.printer, "printer", printer.NameWire, "Diagnostics format: wire, pretty, yaml, curl")
	cmd.Flags().BoolVar(&iopts.ignoreServers, "ignore-servers", false, "Match operations regardless of the document's servers")
	cmd.Flags().BoolVar(&iopts.redact, "redact", false, "Mask credentials in printed requests and responses")
	cmd.Flags().StringVarP(&iopts.output, "output", "o", config.DiscoveryOrder[0], "Where to write the config file")
	cmd.Flags().BoolVar(&iopts.force, "force", false, "Overwrite an existing file")
	return cmd
}

func promptInit(iopts *initOptions) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Where is the OpenAPI document?").
				Placeholder("openapi.yaml").
				Value(&iopts.spec).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("spec is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("How should violations be printed?").
				Options(
					huh.NewOption("Raw HTTP (wire)", printer.NameWire),
					huh.NewOption("Indented JSON bodies (pretty)", printer.NamePretty),
					huh.NewOption("YAML document", printer.NameYAML),
					huh.NewOption("curl command", printer.NameCurl),
				).
				Value(&iopts.printer),
			huh.NewConfirm().
				Title("Match operations regardless of the document's servers?").
				Value(&iopts.ignoreServers),
			huh.NewConfirm().
				Title("Mask credentials in printed traffic?").
				Value(&iopts.redact),
		),
	)
	return form.Run()
}

func runInit(cmd *cobra.Command, opts *globalOptions, iopts *initOptions) error {
	spec := strings.TrimSpace(iopts.spec)
	if spec == "" {
		return errors.New("spec is required")
	}
	if _, _, err := printer.ByName(iopts.printer, nil); err != nil {
		return err
	}
	if !iopts.force {
		if _, err := os.Stat(iopts.output); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", iopts.output)
		}
	}

	cfg := config.DefaultConfig()
	cfg.Spec = spec
	cfg.Printer = strings.ToLower(iopts.printer)
	cfg.IgnoreServers = iopts.ignoreServers
	if iopts.redact {
		cfg.RedactHeaders = append([]string(nil), printer.DefaultRedactedHeaders...)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(iopts.output, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Read it back so a file that would fail to load is reported now.
	written, err := config.Load(iopts.output)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	return opts.printResult(w, InitResult{Path: iopts.output, Config: written}, func() {
		fmt.Fprintf(w, "Wrote %s\n", iopts.output)
	})
}
