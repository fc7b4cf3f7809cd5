package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/contractguard/pkg/validation"
)

// LintResult is the JSON output of the lint command.
type LintResult struct {
	Source     string `json:"source"`
	OpenAPI    string `json:"openapi"`
	Title      string `json:"title"`
	Version    string `json:"version"`
	Operations int    `json:"operations"`
}

func newLintCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lint [spec]",
		Short: "Load and validate an OpenAPI document",
		Long: `Load an OpenAPI document from a file or URL and validate it.
Without an argument the configured spec is linted.

Examples:
  contractguard lint ./openapi.yaml
  contractguard lint https://api.example.com/openapi.json --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var source string
			if len(args) == 1 {
				source = args[0]
			} else {
				cfg, err := opts.loadConfig()
				if err != nil {
					return err
				}
				source = cfg.Spec
			}
			if source == "" {
				return fmt.Errorf("no spec given (pass one or set spec in the config file)")
			}

			schema, err := validation.DefaultLoader{}.Load(cmd.Context(), source)
			if err != nil {
				return fmt.Errorf("lint %s: %w", source, err)
			}

			result := LintResult{
				Source:     source,
				OpenAPI:    schema.Doc.OpenAPI,
				Title:      schema.Doc.Info.Title,
				Version:    schema.Doc.Info.Version,
				Operations: validation.OperationCount(schema.Doc),
			}

			w := cmd.OutOrStdout()
			return opts.printResult(w, result, func() {
				fmt.Fprintf(w, "%s: valid OpenAPI %s document\n", source, result.OpenAPI)
				fmt.Fprintf(w, "  title:      %s\n", result.Title)
				fmt.Fprintf(w, "  version:    %s\n", result.Version)
				fmt.Fprintf(w, "  operations: %d\n", result.Operations)
			})
		},
	}
}
