package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/contractguard/pkg/har"
	"github.com/getmockd/contractguard/pkg/validation"
)

// ReplayEntry is one line of the replay command's JSON output.
type ReplayEntry struct {
	File   string `json:"file"`
	Index  int    `json:"index"`
	Method string `json:"method"`
	URL    string `json:"url"`
	Status int    `json:"status"`
	Valid  bool   `json:"valid"`
	Code   string `json:"code,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ReplayResult is the JSON output of the replay command.
type ReplayResult struct {
	Files   []string      `json:"files"`
	Spec    string        `json:"spec"`
	Total   int           `json:"total"`
	Failed  int           `json:"failed"`
	Entries []ReplayEntry `json:"entries"`
}

type replayOptions struct {
	spec          string
	includeStatic bool
	ignoreServers bool
}

func newReplayCommand(opts *globalOptions) *cobra.Command {
	ro := &replayOptions{}

	cmd := &cobra.Command{
		Use:   "replay <file.har|glob>...",
		Short: "Validate traffic recorded in HAR files",
		Long: `Check every request/response pair recorded in HAR (HTTP Archive) files
against the contract. Arguments are file paths or glob patterns; ** matches
across directories. Static assets are skipped unless --include-static is set.

Examples:
  contractguard replay --spec openapi.yaml session.har
  contractguard replay --spec openapi.yaml 'recordings/**/*.har'
  contractguard replay --spec openapi.yaml --ignore-servers --json session.har`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, opts, ro, args)
		},
	}

	cmd.Flags().StringVar(&ro.spec, "spec", "", "OpenAPI document (overrides the configured spec)")
	cmd.Flags().BoolVar(&ro.includeStatic, "include-static", false, "Also check scripts, stylesheets, images and fonts")
	cmd.Flags().BoolVar(&ro.ignoreServers, "ignore-servers", false, "Match operations regardless of the document's servers")
	return cmd
}

func runReplay(cmd *cobra.Command, opts *globalOptions, ro *replayOptions, args []string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if ro.spec != "" {
		cfg.Spec = ro.spec
	}
	if cfg.Spec == "" {
		return fmt.Errorf("no spec given (use --spec or set spec in the config file)")
	}

	paths, err := har.ExpandPaths(args)
	if err != nil {
		return err
	}

	loader := validation.DefaultLoader{Options: validation.LoadOptions{
		IgnoreServers: cfg.IgnoreServers || ro.ignoreServers,
	}}
	matcher := validation.NewOpenAPIMatcher(&validation.MatchConfig{
		ValidateRequest:  cfg.ValidateRequest,
		ValidateResponse: cfg.ValidateResponse,
	})
	logger := newLogger(cfg, cmd.ErrOrStderr())

	summary := ReplayResult{
		Files:   paths,
		Spec:    cfg.Spec,
		Entries: []ReplayEntry{},
	}
	for _, path := range paths {
		archive, err := har.ParseFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if !ro.includeStatic {
			archive = archive.WithoutStaticAssets()
		}

		results := har.Replay(cmd.Context(), archive, loader, matcher, cfg.Spec)
		failed := har.Failed(results)
		logger.Debug("replay finished", "file", path, "entries", len(results), "failed", failed)

		summary.Total += len(results)
		summary.Failed += failed
		for _, r := range results {
			entry := ReplayEntry{
				File:   path,
				Index:  r.Index,
				Method: r.Method,
				URL:    r.URL,
				Status: r.Status,
				Valid:  r.OK(),
			}
			if r.Err != nil {
				entry.Error = r.Err.Error()
				var coded interface{ ErrorCode() string }
				if errors.As(r.Err, &coded) {
					entry.Code = coded.ErrorCode()
				}
			}
			summary.Entries = append(summary.Entries, entry)
		}
	}

	w := cmd.OutOrStdout()
	if err := opts.printResult(w, summary, func() {
		for _, e := range summary.Entries {
			status := "PASS"
			if !e.Valid {
				status = "FAIL"
			}
			fmt.Fprintf(w, "%s  %s#%d %s %s -> %d\n", status, entryPrefix(summary.Files, e.File), e.Index, e.Method, e.URL, e.Status)
			if !e.Valid {
				fmt.Fprintf(w, "      %s\n", e.Error)
			}
		}
		fmt.Fprintf(w, "\n%d entries, %d failed\n", summary.Total, summary.Failed)
	}); err != nil {
		return err
	}

	if summary.Failed > 0 {
		return ErrContractViolated
	}
	return nil
}

// entryPrefix names the file in text output when more than one is replayed.
func entryPrefix(files []string, file string) string {
	if len(files) < 2 {
		return ""
	}
	return file + " "
}
