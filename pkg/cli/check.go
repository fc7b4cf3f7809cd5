package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/contractguard/pkg/cli/internal/parse"
	"github.com/getmockd/contractguard/pkg/contract"
)

// CheckResult is the JSON output of the check command.
type CheckResult struct {
	Method  string `json:"method"`
	URL     string `json:"url"`
	Valid   bool   `json:"valid"`
	Status  int    `json:"status,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type checkOptions struct {
	method        string
	headers       []string
	data          string
	spec          string
	ignoreServers bool
	timeout       time.Duration
}

func newCheckCommand(opts *globalOptions) *cobra.Command {
	co := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check <url>",
		Short: "Send one request and validate the exchange",
		Long: `Send a single HTTP request through the validating transport and report
whether the request and its response match the contract.

Examples:
  contractguard check --spec openapi.yaml http://localhost:8080/status
  contractguard check --spec openapi.yaml -X POST -H 'Content-Type: application/json' \
    -d '{"name":"widget"}' http://localhost:8080/items`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, co, args[0])
		},
	}

	cmd.Flags().StringVarP(&co.method, "method", "X", "", "HTTP method (default GET, or POST with --data)")
	cmd.Flags().StringArrayVarP(&co.headers, "header", "H", nil, "Request header 'Name: value' (repeatable)")
	cmd.Flags().StringVarP(&co.data, "data", "d", "", "Request body")
	cmd.Flags().StringVar(&co.spec, "spec", "", "OpenAPI document (overrides the configured spec)")
	cmd.Flags().BoolVar(&co.ignoreServers, "ignore-servers", false, "Match operations regardless of the document's servers")
	cmd.Flags().DurationVar(&co.timeout, "timeout", 30*time.Second, "Request timeout")
	return cmd
}

func runCheck(cmd *cobra.Command, opts *globalOptions, co *checkOptions, target string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if co.spec != "" {
		cfg.Spec = co.spec
	}
	if co.ignoreServers {
		cfg.IgnoreServers = true
	}
	// A skip flag from config would make check a no-op.
	cfg.Skip = false

	mw, err := contract.NewFromConfig(cfg, newLogger(cfg, cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	method := strings.ToUpper(co.method)
	if method == "" {
		method = http.MethodGet
		if co.data != "" {
			method = http.MethodPost
		}
	}

	var body io.Reader
	if co.data != "" {
		body = strings.NewReader(co.data)
	}
	req, err := http.NewRequestWithContext(cmd.Context(), method, target, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	header, err := parse.Header(co.headers)
	if err != nil {
		return err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if co.data != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	client := mw.Client(&http.Client{Timeout: co.timeout})
	result := CheckResult{Method: method, URL: target}
	w := cmd.OutOrStdout()

	resp, err := client.Do(req)
	if err != nil {
		var verr *contract.ViolationError
		if !errors.As(err, &verr) {
			return fmt.Errorf("request failed: %w", err)
		}
		result.Code = verr.Code
		result.Message = verr.Message
		if perr := opts.printResult(w, result, func() {
			fmt.Fprintf(w, "FAIL %s %s (%s)\n\n%s", method, target, verr.Code, verr.Message)
		}); perr != nil {
			return perr
		}
		return ErrContractViolated
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	result.Valid = true
	result.Status = resp.StatusCode
	return opts.printResult(w, result, func() {
		fmt.Fprintf(w, "PASS %s %s -> %s\n", method, target, resp.Status)
	})
}
