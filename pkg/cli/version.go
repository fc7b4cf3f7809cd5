package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

func currentBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func newVersionCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := currentBuildInfo()
			w := cmd.OutOrStdout()
			return opts.printResult(w, info, func() {
				fmt.Fprintf(w, "contractguard %s\n", info.Version)
				fmt.Fprintf(w, "  commit:   %s\n", info.Commit)
				fmt.Fprintf(w, "  built:    %s\n", info.BuildDate)
				fmt.Fprintf(w, "  go:       %s\n", info.GoVersion)
				fmt.Fprintf(w, "  platform: %s\n", info.Platform)
			})
		},
	}
}
