package cli

import (
	"io"

	"github.com/getmockd/contractguard/pkg/cli/internal/output"
)

// printResult outputs a single command result.
//
// When --json is active, ONLY the JSON encoding of data is written to w.
// textFn is called only in text mode.
func (o *globalOptions) printResult(w io.Writer, data any, textFn func()) error {
	if o.jsonOutput {
		return output.JSON(w, data)
	}
	textFn()
	return nil
}
