package printer

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Curl prints a request as a curl command that reproduces it.
type Curl struct {
	// Redact lists headers whose values are masked.
	Redact []string
}

// PrintRequest implements RequestPrinter.
func (p Curl) PrintRequest(r *http.Request) string {
	if r == nil {
		return "<nil request>"
	}
	body := readRequestBody(r)

	parts := []string{"curl"}
	if r.Method != "" && r.Method != http.MethodGet {
		parts = append(parts, "-X", r.Method)
	}

	h := maskHeaders(r.Header, p.Redact)
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range h[k] {
			parts = append(parts, "-H", shellQuote(fmt.Sprintf("%s: %s", k, v)))
		}
	}

	if len(body) > 0 {
		parts = append(parts, "--data-raw", shellQuote(string(body)))
	}

	target := ""
	if r.URL != nil {
		target = r.URL.String()
	}
	parts = append(parts, shellQuote(target))

	return strings.Join(parts, " ")
}

// shellQuote wraps s in single quotes for POSIX shells.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
