package printer

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
)

// Pretty prints a start line, sorted headers and the body, re-indenting
// JSON bodies with sorted keys so that diffs between runs stay stable.
type Pretty struct {
	// Redact lists headers whose values are masked.
	Redact []string
}

var prettyJSON = &ojg.Options{Indent: 2, Sort: true}

// PrintRequest implements RequestPrinter.
func (p Pretty) PrintRequest(r *http.Request) string {
	if r == nil {
		return "<nil request>"
	}
	body := readRequestBody(r)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s\n", r.Method, requestTarget(r), protoOrDefault(r.Proto))
	host := r.Host
	if host == "" && r.URL != nil {
		host = r.URL.Host
	}
	if host != "" {
		fmt.Fprintf(&sb, "Host: %s\n", host)
	}
	writeHeaders(&sb, maskHeaders(r.Header, p.Redact))
	writeBody(&sb, r.Header.Get("Content-Type"), body)
	return strings.TrimRight(sb.String(), "\n")
}

// PrintResponse implements ResponsePrinter.
func (p Pretty) PrintResponse(r *http.Response) string {
	if r == nil {
		return "<nil response>"
	}
	body := readResponseBody(r)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", protoOrDefault(r.Proto), statusLine(r))
	writeHeaders(&sb, maskHeaders(r.Header, p.Redact))
	writeBody(&sb, r.Header.Get("Content-Type"), body)
	return strings.TrimRight(sb.String(), "\n")
}

func statusLine(r *http.Response) string {
	text := http.StatusText(r.StatusCode)
	if r.Status != "" && !strings.HasPrefix(r.Status, fmt.Sprint(r.StatusCode)) {
		text = r.Status
	}
	return fmt.Sprintf("%d %s", r.StatusCode, text)
}

func writeHeaders(sb *strings.Builder, h http.Header) {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range h[k] {
			fmt.Fprintf(sb, "%s: %s\n", k, v)
		}
	}
}

func writeBody(sb *strings.Builder, contentType string, body []byte) {
	if len(body) == 0 {
		return
	}
	sb.WriteString("\n")
	sb.WriteString(formatBody(contentType, body))
	sb.WriteString("\n")
}

// formatBody re-indents JSON bodies and returns anything else unchanged.
func formatBody(contentType string, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if !strings.Contains(contentType, "json") &&
		!strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return string(body)
	}
	v, err := oj.ParseString(trimmed)
	if err != nil {
		return string(body)
	}
	return oj.JSON(v, prettyJSON)
}
