// Package printer renders HTTP requests and responses as human-readable text
// for contract violation reports.
//
// Printers read bodies but always put an equivalent reader back, so a
// request or response can be printed and then used again.
package printer

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// RequestPrinter renders a request for diagnostics.
type RequestPrinter interface {
	PrintRequest(r *http.Request) string
}

// ResponsePrinter renders a response for diagnostics.
type ResponsePrinter interface {
	PrintResponse(r *http.Response) string
}

// RequestPrinterFunc adapts a function to RequestPrinter.
type RequestPrinterFunc func(r *http.Request) string

// PrintRequest calls f(r).
func (f RequestPrinterFunc) PrintRequest(r *http.Request) string { return f(r) }

// ResponsePrinterFunc adapts a function to ResponsePrinter.
type ResponsePrinterFunc func(r *http.Response) string

// PrintResponse calls f(r).
func (f ResponsePrinterFunc) PrintResponse(r *http.Response) string { return f(r) }

// Printer names accepted by ByName.
const (
	NameWire   = "wire"
	NamePretty = "pretty"
	NameYAML   = "yaml"
	NameCurl   = "curl"
)

// DefaultRedactedHeaders are masked by printers configured to redact.
var DefaultRedactedHeaders = []string{
	"Authorization",
	"Proxy-Authorization",
	"Cookie",
	"Set-Cookie",
	"X-Api-Key",
}

const redacted = "[REDACTED]"

// ByName returns the request and response printers registered under name.
// An empty name selects the wire printers. The curl printer only renders
// requests, so it is paired with the pretty response printer.
func ByName(name string, redact []string) (RequestPrinter, ResponsePrinter, error) {
	switch strings.ToLower(name) {
	case "", NameWire:
		p := Wire{Redact: redact}
		return p, p, nil
	case NamePretty:
		p := Pretty{Redact: redact}
		return p, p, nil
	case NameYAML:
		p := YAML{Redact: redact}
		return p, p, nil
	case NameCurl:
		return Curl{Redact: redact}, Pretty{Redact: redact}, nil
	default:
		return nil, nil, fmt.Errorf("unknown printer %q (valid: wire, pretty, yaml, curl)", name)
	}
}

// readRequestBody returns the request body and restores it.
func readRequestBody(r *http.Request) []byte {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	data, _ := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data
}

// readResponseBody returns the response body and restores it.
func readResponseBody(r *http.Response) []byte {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	data, _ := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data
}

// maskHeaders returns a copy of h with the named headers replaced.
func maskHeaders(h http.Header, names []string) http.Header {
	out := h.Clone()
	if out == nil {
		out = make(http.Header)
	}
	for _, name := range names {
		if _, ok := out[http.CanonicalHeaderKey(name)]; ok {
			out.Set(name, redacted)
		}
	}
	return out
}

func requestTarget(r *http.Request) string {
	if r.URL == nil {
		return "/"
	}
	if target := r.URL.RequestURI(); target != "" {
		return target
	}
	return "/"
}

func protoOrDefault(proto string) string {
	if proto == "" {
		return "HTTP/1.1"
	}
	return proto
}
