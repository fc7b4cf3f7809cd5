package printer

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"
)

// YAML prints requests and responses as YAML documents. JSON bodies are
// embedded as structured values rather than strings.
type YAML struct {
	// Redact lists headers whose values are masked.
	Redact []string
}

type yamlRequest struct {
	Method string              `yaml:"method"`
	URL    string              `yaml:"url"`
	Proto  string              `yaml:"protocol,omitempty"`
	Header map[string][]string `yaml:"header,omitempty"`
	Body   any                 `yaml:"body,omitempty"`
}

type yamlResponse struct {
	Proto      string              `yaml:"protocol,omitempty"`
	StatusCode int                 `yaml:"statusCode"`
	StatusText string              `yaml:"statusText,omitempty"`
	Header     map[string][]string `yaml:"header,omitempty"`
	Body       any                 `yaml:"body,omitempty"`
}

// PrintRequest implements RequestPrinter.
func (p YAML) PrintRequest(r *http.Request) string {
	if r == nil {
		return "<nil request>"
	}
	body := readRequestBody(r)

	doc := yamlRequest{
		Method: r.Method,
		Proto:  r.Proto,
		Header: maskHeaders(r.Header, p.Redact),
		Body:   bodyValue(r.Header.Get("Content-Type"), body),
	}
	if r.URL != nil {
		doc.URL = r.URL.String()
	}
	return marshalYAML(doc, "request")
}

// PrintResponse implements ResponsePrinter.
func (p YAML) PrintResponse(r *http.Response) string {
	if r == nil {
		return "<nil response>"
	}
	body := readResponseBody(r)

	doc := yamlResponse{
		Proto:      r.Proto,
		StatusCode: r.StatusCode,
		StatusText: http.StatusText(r.StatusCode),
		Header:     maskHeaders(r.Header, p.Redact),
		Body:       bodyValue(r.Header.Get("Content-Type"), body),
	}
	return marshalYAML(doc, "response")
}

func marshalYAML(v any, kind string) string {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<unprintable %s: %v>", kind, err)
	}
	return strings.TrimRight(string(out), "\n")
}

// bodyValue decodes JSON bodies so they render as YAML structures.
func bodyValue(contentType string, body []byte) any {
	if len(body) == 0 {
		return nil
	}
	if strings.Contains(contentType, "json") {
		if v, err := oj.Parse(body); err == nil {
			return v
		}
	}
	return string(body)
}
