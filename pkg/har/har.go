// Package har reads HTTP Archive (HAR 1.2) files and replays the recorded
// exchanges through a contract matcher.
package har

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/getmockd/contractguard/pkg/validation"
)

// HAR represents an HTTP Archive file.
type HAR struct {
	Log Log `json:"log"`
}

// Log contains the HAR log data.
type Log struct {
	Version string  `json:"version"`
	Creator Creator `json:"creator"`
	Entries []Entry `json:"entries"`
}

// Creator contains tool information.
type Creator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Entry represents a single request/response pair.
type Entry struct {
	StartedDateTime string   `json:"startedDateTime"`
	Time            float64  `json:"time"`
	Request         Request  `json:"request"`
	Response        Response `json:"response"`
}

// Request represents a recorded HTTP request.
type Request struct {
	Method      string    `json:"method"`
	URL         string    `json:"url"`
	HTTPVersion string    `json:"httpVersion"`
	Headers     []Header  `json:"headers"`
	QueryString []Query   `json:"queryString"`
	PostData    *PostData `json:"postData,omitempty"`
}

// Response represents a recorded HTTP response.
type Response struct {
	Status      int      `json:"status"`
	StatusText  string   `json:"statusText"`
	HTTPVersion string   `json:"httpVersion"`
	Headers     []Header `json:"headers"`
	Content     Content  `json:"content"`
}

// Header represents an HTTP header.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Query represents a query parameter.
type Query struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PostData represents a request body.
type PostData struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// Content represents response content.
type Content struct {
	Size     int    `json:"size"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text,omitempty"`
	Encoding string `json:"encoding,omitempty"`
}

// ParseError is returned when data is not a usable HAR document.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("har: %s: %v", e.Message, e.Cause)
	}
	return "har: " + e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Parse decodes a HAR document.
func Parse(data []byte) (*HAR, error) {
	var h HAR
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, &ParseError{Message: "failed to parse HAR file", Cause: err}
	}
	if h.Log.Version == "" {
		return nil, &ParseError{Message: "not a valid HAR file (missing log.version)"}
	}
	return &h, nil
}

// Exchanges converts every entry into a validation.Exchange.
func (h *HAR) Exchanges() ([]*validation.Exchange, error) {
	out := make([]*validation.Exchange, 0, len(h.Log.Entries))
	for i := range h.Log.Entries {
		ex, err := h.Log.Entries[i].Exchange()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, ex)
	}
	return out, nil
}

// WithoutStaticAssets returns a copy of h without scripts, stylesheets,
// images and fonts.
func (h *HAR) WithoutStaticAssets() *HAR {
	filtered := &HAR{Log: h.Log}
	filtered.Log.Entries = make([]Entry, 0, len(h.Log.Entries))
	for _, e := range h.Log.Entries {
		if !e.IsStaticAsset() {
			filtered.Log.Entries = append(filtered.Log.Entries, e)
		}
	}
	return filtered
}

// Exchange rebuilds the recorded request and response.
func (e *Entry) Exchange() (*validation.Exchange, error) {
	var reqBody []byte
	if e.Request.PostData != nil {
		reqBody = []byte(e.Request.PostData.Text)
	}

	method := e.Request.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if len(reqBody) > 0 {
		body = strings.NewReader(string(reqBody))
	}
	req, err := http.NewRequest(method, e.Request.URL, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	copyHeaders(req.Header, e.Request.Headers)
	if e.Request.PostData != nil && e.Request.PostData.MimeType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", e.Request.PostData.MimeType)
	}

	respBody, err := e.Response.Content.decode()
	if err != nil {
		return nil, err
	}

	resp := &http.Response{
		StatusCode:    e.Response.Status,
		Status:        statusText(e.Response.Status, e.Response.StatusText),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        make(http.Header),
		Body:          io.NopCloser(strings.NewReader(string(respBody))),
		ContentLength: int64(len(respBody)),
		Request:       req,
	}
	copyHeaders(resp.Header, e.Response.Headers)
	if e.Response.Content.MimeType != "" && resp.Header.Get("Content-Type") == "" {
		resp.Header.Set("Content-Type", e.Response.Content.MimeType)
	}

	return &validation.Exchange{
		Request:      req,
		RequestBody:  reqBody,
		Response:     resp,
		ResponseBody: respBody,
	}, nil
}

// staticExtensions are file extensions for static assets.
var staticExtensions = map[string]bool{
	".js":    true,
	".css":   true,
	".png":   true,
	".jpg":   true,
	".jpeg":  true,
	".gif":   true,
	".svg":   true,
	".ico":   true,
	".woff":  true,
	".woff2": true,
	".ttf":   true,
	".map":   true,
}

var staticMimePrefixes = []string{
	"text/javascript",
	"application/javascript",
	"text/css",
	"image/",
	"font/",
}

// IsStaticAsset reports whether the entry fetched a static asset.
func (e *Entry) IsStaticAsset() bool {
	if parsed, err := url.Parse(e.Request.URL); err == nil {
		if staticExtensions[strings.ToLower(filepath.Ext(parsed.Path))] {
			return true
		}
	}
	mimeType := strings.ToLower(e.Response.Content.MimeType)
	for _, prefix := range staticMimePrefixes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}

func (c Content) decode() ([]byte, error) {
	if c.Encoding != "base64" {
		return []byte(c.Text), nil
	}
	data, err := base64.StdEncoding.DecodeString(c.Text)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 response content: %w", err)
	}
	return data, nil
}

// copyHeaders adds recorded headers, dropping HTTP/2 pseudo-headers.
func copyHeaders(dst http.Header, headers []Header) {
	for _, h := range headers {
		if h.Name == "" || strings.HasPrefix(h.Name, ":") {
			continue
		}
		dst.Add(h.Name, h.Value)
	}
}

func statusText(code int, text string) string {
	if text == "" {
		text = http.StatusText(code)
	}
	return fmt.Sprintf("%d %s", code, text)
}
