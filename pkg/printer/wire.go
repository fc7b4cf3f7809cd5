package printer

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"strings"
)

// Wire prints requests and responses as they appear on the wire, using
// net/http/httputil. It is the default printer.
type Wire struct {
	// Redact lists headers whose values are masked.
	Redact []string
}

// PrintRequest implements RequestPrinter.
func (p Wire) PrintRequest(r *http.Request) string {
	if r == nil {
		return "<nil request>"
	}
	body := readRequestBody(r)

	clone := r.Clone(r.Context())
	clone.Body = io.NopCloser(bytes.NewReader(body))
	if len(p.Redact) > 0 {
		clone.Header = maskHeaders(r.Header, p.Redact)
	}

	dump, err := httputil.DumpRequest(clone, true)
	if err != nil {
		return fmt.Sprintf("<unprintable request: %v>", err)
	}
	return strings.TrimRight(string(dump), "\r\n")
}

// PrintResponse implements ResponsePrinter.
func (p Wire) PrintResponse(r *http.Response) string {
	if r == nil {
		return "<nil response>"
	}
	body := readResponseBody(r)

	clone := *r
	clone.Body = io.NopCloser(bytes.NewReader(body))
	clone.ContentLength = int64(len(body))
	clone.TransferEncoding = nil
	if clone.ProtoMajor == 0 {
		clone.ProtoMajor, clone.ProtoMinor = 1, 1
	}
	if len(p.Redact) > 0 {
		clone.Header = maskHeaders(r.Header, p.Redact)
	}

	dump, err := httputil.DumpResponse(&clone, true)
	if err != nil {
		return fmt.Sprintf("<unprintable response: %v>", err)
	}
	return strings.TrimRight(string(dump), "\r\n")
}
