package contract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/expr-lang/expr/vm"
	"github.com/google/uuid"

	"github.com/getmockd/contractguard/pkg/config"
	"github.com/getmockd/contractguard/pkg/logging"
	"github.com/getmockd/contractguard/pkg/printer"
	"github.com/getmockd/contractguard/pkg/validation"
)

// Middleware validates HTTP exchanges against an OpenAPI document.
// It is safe for concurrent use.
type Middleware struct {
	source          string
	loader          validation.Loader
	matcher         validation.Matcher
	requestPrinter  printer.RequestPrinter
	responsePrinter printer.ResponsePrinter
	logger          *slog.Logger

	skip         atomic.Bool
	skipPaths    []string
	skipWhenExpr string
	skipWhen     *vm.Program
}

// New creates a Middleware for the schema at source. Source is a file
// path, a file:// or http(s):// URL, or an inline YAML/JSON document.
func New(source string, opts ...Option) (*Middleware, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrEmptySource
	}

	m := &Middleware{
		source:          source,
		loader:          validation.DefaultLoader{},
		matcher:         validation.NewOpenAPIMatcher(nil),
		requestPrinter:  printer.Wire{},
		responsePrinter: printer.Wire{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.OrNop(m.logger)

	for _, pattern := range m.skipPaths {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("contract: invalid skip path pattern %q", pattern)
		}
	}
	if m.skipWhenExpr != "" {
		program, err := compileSkipWhen(m.skipWhenExpr)
		if err != nil {
			return nil, err
		}
		m.skipWhen = program
	}

	return m, nil
}

// NewFromConfig creates a Middleware from a loaded configuration.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Middleware, error) {
	if cfg == nil {
		return nil, errors.New("contract: config is nil")
	}

	reqPrinter, respPrinter, err := printer.ByName(cfg.Printer, cfg.RedactHeaders)
	if err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}

	return New(cfg.Spec,
		WithLoader(validation.DefaultLoader{
			Options: validation.LoadOptions{IgnoreServers: cfg.IgnoreServers},
		}),
		WithMatcher(validation.NewOpenAPIMatcher(&validation.MatchConfig{
			ValidateRequest:  cfg.ValidateRequest,
			ValidateResponse: cfg.ValidateResponse,
		})),
		WithRequestPrinter(reqPrinter),
		WithResponsePrinter(respPrinter),
		WithLogger(logger),
		WithSkip(cfg.Skip),
		WithSkipWhen(cfg.SkipWhen),
		WithSkipPaths(cfg.SkipPaths...),
	)
}

// Source returns the schema source the middleware loads.
func (m *Middleware) Source() string {
	return m.source
}

// SetSkip turns validation off (true) or back on (false). The flag is read
// when a response arrives, so it applies to every exchange completing
// after the call.
func (m *Middleware) SetSkip(skip bool) {
	m.skip.Store(skip)
}

// Skipped reports whether validation is currently turned off.
func (m *Middleware) Skipped() bool {
	return m.skip.Load()
}

// Wrap returns a RoundTripper that sends requests through next and
// validates the exchanges it completes. A nil next uses
// http.DefaultTransport.
func (m *Middleware) Wrap(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &transport{m: m, next: next}
}

// Client returns a copy of base whose transport validates every exchange.
// A nil base is treated as an empty http.Client.
func (m *Middleware) Client(base *http.Client) *http.Client {
	c := &http.Client{}
	if base != nil {
		*c = *base
	}
	c.Transport = m.Wrap(c.Transport)
	return c
}

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip calls f(req).
func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type transport struct {
	m    *Middleware
	next http.RoundTripper
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqBody, err := bufferRequestBody(req)
	if err != nil {
		return nil, fmt.Errorf("contract: read request body: %w", err)
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	return t.m.check(req, reqBody, resp)
}

// check runs once next has produced a response.
func (m *Middleware) check(req *http.Request, reqBody []byte, resp *http.Response) (*http.Response, error) {
	exchangeID := uuid.NewString()
	log := m.logger.With(
		"exchange", exchangeID,
		"method", req.Method,
		"path", requestPath(req),
		"status", resp.StatusCode,
	)

	if m.skip.Load() {
		log.Debug("contract: exchange skipped", "reason", "skip flag")
		return resp, nil
	}
	if pattern, ok := matchSkipPath(m.skipPaths, requestPath(req)); ok {
		log.Debug("contract: exchange skipped", "reason", "skipPaths", "pattern", pattern)
		return resp, nil
	}
	if m.skipWhen != nil {
		skip, err := evalSkipWhen(m.skipWhen, newSkipEnv(req, resp))
		if err != nil {
			log.Warn("contract: skipWhen evaluation failed", "error", err)
		} else if skip {
			log.Debug("contract: exchange skipped", "reason", "skipWhen")
			return resp, nil
		}
	}

	respBody, err := bufferResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("contract: read response body: %w", err)
	}

	ctx := req.Context()
	schema, err := m.loader.Load(ctx, m.source)
	if err != nil {
		log.Error("contract: schema load failed", "source", m.source, "error", err)
		closeBody(resp)
		return nil, fmt.Errorf("contract: load schema %q: %w", m.source, err)
	}

	ex := &validation.Exchange{
		Request:      req,
		RequestBody:  reqBody,
		Response:     resp,
		ResponseBody: respBody,
	}
	if err := m.matcher.Match(ctx, ex, schema); err != nil {
		verr := newViolationError(err,
			m.requestPrinter.PrintRequest(printableRequest(req, reqBody)),
			m.responsePrinter.PrintResponse(resp),
		)
		closeBody(resp)
		log.Warn("contract: exchange violated contract", "code", verr.Code, "error", err)
		return nil, verr
	}

	log.Debug("contract: exchange matched")
	return resp, nil
}

// bufferRequestBody returns the bytes of the request body without leaving
// the request unreadable for the next RoundTripper.
func bufferRequestBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}

	if req.GetBody != nil {
		rc, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, err
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return data, nil
}

// bufferResponseBody reads the response body and puts an equivalent
// reader back. The original body is closed.
func bufferResponseBody(resp *http.Response) ([]byte, error) {
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, nil
	}
	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}

func closeBody(resp *http.Response) {
	if resp.Body != nil {
		_ = resp.Body.Close()
	}
}

// printableRequest returns a copy of req whose body can be read again.
// The transport has already drained the original.
func printableRequest(req *http.Request, body []byte) *http.Request {
	clone := req.Clone(req.Context())
	if body == nil {
		clone.Body = http.NoBody
		return clone
	}
	clone.Body = io.NopCloser(bytes.NewReader(body))
	clone.ContentLength = int64(len(body))
	return clone
}

func requestPath(req *http.Request) string {
	if req.URL == nil {
		return ""
	}
	return req.URL.Path
}
