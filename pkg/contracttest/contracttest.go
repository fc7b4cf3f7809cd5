// Package contracttest wires the contract middleware into Go tests.
//
// Basic usage:
//
//	func TestStatus(t *testing.T) {
//		h := contracttest.New(t, "testdata/openapi.yaml")
//		url := h.Serve(myHandler)
//
//		resp, err := h.Client().Get(url + "/status")
//		contracttest.AssertNoViolation(t, err)
//		defer resp.Body.Close()
//	}
package contracttest

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getmockd/contractguard/pkg/contract"
)

// Harness holds a contract middleware bound to a test.
type Harness struct {
	t      testing.TB
	mw     *contract.Middleware
	client *http.Client
}

// New creates a Harness for the schema at source. The test fails
// immediately if the middleware cannot be built.
func New(t testing.TB, source string, opts ...contract.Option) *Harness {
	t.Helper()

	mw, err := contract.New(source, opts...)
	if err != nil {
		t.Fatalf("contracttest: %v", err)
		return nil
	}
	return &Harness{
		t:      t,
		mw:     mw,
		client: mw.Client(nil),
	}
}

// Client returns an http.Client that validates every exchange.
func (h *Harness) Client() *http.Client {
	return h.client
}

// Middleware returns the underlying middleware.
func (h *Harness) Middleware() *contract.Middleware {
	return h.mw
}

// Serve starts handler on an httptest server that is closed when the test
// ends, and returns its base URL.
func (h *Harness) Serve(handler http.Handler) string {
	srv := httptest.NewServer(handler)
	h.t.Cleanup(srv.Close)
	return srv.URL
}

// Skipping runs fn with validation turned off, then restores the previous
// skip setting.
func (h *Harness) Skipping(fn func()) {
	prev := h.mw.Skipped()
	h.mw.SetSkip(true)
	defer h.mw.SetSkip(prev)
	fn()
}

// RequireViolation fails the test unless err carries a contract
// violation, and returns it.
func RequireViolation(t testing.TB, err error) *contract.ViolationError {
	t.Helper()

	if err == nil {
		t.Fatalf("expected a contract violation, got no error")
		return nil
	}
	var verr *contract.ViolationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a contract violation, got %T: %v", err, err)
		return nil
	}
	return verr
}

// AssertNoViolation marks the test failed if err carries a contract
// violation. Other errors are reported too.
func AssertNoViolation(t testing.TB, err error) bool {
	t.Helper()

	if err == nil {
		return true
	}
	var verr *contract.ViolationError
	if errors.As(err, &verr) {
		t.Errorf("unexpected contract violation (%s):\n%s", verr.Code, verr.Message)
		return false
	}
	t.Errorf("unexpected error: %v", err)
	return false
}

// AssertViolationCode marks the test failed unless err is a violation
// with the given code.
func AssertViolationCode(t testing.TB, err error, code string) bool {
	t.Helper()

	var verr *contract.ViolationError
	if !errors.As(err, &verr) {
		t.Errorf("expected a contract violation with code %q, got %v", code, err)
		return false
	}
	if verr.Code != code {
		t.Errorf("violation code mismatch\nexpected: %q\nactual: %q", code, verr.Code)
		return false
	}
	return true
}
