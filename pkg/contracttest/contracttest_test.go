package contracttest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/contractguard/pkg/contract"
	"github.com/getmockd/contractguard/pkg/validation"
)

const statusSpec = `
openapi: "3.0.3"
info:
  title: Status API
  version: "1.0.0"
paths:
  /status:
    get:
      responses:
        "200":
          description: Current status
          content:
            application/json:
              schema:
                type: object
                required: [status]
                properties:
                  status:
                    type: string
`

// spyTB records failures instead of stopping the test.
type spyTB struct {
	testing.TB
	errors []string
	fatals []string
}

func (s *spyTB) Helper() {}

func (s *spyTB) Errorf(format string, args ...any) {
	s.errors = append(s.errors, fmt.Sprintf(format, args...))
}

func (s *spyTB) Fatalf(format string, args ...any) {
	s.fatals = append(s.fatals, fmt.Sprintf(format, args...))
}

func statusHandler(body *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, *body)
	})
}

func TestHarness(t *testing.T) {
	body := `{"status":"ok"}`
	h := New(t, statusSpec)
	url := h.Serve(statusHandler(&body))

	resp, err := h.Client().Get(url + "/status")
	require.True(t, AssertNoViolation(t, err))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, body, string(data))

	body = `{"status":42}`
	_, err = h.Client().Get(url + "/status")
	verr := RequireViolation(t, err)
	assert.Equal(t, validation.ErrCodeResponseMismatch, verr.Code)
	assert.True(t, AssertViolationCode(t, err, validation.ErrCodeResponseMismatch))
}

func TestHarness_Skipping(t *testing.T) {
	body := `{"status":42}`
	h := New(t, statusSpec)
	url := h.Serve(statusHandler(&body))

	h.Skipping(func() {
		assert.True(t, h.Middleware().Skipped())
		resp, err := h.Client().Get(url + "/status")
		require.NoError(t, err)
		_ = resp.Body.Close()
	})
	assert.False(t, h.Middleware().Skipped())

	h.Middleware().SetSkip(true)
	h.Skipping(func() {})
	assert.True(t, h.Middleware().Skipped(), "previous value is restored")
}

func TestNew_Fails(t *testing.T) {
	spy := &spyTB{TB: t}
	assert.Nil(t, New(spy, ""))
	require.Len(t, spy.fatals, 1)
	assert.Contains(t, spy.fatals[0], "schema source is required")
}

func TestRequireViolation(t *testing.T) {
	spy := &spyTB{TB: t}
	assert.Nil(t, RequireViolation(spy, nil))
	assert.Nil(t, RequireViolation(spy, errors.New("dial tcp: refused")))
	assert.Len(t, spy.fatals, 2)

	verr := &contract.ViolationError{Code: "no_route", Message: "GET /x"}
	got := RequireViolation(spy, fmt.Errorf("wrapped: %w", verr))
	assert.Same(t, verr, got)
	assert.Len(t, spy.fatals, 2)
}

func TestAssertNoViolation(t *testing.T) {
	spy := &spyTB{TB: t}

	assert.True(t, AssertNoViolation(spy, nil))
	assert.Empty(t, spy.errors)

	assert.False(t, AssertNoViolation(spy, &contract.ViolationError{Code: "no_route", Message: "GET /x"}))
	assert.False(t, AssertNoViolation(spy, errors.New("boom")))
	require.Len(t, spy.errors, 2)
	assert.Contains(t, spy.errors[0], "unexpected contract violation (no_route)")
	assert.Contains(t, spy.errors[1], "boom")
}

func TestAssertViolationCode(t *testing.T) {
	spy := &spyTB{TB: t}

	assert.False(t, AssertViolationCode(spy, nil, "no_route"))
	assert.False(t, AssertViolationCode(spy, &contract.ViolationError{Code: "other"}, "no_route"))
	assert.True(t, AssertViolationCode(spy, &contract.ViolationError{Code: "no_route"}, "no_route"))
	assert.Len(t, spy.errors, 2)
}
