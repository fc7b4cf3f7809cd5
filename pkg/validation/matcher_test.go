package validation

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestSchema(t *testing.T) *Schema {
	t.Helper()
	schema, err := DefaultLoader{}.Load(context.Background(), testOpenAPISpec)
	require.NoError(t, err)
	return schema
}

func newExchange(t *testing.T, method, url, reqBody string, status int, respBody string) *Exchange {
	t.Helper()

	var body io.Reader
	if reqBody != "" {
		body = strings.NewReader(reqBody)
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if reqBody != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp := &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     make(http.Header),
		Request:    req,
	}
	if respBody != "" {
		resp.Header.Set("Content-Type", "application/json")
	}

	return &Exchange{
		Request:      req,
		RequestBody:  []byte(reqBody),
		Response:     resp,
		ResponseBody: []byte(respBody),
	}
}

func requireMismatch(t *testing.T, err error) *MismatchError {
	t.Helper()
	require.Error(t, err)
	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch), "expected *MismatchError, got %T", err)
	return mismatch
}

func TestOpenAPIMatcher_Match(t *testing.T) {
	schema := loadTestSchema(t)
	matcher := NewOpenAPIMatcher(nil)

	t.Run("matching exchange", func(t *testing.T) {
		ex := newExchange(t, http.MethodGet, "http://api.test/status", "", 200, `{"status":"ok"}`)
		assert.NoError(t, matcher.Match(context.Background(), ex, schema))
	})

	t.Run("response body type mismatch", func(t *testing.T) {
		ex := newExchange(t, http.MethodGet, "http://api.test/status", "", 200, `{"status":42}`)

		mismatch := requireMismatch(t, matcher.Match(context.Background(), ex, schema))
		assert.Equal(t, ErrCodeResponseMismatch, mismatch.Code)
		assert.Equal(t, ErrCodeResponseMismatch, mismatch.ErrorCode())

		errs := mismatch.Errors()
		require.Len(t, errs, 1)
		assert.Equal(t, LocationResponse, errs[0].Location)
		assert.Equal(t, ErrCodeType, errs[0].Code)
		assert.Equal(t, "$.status", errs[0].Field)
		assert.Contains(t, errs[0].Message, "type mismatch")

		msg := mismatch.Error()
		assert.Contains(t, msg, "GET /status -> 200 does not match contract")
		assert.Contains(t, msg, "type mismatch")
	})

	t.Run("missing required response property", func(t *testing.T) {
		ex := newExchange(t, http.MethodGet, "http://api.test/status", "", 200, `{}`)

		mismatch := requireMismatch(t, matcher.Match(context.Background(), ex, schema))
		require.NotEmpty(t, mismatch.Errors())
		assert.Equal(t, ErrCodeRequired, mismatch.Errors()[0].Code)
	})

	t.Run("undeclared status", func(t *testing.T) {
		ex := newExchange(t, http.MethodGet, "http://api.test/status", "", 500, "")

		mismatch := requireMismatch(t, matcher.Match(context.Background(), ex, schema))
		assert.Equal(t, ErrCodeResponseMismatch, mismatch.Code)
		require.NotEmpty(t, mismatch.Errors())
		assert.Equal(t, ErrCodeStatus, mismatch.Errors()[0].Code)
	})

	t.Run("no route", func(t *testing.T) {
		ex := newExchange(t, http.MethodGet, "http://api.test/missing", "", 200, "")

		mismatch := requireMismatch(t, matcher.Match(context.Background(), ex, schema))
		assert.Equal(t, ErrCodeNoRoute, mismatch.Code)
		assert.Equal(t, "/missing", mismatch.Path)
	})

	t.Run("invalid path parameter", func(t *testing.T) {
		ex := newExchange(t, http.MethodGet, "http://api.test/items/abc", "", 200, `{"id":1}`)

		mismatch := requireMismatch(t, matcher.Match(context.Background(), ex, schema))
		assert.Equal(t, ErrCodeRequestMismatch, mismatch.Code)
		require.NotEmpty(t, mismatch.Request.Errors)
		assert.Equal(t, LocationPath, mismatch.Request.Errors[0].Location)
		assert.Equal(t, "id", mismatch.Request.Errors[0].Field)
	})

	t.Run("query parameter below minimum", func(t *testing.T) {
		ex := newExchange(t, http.MethodGet, "http://api.test/items/7?limit=0", "", 200, `{"id":7}`)

		mismatch := requireMismatch(t, matcher.Match(context.Background(), ex, schema))
		assert.Equal(t, ErrCodeRequestMismatch, mismatch.Code)
		require.NotEmpty(t, mismatch.Request.Errors)
		assert.Equal(t, LocationQuery, mismatch.Request.Errors[0].Location)
		assert.Equal(t, ErrCodeMin, mismatch.Request.Errors[0].Code)
	})

	t.Run("request body missing required field", func(t *testing.T) {
		ex := newExchange(t, http.MethodPost, "http://api.test/items", `{}`, 201, "")

		mismatch := requireMismatch(t, matcher.Match(context.Background(), ex, schema))
		assert.Equal(t, ErrCodeRequestMismatch, mismatch.Code)
		require.NotEmpty(t, mismatch.Request.Errors)
		assert.Equal(t, LocationBody, mismatch.Request.Errors[0].Location)
		assert.Equal(t, ErrCodeRequired, mismatch.Request.Errors[0].Code)
	})

	t.Run("valid request body", func(t *testing.T) {
		ex := newExchange(t, http.MethodPost, "http://api.test/items", `{"name":"widget"}`, 201, "")
		assert.NoError(t, matcher.Match(context.Background(), ex, schema))
	})
}

func TestOpenAPIMatcher_Config(t *testing.T) {
	schema := loadTestSchema(t)

	t.Run("response validation disabled", func(t *testing.T) {
		matcher := NewOpenAPIMatcher(&MatchConfig{ValidateRequest: true})
		ex := newExchange(t, http.MethodGet, "http://api.test/status", "", 200, `{"status":42}`)
		assert.NoError(t, matcher.Match(context.Background(), ex, schema))
	})

	t.Run("request validation disabled", func(t *testing.T) {
		matcher := NewOpenAPIMatcher(&MatchConfig{ValidateResponse: true})
		ex := newExchange(t, http.MethodPost, "http://api.test/items", `{}`, 201, "")
		assert.NoError(t, matcher.Match(context.Background(), ex, schema))
	})

	t.Run("response body excluded", func(t *testing.T) {
		matcher := NewOpenAPIMatcher(&MatchConfig{ValidateRequest: true, ValidateResponse: true, ExcludeResponseBody: true})
		ex := newExchange(t, http.MethodGet, "http://api.test/status", "", 200, `{"status":42}`)
		assert.NoError(t, matcher.Match(context.Background(), ex, schema))
	})
}

func TestOpenAPIMatcher_BadInput(t *testing.T) {
	matcher := NewOpenAPIMatcher(nil)
	schema := loadTestSchema(t)

	assert.Error(t, matcher.Match(context.Background(), nil, schema))
	assert.Error(t, matcher.Match(context.Background(), &Exchange{}, schema))

	ex := newExchange(t, http.MethodGet, "http://api.test/status", "", 200, `{"status":"ok"}`)
	assert.Error(t, matcher.Match(context.Background(), ex, nil))
}

func TestOpenAPIMatcher_DoesNotConsumeRequestBody(t *testing.T) {
	schema := loadTestSchema(t)
	ex := newExchange(t, http.MethodPost, "http://api.test/items", `{"name":"widget"}`, 201, "")

	require.NoError(t, NewOpenAPIMatcher(nil).Match(context.Background(), ex, schema))
	assert.Equal(t, `{"name":"widget"}`, string(ex.RequestBody))
}

func TestMismatchError_Error(t *testing.T) {
	req := &Result{Valid: true}
	req.AddError(&FieldError{Location: LocationQuery, Field: "limit", Code: ErrCodeMin, Message: "number must be at least 1"})
	resp := &Result{Valid: true}
	resp.AddError(&FieldError{Location: LocationResponse, Field: "$.id", Code: ErrCodeType, Message: "type mismatch: value must be an integer"})

	err := newMismatchError(http.MethodGet, "/items/7", 200, req, resp)

	assert.Equal(t, ErrCodeRequestMismatch, err.Code)
	assert.Equal(t,
		"GET /items/7 -> 200 does not match contract (2 violations):\n"+
			"  query limit: number must be at least 1\n"+
			"  response $.id: type mismatch: value must be an integer",
		err.Error())
}

func TestResult_Merge(t *testing.T) {
	r := &Result{Valid: true}
	r.Merge(nil)
	assert.True(t, r.Valid)

	other := &Result{Valid: true}
	other.AddError(&FieldError{Location: LocationBody, Message: "bad"})
	r.Merge(other)

	assert.False(t, r.Valid)
	assert.True(t, r.HasErrors())
	assert.Equal(t, "body: bad", r.Errors[0].Error())
}
