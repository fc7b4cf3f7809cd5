package validation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
)

// Exchange is one request/response pair with both bodies already buffered.
type Exchange struct {
	Request      *http.Request
	RequestBody  []byte
	Response     *http.Response
	ResponseBody []byte
}

// Matcher checks an exchange against a schema. It returns nil when the
// exchange satisfies the contract and an error describing the violation
// otherwise.
type Matcher interface {
	Match(ctx context.Context, ex *Exchange, schema *Schema) error
}

// MatcherFunc is an adapter to allow the use of ordinary functions as Matchers.
type MatcherFunc func(ctx context.Context, ex *Exchange, schema *Schema) error

// Match calls f(ctx, ex, schema).
func (f MatcherFunc) Match(ctx context.Context, ex *Exchange, schema *Schema) error {
	return f(ctx, ex, schema)
}

// MatchConfig selects which sides of an exchange are checked.
type MatchConfig struct {
	ValidateRequest     bool `json:"validateRequest" yaml:"validateRequest"`
	ValidateResponse    bool `json:"validateResponse" yaml:"validateResponse"`
	ExcludeRequestBody  bool `json:"excludeRequestBody" yaml:"excludeRequestBody"`
	ExcludeResponseBody bool `json:"excludeResponseBody" yaml:"excludeResponseBody"`
}

// DefaultMatchConfig checks both the request and the response.
func DefaultMatchConfig() *MatchConfig {
	return &MatchConfig{
		ValidateRequest:  true,
		ValidateResponse: true,
	}
}

// OpenAPIMatcher asserts that a request and its response jointly match an
// OpenAPI operation.
type OpenAPIMatcher struct {
	config *MatchConfig
}

// NewOpenAPIMatcher creates a matcher. A nil config checks both sides.
func NewOpenAPIMatcher(config *MatchConfig) *OpenAPIMatcher {
	if config == nil {
		config = DefaultMatchConfig()
	}
	return &OpenAPIMatcher{config: config}
}

// Match implements Matcher. Violations are reported as *MismatchError.
func (m *OpenAPIMatcher) Match(ctx context.Context, ex *Exchange, schema *Schema) error {
	if ex == nil || ex.Request == nil || ex.Response == nil {
		return errors.New("validation: exchange requires a request and a response")
	}
	if schema == nil || schema.Router == nil {
		return errors.New("validation: schema is not loaded")
	}

	req := ex.Request.Clone(ctx)
	req.Body = io.NopCloser(bytes.NewReader(ex.RequestBody))
	method, path, status := req.Method, req.URL.Path, ex.Response.StatusCode

	route, pathParams, err := schema.Router.FindRoute(req)
	if err != nil {
		result := &Result{Valid: true}
		result.AddError(&FieldError{
			Location: LocationRequest,
			Code:     ErrCodeNoRoute,
			Message:  fmt.Sprintf("no matching operation in contract: %s", err.Error()),
		})
		mismatch := newMismatchError(method, path, status, result, nil)
		mismatch.Code = ErrCodeNoRoute
		return mismatch
	}

	reqInput := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: pathParams,
		Route:      route,
		Options: &openapi3filter.Options{
			MultiError:         true,
			ExcludeRequestBody: m.config.ExcludeRequestBody,
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}

	var reqResult, respResult *Result

	if m.config.ValidateRequest {
		reqResult = &Result{Valid: true}
		if err := openapi3filter.ValidateRequest(ctx, reqInput); err != nil {
			collectErrors(err, LocationRequest, "", reqResult)
		}
	}

	if m.config.ValidateResponse {
		respResult = &Result{Valid: true}
		respInput := &openapi3filter.ResponseValidationInput{
			RequestValidationInput: reqInput,
			Status:                 status,
			Header:                 ex.Response.Header,
			Options: &openapi3filter.Options{
				MultiError:            true,
				IncludeResponseStatus: true,
				ExcludeResponseBody:   m.config.ExcludeResponseBody,
			},
		}
		respInput.SetBodyBytes(ex.ResponseBody)

		if err := openapi3filter.ValidateResponse(ctx, respInput); err != nil {
			collectErrors(err, LocationResponse, "", respResult)
		}
	}

	if (reqResult == nil || reqResult.Valid) && (respResult == nil || respResult.Valid) {
		return nil
	}
	return newMismatchError(method, path, status, reqResult, respResult)
}

// collectErrors flattens kin-openapi errors into FieldErrors.
func collectErrors(err error, location, field string, result *Result) {
	if err == nil {
		return
	}

	switch e := err.(type) {
	case openapi3.MultiError:
		for _, inner := range e {
			collectErrors(inner, location, field, result)
		}

	case *openapi3filter.RequestError:
		loc, name := LocationRequest, field
		if e.Parameter != nil {
			loc, name = parameterLocation(e.Parameter.In), e.Parameter.Name
		} else if e.RequestBody != nil {
			loc = LocationBody
		}
		if e.Err == nil {
			result.AddError(&FieldError{Location: loc, Field: name, Code: ErrCodeOpenAPI, Message: e.Error()})
			return
		}
		if errors.Is(e.Err, openapi3filter.ErrInvalidRequired) {
			result.AddError(&FieldError{Location: loc, Field: name, Code: ErrCodeRequired, Message: e.Err.Error()})
			return
		}
		collectErrors(e.Err, loc, name, result)

	case *openapi3filter.ResponseError:
		if e.Err == nil {
			code := ErrCodeOpenAPI
			if strings.Contains(e.Reason, "status") {
				code = ErrCodeStatus
			}
			result.AddError(&FieldError{Location: LocationResponse, Field: field, Code: code, Message: e.Error()})
			return
		}
		collectErrors(e.Err, LocationResponse, field, result)

	case *openapi3filter.SecurityRequirementsError:
		result.AddError(&FieldError{Location: LocationSecurity, Code: ErrCodeSecurity, Message: e.Error()})

	case *openapi3.SchemaError:
		fe := &FieldError{
			Location: location,
			Field:    field,
			Code:     ErrCodeSchema,
			Message:  e.Reason,
			Received: e.Value,
		}
		if jsonPath := formatJSONPath(e.JSONPointer()); jsonPath != "" && jsonPath != "$" {
			if field != "" {
				fe.Field = field + strings.TrimPrefix(jsonPath, "$")
			} else {
				fe.Field = jsonPath
			}
		}
		if code, ok := schemaFieldCodes[e.SchemaField]; ok {
			fe.Code = code
		}
		if fe.Code == ErrCodeType {
			fe.Message = "type mismatch: " + e.Reason
		}
		result.AddError(fe)

	default:
		result.AddError(&FieldError{Location: location, Field: field, Code: ErrCodeOpenAPI, Message: err.Error()})
	}
}

func parameterLocation(in string) string {
	switch in {
	case openapi3.ParameterInPath:
		return LocationPath
	case openapi3.ParameterInQuery:
		return LocationQuery
	case openapi3.ParameterInHeader:
		return LocationHeader
	case openapi3.ParameterInCookie:
		return LocationCookie
	default:
		return LocationRequest
	}
}

// formatJSONPath converts a JSON pointer parts array to a more readable format
func formatJSONPath(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	// Convert ["foo", "bar", "0"] to $.foo.bar[0]
	var sb strings.Builder
	sb.WriteString("$")
	for _, part := range parts {
		if part == "" {
			continue
		}
		if isNumeric(part) {
			sb.WriteString("[")
			sb.WriteString(part)
			sb.WriteString("]")
		} else {
			sb.WriteString(".")
			sb.WriteString(part)
		}
	}
	return sb.String()
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
