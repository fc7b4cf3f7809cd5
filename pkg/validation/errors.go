package validation

import (
	"fmt"
	"strings"
)

// ErrorCode constants for machine-readable error identification
const (
	ErrCodeRequired     = "required"
	ErrCodeType         = "type"
	ErrCodeMinLength    = "min_length"
	ErrCodeMaxLength    = "max_length"
	ErrCodePattern      = "pattern"
	ErrCodeFormat       = "format"
	ErrCodeMin          = "min"
	ErrCodeMax          = "max"
	ErrCodeMinItems     = "min_items"
	ErrCodeMaxItems     = "max_items"
	ErrCodeUniqueItems  = "unique_items"
	ErrCodeEnum         = "enum"
	ErrCodeSchema       = "schema"
	ErrCodeUnknownField = "unknown_field"
	ErrCodeStatus       = "status"
	ErrCodeSecurity     = "security"
	ErrCodeOpenAPI      = "openapi_validation"
)

// Mismatch codes carried by MismatchError.
const (
	ErrCodeNoRoute          = "no_route"
	ErrCodeRequestMismatch  = "request_mismatch"
	ErrCodeResponseMismatch = "response_mismatch"
)

// ErrorLocation constants
const (
	LocationBody     = "body"
	LocationPath     = "path"
	LocationQuery    = "query"
	LocationHeader   = "header"
	LocationCookie   = "cookie"
	LocationRequest  = "request"
	LocationResponse = "response"
	LocationSecurity = "security"
)

// schemaFieldCodes maps the JSON Schema keyword that failed to an error code.
var schemaFieldCodes = map[string]string{
	"type":                 ErrCodeType,
	"required":             ErrCodeRequired,
	"enum":                 ErrCodeEnum,
	"format":               ErrCodeFormat,
	"pattern":              ErrCodePattern,
	"minLength":            ErrCodeMinLength,
	"maxLength":            ErrCodeMaxLength,
	"minimum":              ErrCodeMin,
	"exclusiveMinimum":     ErrCodeMin,
	"maximum":              ErrCodeMax,
	"exclusiveMaximum":     ErrCodeMax,
	"minItems":             ErrCodeMinItems,
	"maxItems":             ErrCodeMaxItems,
	"uniqueItems":          ErrCodeUniqueItems,
	"additionalProperties": ErrCodeUnknownField,
}

// FieldError represents a detailed validation error for a single field.
type FieldError struct {
	// Field is the parameter name or JSONPath of the value that failed validation
	Field string `json:"field,omitempty" yaml:"field,omitempty"`

	// Location indicates where the field is: body, path, query, header, response
	Location string `json:"location" yaml:"location"`

	// Code is a machine-readable error code
	Code string `json:"code" yaml:"code"`

	// Message is a human-readable error description
	Message string `json:"message" yaml:"message"`

	// Received is the actual value that was received
	Received interface{} `json:"received,omitempty" yaml:"received,omitempty"`
}

// Error implements the error interface
func (e *FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s %s: %s", e.Location, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

// Result contains the outcome of validation.
type Result struct {
	// Valid is true if validation passed
	Valid bool `json:"valid"`

	// Errors contains validation errors (when Valid is false)
	Errors []*FieldError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (r *Result) AddError(err *FieldError) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

// HasErrors returns true if there are any validation errors
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Merge combines another result into this one
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	if !other.Valid {
		r.Valid = false
	}
	r.Errors = append(r.Errors, other.Errors...)
}

// MismatchError reports that a request/response pair does not satisfy the
// contract. It is the error a Matcher returns on a contract violation.
type MismatchError struct {
	// Code is one of ErrCodeNoRoute, ErrCodeRequestMismatch, ErrCodeResponseMismatch
	Code string `json:"code"`

	Method string `json:"method"`
	Path   string `json:"path"`
	Status int    `json:"status"`

	// Request holds request-side errors, Response holds response-side errors
	Request  *Result `json:"request,omitempty"`
	Response *Result `json:"response,omitempty"`
}

// ErrorCode returns the machine-readable mismatch code.
func (e *MismatchError) ErrorCode() string {
	return e.Code
}

// Errors returns request errors followed by response errors.
func (e *MismatchError) Errors() []*FieldError {
	var all []*FieldError
	if e.Request != nil {
		all = append(all, e.Request.Errors...)
	}
	if e.Response != nil {
		all = append(all, e.Response.Errors...)
	}
	return all
}

// Error implements the error interface
func (e *MismatchError) Error() string {
	errs := e.Errors()

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s -> %d does not match contract", e.Method, e.Path, e.Status)
	switch len(errs) {
	case 0:
		sb.WriteString(" (" + e.Code + ")")
	case 1:
		sb.WriteString(" (1 violation):")
	default:
		fmt.Fprintf(&sb, " (%d violations):", len(errs))
	}
	for _, fe := range errs {
		sb.WriteString("\n  ")
		sb.WriteString(fe.Error())
	}
	return sb.String()
}

// newMismatchError derives the mismatch code from the collected results.
// Request errors take precedence over response errors.
func newMismatchError(method, path string, status int, req, resp *Result) *MismatchError {
	e := &MismatchError{
		Method:   method,
		Path:     path,
		Status:   status,
		Request:  req,
		Response: resp,
	}
	switch {
	case req != nil && req.HasErrors():
		e.Code = ErrCodeRequestMismatch
	default:
		e.Code = ErrCodeResponseMismatch
	}
	return e
}
