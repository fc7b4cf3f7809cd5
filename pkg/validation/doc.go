// Package validation checks HTTP exchanges against OpenAPI contracts.
//
// It is the assertion engine behind the contract middleware: a Loader turns
// a schema source into a Schema, and a Matcher decides whether one
// request/response pair satisfies it. Both are interfaces so tests and
// callers can substitute their own.
//
// # Loading
//
// A schema source may be a local file (YAML or JSON), a file://, http:// or
// https:// URL, or an inline document:
//
//	schema, err := validation.DefaultLoader{}.Load(ctx, "openapi.yaml")
//
// kin-openapi mutates parts of a document while validating against it, so
// callers load a fresh Schema for every exchange instead of sharing one.
//
// # Matching
//
//	m := validation.NewOpenAPIMatcher(nil)
//	err := m.Match(ctx, &validation.Exchange{
//	    Request:      req,
//	    RequestBody:  reqBody,
//	    Response:     resp,
//	    ResponseBody: respBody,
//	}, schema)
//
// A violation is reported as *MismatchError, whose Code is one of
// ErrCodeNoRoute, ErrCodeRequestMismatch or ErrCodeResponseMismatch and
// whose field errors locate each problem (path, query, header, body,
// response) with a JSONPath where one applies.
//
// Both OpenAPI 3.0 and 3.1 documents are supported.
package validation
