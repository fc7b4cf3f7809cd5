// Package contract provides an HTTP client middleware that checks every
// request/response pair against an OpenAPI document.
//
// The middleware wraps an http.RoundTripper. Requests go through unchanged;
// once a response arrives the schema source is loaded afresh and the
// exchange is matched against it. A mismatch turns into a *ViolationError
// carrying the matcher's message followed by dumps of the request and the
// response:
//
//	mw, err := contract.New("testdata/openapi.yaml")
//	if err != nil {
//		t.Fatal(err)
//	}
//	client := mw.Client(nil)
//	resp, err := client.Get(srv.URL + "/status")
//
// Transport failures from the wrapped RoundTripper are returned as-is and
// never validated.
package contract
