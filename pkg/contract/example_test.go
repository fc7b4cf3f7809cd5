package contract_test

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/getmockd/contractguard/pkg/contract"
)

func ExampleMiddleware_Wrap() {
	spec := `
openapi: "3.0.3"
info: {title: Status API, version: "1.0.0"}
paths:
  /status:
    get:
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: object
                properties:
                  status: {type: string}
`
	mw, err := contract.New(spec)
	if err != nil {
		fmt.Println(err)
		return
	}

	backend := contract.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Proto:      "HTTP/1.1",
			ProtoMajor: 1,
			ProtoMinor: 1,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(`{"status":42}`)),
			Request:    req,
		}, nil
	})

	req, _ := http.NewRequest(http.MethodGet, "http://api.test/status", nil)
	_, err = mw.Wrap(backend).RoundTrip(req)

	var verr *contract.ViolationError
	if errors.As(err, &verr) {
		fmt.Println(verr.Code)
	}
	// Output: response_mismatch
}
