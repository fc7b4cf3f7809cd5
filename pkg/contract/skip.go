package contract

import (
	"fmt"
	"net/http"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// skipEnv is the environment a skipWhen expression is evaluated against.
type skipEnv struct {
	Request  skipRequest  `expr:"request"`
	Response skipResponse `expr:"response"`
}

type skipRequest struct {
	Method string
	Path   string
	Host   string
	Query  string
	Header map[string]string
}

type skipResponse struct {
	Status int
	Header map[string]string
}

func compileSkipWhen(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression, expr.Env(skipEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("contract: compile skipWhen %q: %w", expression, err)
	}
	return program, nil
}

func newSkipEnv(req *http.Request, resp *http.Response) skipEnv {
	env := skipEnv{
		Request: skipRequest{
			Method: req.Method,
			Host:   req.Host,
			Header: flattenHeader(req.Header),
		},
		Response: skipResponse{
			Status: resp.StatusCode,
			Header: flattenHeader(resp.Header),
		},
	}
	if req.URL != nil {
		env.Request.Path = req.URL.Path
		env.Request.Query = req.URL.RawQuery
		if env.Request.Host == "" {
			env.Request.Host = req.URL.Host
		}
	}
	return env
}

// flattenHeader keeps the first value of each header, keyed canonically.
func flattenHeader(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			out[http.CanonicalHeaderKey(k)] = v[0]
		}
	}
	return out
}

func evalSkipWhen(program *vm.Program, env skipEnv) (bool, error) {
	result, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}
	skip, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("skipWhen returned %T, want bool", result)
	}
	return skip, nil
}

// matchSkipPath returns the first pattern matching path.
func matchSkipPath(patterns []string, path string) (string, bool) {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return pattern, true
		}
	}
	return "", false
}
