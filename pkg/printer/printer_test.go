package printer

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newRequest(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "http://api.test/items?draft=true", strings.NewReader(`{"name":"widget","tags":["a"]}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer secret-token")
	return req
}

func newResponse() *http.Response {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(`{"status":42}`)),
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp
}

func requireBodyIntact(t *testing.T, body io.Reader, expected string) {
	t.Helper()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, expected, string(data))
}

func TestWire(t *testing.T) {
	t.Run("request", func(t *testing.T) {
		req := newRequest(t)
		out := Wire{}.PrintRequest(req)

		assert.True(t, strings.HasPrefix(out, "POST /items?draft=true HTTP/1.1"), out)
		assert.Contains(t, out, "Host: api.test")
		assert.Contains(t, out, "Authorization: Bearer secret-token")
		assert.Contains(t, out, `{"name":"widget","tags":["a"]}`)
		requireBodyIntact(t, req.Body, `{"name":"widget","tags":["a"]}`)
	})

	t.Run("response", func(t *testing.T) {
		resp := newResponse()
		out := Wire{}.PrintResponse(resp)

		assert.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK"), out)
		assert.Contains(t, out, "Content-Type: application/json")
		assert.Contains(t, out, `{"status":42}`)
		requireBodyIntact(t, resp.Body, `{"status":42}`)
	})

	t.Run("redacts headers", func(t *testing.T) {
		req := newRequest(t)
		out := Wire{Redact: DefaultRedactedHeaders}.PrintRequest(req)

		assert.NotContains(t, out, "secret-token")
		assert.Contains(t, out, "Authorization: [REDACTED]")
		assert.Equal(t, "Bearer secret-token", req.Header.Get("Authorization"))
	})

	t.Run("nil values", func(t *testing.T) {
		assert.Equal(t, "<nil request>", Wire{}.PrintRequest(nil))
		assert.Equal(t, "<nil response>", Wire{}.PrintResponse(nil))
	})
}

func TestPretty(t *testing.T) {
	t.Run("request", func(t *testing.T) {
		req := newRequest(t)
		out := Pretty{}.PrintRequest(req)

		lines := strings.Split(out, "\n")
		require.NotEmpty(t, lines)
		assert.Equal(t, "POST /items?draft=true HTTP/1.1", lines[0])
		assert.Equal(t, "Host: api.test", lines[1])
		assert.Contains(t, out, "Authorization: Bearer secret-token\nContent-Type: application/json")
		assert.Contains(t, out, "\n\n{\n  \"name\"")
		assert.Contains(t, out, `"widget"`)
		requireBodyIntact(t, req.Body, `{"name":"widget","tags":["a"]}`)
	})

	t.Run("response", func(t *testing.T) {
		resp := newResponse()
		out := Pretty{}.PrintResponse(resp)

		assert.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK\n"), out)
		assert.Contains(t, out, "\n  \"status\"")
		assert.Contains(t, out, "42")
		requireBodyIntact(t, resp.Body, `{"status":42}`)
	})

	t.Run("non json body is left alone", func(t *testing.T) {
		resp := newResponse()
		resp.Header.Set("Content-Type", "text/plain")
		resp.Body = io.NopCloser(strings.NewReader("plain text"))

		out := Pretty{}.PrintResponse(resp)
		assert.True(t, strings.HasSuffix(out, "\n\nplain text"), out)
	})

	t.Run("redacts headers", func(t *testing.T) {
		out := Pretty{Redact: []string{"authorization"}}.PrintRequest(newRequest(t))
		assert.Contains(t, out, "Authorization: [REDACTED]")
	})
}

func TestYAML(t *testing.T) {
	t.Run("request", func(t *testing.T) {
		req := newRequest(t)
		out := YAML{Redact: DefaultRedactedHeaders}.PrintRequest(req)

		var doc map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "POST", doc["method"])
		assert.Equal(t, "http://api.test/items?draft=true", doc["url"])

		body, ok := doc["body"].(map[string]any)
		require.True(t, ok, "json body should render as a mapping")
		assert.Equal(t, "widget", body["name"])
		assert.NotContains(t, out, "secret-token")
		requireBodyIntact(t, req.Body, `{"name":"widget","tags":["a"]}`)
	})

	t.Run("response", func(t *testing.T) {
		out := YAML{}.PrintResponse(newResponse())

		var doc map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
		assert.Equal(t, 200, doc["statusCode"])
		body, ok := doc["body"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, 42, body["status"])
	})
}

func TestCurl(t *testing.T) {
	req := newRequest(t)
	out := Curl{Redact: DefaultRedactedHeaders}.PrintRequest(req)

	assert.Equal(t,
		`curl -X POST -H 'Authorization: [REDACTED]' -H 'Content-Type: application/json' `+
			`--data-raw '{"name":"widget","tags":["a"]}' 'http://api.test/items?draft=true'`,
		out)
	requireBodyIntact(t, req.Body, `{"name":"widget","tags":["a"]}`)

	get, err := http.NewRequest(http.MethodGet, "http://api.test/it's", nil)
	require.NoError(t, err)
	assert.Equal(t, `curl 'http://api.test/it'\''s'`, Curl{}.PrintRequest(get))
}

func TestByName(t *testing.T) {
	tests := []struct {
		name     string
		wantReq  RequestPrinter
		wantResp ResponsePrinter
		wantErr  bool
	}{
		{name: "", wantReq: Wire{}, wantResp: Wire{}},
		{name: "wire", wantReq: Wire{}, wantResp: Wire{}},
		{name: "Pretty", wantReq: Pretty{}, wantResp: Pretty{}},
		{name: "yaml", wantReq: YAML{}, wantResp: YAML{}},
		{name: "curl", wantReq: Curl{}, wantResp: Pretty{}},
		{name: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, resp, err := ByName(tt.name, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantReq, req)
			assert.IsType(t, tt.wantResp, resp)
		})
	}
}

func TestPrinterFuncs(t *testing.T) {
	reqP := RequestPrinterFunc(func(r *http.Request) string { return "req " + r.Method })
	respP := ResponsePrinterFunc(func(r *http.Response) string { return "resp " + r.Status })

	assert.Equal(t, "req POST", reqP.PrintRequest(newRequest(t)))
	assert.Equal(t, "resp 200 OK", respP.PrintResponse(newResponse()))
}
