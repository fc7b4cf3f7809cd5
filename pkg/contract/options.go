package contract

import (
	"log/slog"

	"github.com/getmockd/contractguard/pkg/printer"
	"github.com/getmockd/contractguard/pkg/validation"
)

// Option configures a Middleware.
type Option func(*Middleware)

// WithRequestPrinter sets how requests are rendered in violation reports.
func WithRequestPrinter(p printer.RequestPrinter) Option {
	return func(m *Middleware) {
		if p != nil {
			m.requestPrinter = p
		}
	}
}

// WithResponsePrinter sets how responses are rendered in violation reports.
func WithResponsePrinter(p printer.ResponsePrinter) Option {
	return func(m *Middleware) {
		if p != nil {
			m.responsePrinter = p
		}
	}
}

// WithLoader replaces the schema loader.
func WithLoader(l validation.Loader) Option {
	return func(m *Middleware) {
		if l != nil {
			m.loader = l
		}
	}
}

// WithMatcher replaces the exchange matcher.
func WithMatcher(mt validation.Matcher) Option {
	return func(m *Middleware) {
		if mt != nil {
			m.matcher = mt
		}
	}
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) {
		m.logger = logger
	}
}

// WithSkip sets the initial value of the skip flag.
func WithSkip(skip bool) Option {
	return func(m *Middleware) {
		m.skip.Store(skip)
	}
}

// WithSkipWhen sets an expression that exempts matching exchanges from
// validation. The expression sees request.Method, request.Path,
// request.Host, request.Query, request.Header, response.Status and
// response.Header, and must evaluate to a bool.
//
//	request.Path startsWith "/internal" || response.Status >= 500
func WithSkipWhen(expression string) Option {
	return func(m *Middleware) {
		m.skipWhenExpr = expression
	}
}

// WithSkipPaths exempts requests whose URL path matches any of the glob
// patterns. Patterns use doublestar syntax, so "/internal/**" matches every
// path below /internal.
func WithSkipPaths(patterns ...string) Option {
	return func(m *Middleware) {
		m.skipPaths = append(m.skipPaths, patterns...)
	}
}
