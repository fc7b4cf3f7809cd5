// Package logging provides structured logging configuration for contractguard.
//
// This package wraps log/slog so the middleware, the CLI and the test harness
// log the same way. It supports configurable log levels and output formats.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelDebug,
//	    Format: logging.FormatText,
//	})
//
//	mw, err := contract.New("openapi.yaml", contract.WithLogger(logger))
//
// # Integration
//
// Components accept a *slog.Logger through an option or constructor argument.
// If no logger is provided they use logging.Nop(), so a test suite that does
// not care about diagnostics sees nothing but the violation errors.
package logging
