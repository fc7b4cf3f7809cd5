// Package cli provides the command-line interface for contractguard.
//
// Commands:
//   - lint: load and validate an OpenAPI document
//   - check: send one request through the validating transport
//   - replay: validate traffic recorded in HAR files
//   - init: write a starter .contractguard.yaml
//   - version: show build information
//
// Every command accepts --json for machine-readable output and --config
// to point at a configuration file.
package cli
