// Package config loads contractguard configuration.
//
// Configuration is read from a YAML file, validated against an embedded JSON
// Schema, and then overridden by environment variables. Values use the
// following precedence:
//
//  1. Command-line flags (applied by the CLI)
//  2. Environment variables (CONTRACTGUARD_*)
//  3. Config file (.contractguard.yaml, or the path in CONTRACTGUARD_CONFIG)
//  4. Defaults
//
// A minimal file:
//
//	spec: ./openapi.yaml
//	ignoreServers: true
//	printer: pretty
//	skipWhen: 'request.Path startsWith "/internal"'
//	log:
//	  level: debug
//
// String values may reference the environment with ${VAR} or
// ${VAR:-default}.
package config
