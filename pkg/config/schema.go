package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// configSchema is the JSON Schema every config document must satisfy.
const configSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "spec": {"type": "string", "minLength": 1},
    "skip": {"type": "boolean"},
    "skipWhen": {"type": "string"},
    "skipPaths": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "ignoreServers": {"type": "boolean"},
    "validateRequest": {"type": "boolean"},
    "validateResponse": {"type": "boolean"},
    "printer": {"enum": ["wire", "pretty", "yaml", "curl"]},
    "redactHeaders": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "log": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "level": {"enum": ["debug", "info", "warn", "warning", "error"]},
        "format": {"enum": ["text", "json"]}
      }
    }
  }
}`

var (
	compiledSchema *jsonschema.Schema
	compileErr     error
	compileOnce    sync.Once
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("contractguard.schema.json", strings.NewReader(configSchema)); err != nil {
			compileErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile("contractguard.schema.json")
	})
	return compiledSchema, compileErr
}

// validateDocument checks raw YAML against configSchema.
func validateDocument(data []byte) error {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return &ConfigError{Message: fmt.Sprintf("parsing config: %v", err)}
	}
	if raw == nil {
		return nil
	}

	// Convert to JSON and back to ensure consistent types
	jsonBytes, err := json.Marshal(raw)
	if err != nil {
		return &ConfigError{Message: fmt.Sprintf("config is not representable as JSON: %v", err)}
	}
	var doc interface{}
	if err := json.Unmarshal(jsonBytes, &doc); err != nil {
		return &ConfigError{Message: fmt.Sprintf("config is not representable as JSON: %v", err)}
	}

	sch, err := schema()
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		verr, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return &ConfigError{Message: err.Error()}
		}
		cerr := &ConfigError{Message: "invalid config"}
		collectSchemaErrors(verr, cerr)
		return cerr
	}
	return nil
}

// collectSchemaErrors flattens the leaves of a validation error tree.
func collectSchemaErrors(err *jsonschema.ValidationError, out *ConfigError) {
	if len(err.Causes) == 0 {
		field := strings.TrimPrefix(err.InstanceLocation, "/")
		field = strings.ReplaceAll(field, "/", ".")
		if field == "" {
			out.Errors = append(out.Errors, err.Message)
		} else {
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %s", field, err.Message))
		}
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, out)
	}
}

// envVarPattern matches ${VAR_NAME} or ${VAR_NAME:-default}
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnvVars expands environment variables in the input string.
// Supports ${VAR_NAME} and ${VAR_NAME:-default} syntax.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		submatch := envVarPattern.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}

		if val := os.Getenv(submatch[1]); val != "" {
			return val
		}
		if len(submatch) >= 3 {
			return submatch[2]
		}
		return ""
	})
}
