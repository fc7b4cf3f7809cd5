package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv and Discover.
const (
	EnvConfig   = "CONTRACTGUARD_CONFIG"
	EnvSpec     = "CONTRACTGUARD_SPEC"
	EnvSkip     = "CONTRACTGUARD_SKIP"
	EnvPrinter  = "CONTRACTGUARD_PRINTER"
	EnvLogLevel = "CONTRACTGUARD_LOG_LEVEL"
)

// DiscoveryOrder lists the file names Discover looks for, in order.
var DiscoveryOrder = []string{".contractguard.yaml", ".contractguard.yml"}

// Config is the complete contractguard configuration.
type Config struct {
	// Spec is the schema source: a file path, URL, or inline document
	Spec string `yaml:"spec" json:"spec"`

	// Skip starts the middleware with validation disabled
	Skip bool `yaml:"skip" json:"skip"`

	// SkipWhen is an expression; exchanges for which it is true are not validated
	SkipWhen string `yaml:"skipWhen,omitempty" json:"skipWhen,omitempty"`

	// SkipPaths are glob patterns (** supported) of request paths not validated
	SkipPaths []string `yaml:"skipPaths,omitempty" json:"skipPaths,omitempty"`

	// IgnoreServers matches operations regardless of the document's servers
	IgnoreServers bool `yaml:"ignoreServers" json:"ignoreServers"`

	ValidateRequest  bool `yaml:"validateRequest" json:"validateRequest"`
	ValidateResponse bool `yaml:"validateResponse" json:"validateResponse"`

	// Printer selects the diagnostics format: wire, pretty, yaml, curl
	Printer string `yaml:"printer" json:"printer"`

	// RedactHeaders are masked in printed requests and responses
	RedactHeaders []string `yaml:"redactHeaders,omitempty" json:"redactHeaders,omitempty"`

	Log LogConfig `yaml:"log" json:"log"`
}

// LogConfig configures the logger built by the CLI.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		ValidateRequest:  true,
		ValidateResponse: true,
		Printer:          "wire",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ConfigError represents a configuration file error with location info.
type ConfigError struct {
	Path    string
	Message string
	Errors  []string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := e.Message
	for _, detail := range e.Errors {
		msg += "\n  - " + detail
	}
	if e.Path == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Path, msg)
}

// Load reads, expands, validates and decodes the config file at path.
// Fields absent from the file keep their DefaultConfig values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		if cerr, ok := err.(*ConfigError); ok {
			cerr.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes config bytes the way Load does.
func Parse(data []byte) (*Config, error) {
	expanded := []byte(ExpandEnvVars(string(data)))

	if err := validateDocument(expanded); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("parsing config: %v", err)}
	}
	return cfg, nil
}

// Discover returns the config file to use: the path in CONTRACTGUARD_CONFIG,
// or the first DiscoveryOrder file in the working directory. It returns an
// empty path when there is none.
func Discover() (string, error) {
	if envPath := os.Getenv(EnvConfig); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("%s points to non-existent file: %s", EnvConfig, envPath)
		}
		return envPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	for _, name := range DiscoveryOrder {
		path := filepath.Join(cwd, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// LoadOrDefault loads path, or the discovered config when path is empty,
// falling back to DefaultConfig. Environment overrides are applied last.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		discovered, err := Discover()
		if err != nil {
			return nil, err
		}
		path = discovered
	}

	cfg := DefaultConfig()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with CONTRACTGUARD_* environment variables.
func ApplyEnv(cfg *Config) error {
	if spec := os.Getenv(EnvSpec); spec != "" {
		cfg.Spec = spec
	}
	if skip := os.Getenv(EnvSkip); skip != "" {
		v, err := strconv.ParseBool(skip)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvSkip, skip, err)
		}
		cfg.Skip = v
	}
	if p := os.Getenv(EnvPrinter); p != "" {
		cfg.Printer = p
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Log.Level = level
	}
	return nil
}
