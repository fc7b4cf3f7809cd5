package validation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// Schema is a loaded contract: the OpenAPI document and a router that
// resolves requests to its operations.
//
// A Schema is built fresh for every validated exchange and must not be
// shared between exchanges.
type Schema struct {
	Doc    *openapi3.T
	Router routers.Router
	Source string
}

// Loader resolves a schema source into a Schema.
type Loader interface {
	Load(ctx context.Context, source string) (*Schema, error)
}

// LoaderFunc is an adapter to allow the use of ordinary functions as Loaders.
type LoaderFunc func(ctx context.Context, source string) (*Schema, error)

// Load calls f(ctx, source).
func (f LoaderFunc) Load(ctx context.Context, source string) (*Schema, error) {
	return f(ctx, source)
}

// LoadOptions tune how DefaultLoader builds a Schema.
type LoadOptions struct {
	// IgnoreServers drops the document's servers so routes match any host.
	IgnoreServers bool `json:"ignoreServers" yaml:"ignoreServers"`

	// SkipDocValidation skips validating the OpenAPI document itself.
	SkipDocValidation bool `json:"skipDocValidation" yaml:"skipDocValidation"`
}

// DefaultLoader loads OpenAPI 3 documents with kin-openapi.
type DefaultLoader struct {
	Options LoadOptions
}

// ErrNoSource is returned when a schema source is empty.
var ErrNoSource = errors.New("no OpenAPI spec source provided")

// Load reads the source and returns a new Schema. Nothing is cached.
func (l DefaultLoader) Load(ctx context.Context, source string) (*Schema, error) {
	doc, err := loadSource(ctx, source)
	if err != nil {
		return nil, err
	}

	if l.Options.IgnoreServers {
		doc.Servers = nil
	}

	if !l.Options.SkipDocValidation {
		if err := doc.Validate(ctx); err != nil {
			return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
		}
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	return &Schema{
		Doc:    doc,
		Router: router,
		Source: source,
	}, nil
}

// LoadSource loads an OpenAPI spec from a file path, a file/http/https URL,
// or an inline document.
func LoadSource(source string) (*openapi3.T, error) {
	return loadSource(context.Background(), source)
}

func loadSource(ctx context.Context, source string) (*openapi3.T, error) {
	trimmed := strings.TrimSpace(source)
	switch {
	case trimmed == "":
		return nil, ErrNoSource
	case strings.HasPrefix(trimmed, "{") || strings.Contains(trimmed, "\n"):
		return loadSpecFromData(ctx, []byte(source))
	case strings.HasPrefix(trimmed, "http://"), strings.HasPrefix(trimmed, "https://"):
		return loadSpecFromURL(ctx, trimmed)
	case strings.HasPrefix(trimmed, "file://"):
		u, err := url.Parse(trimmed)
		if err != nil {
			return nil, fmt.Errorf("invalid spec URL: %w", err)
		}
		return loadSpecFromFile(ctx, u.Path)
	default:
		return loadSpecFromFile(ctx, trimmed)
	}
}

func newLoader(ctx context.Context) *openapi3.Loader {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	loader.Context = ctx
	return loader
}

// LoadSpec loads an OpenAPI spec from a file path
func LoadSpec(path string) (*openapi3.T, error) {
	return loadSpecFromFile(context.Background(), path)
}

func loadSpecFromFile(ctx context.Context, path string) (*openapi3.T, error) {
	doc, err := newLoader(ctx).LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load spec from file %s: %w", path, err)
	}
	return doc, nil
}

// LoadSpecFromURL loads an OpenAPI spec from a URL
func LoadSpecFromURL(specURL string) (*openapi3.T, error) {
	return loadSpecFromURL(context.Background(), specURL)
}

func loadSpecFromURL(ctx context.Context, specURL string) (*openapi3.T, error) {
	parsedURL, err := url.Parse(specURL)
	if err != nil {
		return nil, fmt.Errorf("invalid spec URL: %w", err)
	}

	doc, err := newLoader(ctx).LoadFromURI(parsedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load spec from URL %s: %w", specURL, err)
	}
	return doc, nil
}

// LoadSpecFromString loads an OpenAPI spec from a string
func LoadSpecFromString(spec string) (*openapi3.T, error) {
	return loadSpecFromData(context.Background(), []byte(spec))
}

func loadSpecFromData(ctx context.Context, data []byte) (*openapi3.T, error) {
	doc, err := newLoader(ctx).LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load spec from string: %w", err)
	}
	return doc, nil
}

// OperationCount returns the number of operations declared in the document.
func OperationCount(doc *openapi3.T) int {
	if doc == nil || doc.Paths == nil {
		return 0
	}
	n := 0
	for _, item := range doc.Paths.Map() {
		n += len(item.Operations())
	}
	return n
}
