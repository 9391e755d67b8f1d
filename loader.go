package formkit

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-formkit/internal/loader"
	"github.com/goliatone/go-formkit/pkg/schema"
)

// Loader resolves sources into form documents.
type Loader interface {
	Load(ctx context.Context, src schema.Source) (schema.Document, error)
	LoadDefinition(ctx context.Context, src schema.Source) (schema.Definition, error)
}

// LoaderOption configures NewLoader.
type LoaderOption func(*loader.Options)

// WithFileSystem serves schema.SourceFromFS sources from fsys.
func WithFileSystem(fsys fs.FS) LoaderOption {
	return func(o *loader.Options) {
		o.FileSystem = fsys
	}
}

// WithHTTPClient enables URL sources through client.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(o *loader.Options) {
		o.HTTPClient = client
	}
}

// WithHTTP enables URL sources with a default client.
func WithHTTP(enabled bool) LoaderOption {
	return func(o *loader.Options) {
		o.AllowHTTP = enabled
	}
}

// WithRequestTimeout bounds remote fetches.
func WithRequestTimeout(timeout time.Duration) LoaderOption {
	return func(o *loader.Options) {
		o.RequestTimeout = timeout
	}
}

// NewLoader constructs a loader while keeping the concrete type internal.
// URL sources are enabled by default with a 10 second timeout.
func NewLoader(opts ...LoaderOption) Loader {
	cfg := loader.Options{AllowHTTP: true, RequestTimeout: 10 * time.Second}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return loader.New(cfg)
}
