package formhttp

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/form"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/renderers/html"
)

// DefaultMaxUploadBytes bounds multipart parsing when WithMaxUploadBytes is
// not set.
const DefaultMaxUploadBytes int64 = 10 << 20

// Option configures a Handler.
type Option func(*config)

type config struct {
	basePath       string
	store          *Store
	ttl            time.Duration
	renderer       *html.Renderer
	submit         form.SubmitFunc
	sessionOpts    []form.Option
	renderOpts     render.RenderOptions
	maxUploadBytes int64
	failureMessage string
	logger         *zap.Logger
}

func defaultConfig() config {
	return config{
		maxUploadBytes: DefaultMaxUploadBytes,
		failureMessage: "The form could not be submitted. Please try again.",
		logger:         zap.NewNop(),
	}
}

// WithBasePath sets the prefix the handler is mounted under. It is used for
// redirects and form actions.
func WithBasePath(path string) Option {
	return func(c *config) {
		c.basePath = strings.TrimRight(strings.TrimSpace(path), "/")
	}
}

// WithStore shares a session store between handlers.
func WithStore(store *Store) Option {
	return func(c *config) {
		if store != nil {
			c.store = store
		}
	}
}

// WithSessionTTL sets the idle lifetime of sessions in the default store.
func WithSessionTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.ttl = ttl
	}
}

// WithRenderer replaces the default HTML renderer.
func WithRenderer(r *html.Renderer) Option {
	return func(c *config) {
		if r != nil {
			c.renderer = r
		}
	}
}

// WithSubmitFunc sets the handler run for valid submissions. Without one,
// valid submissions simply mark the session submitted.
func WithSubmitFunc(fn form.SubmitFunc) Option {
	return func(c *config) {
		c.submit = fn
	}
}

// WithSessionOptions appends options applied to every new session.
func WithSessionOptions(opts ...form.Option) Option {
	return func(c *config) {
		c.sessionOpts = append(c.sessionOpts, opts...)
	}
}

// WithRenderOptions sets base render options. Action is always derived from
// the session route.
func WithRenderOptions(opts render.RenderOptions) Option {
	return func(c *config) {
		c.renderOpts = opts
	}
}

// WithMaxUploadBytes bounds the memory used to parse multipart submissions.
func WithMaxUploadBytes(n int64) Option {
	return func(c *config) {
		if n > 0 {
			c.maxUploadBytes = n
		}
	}
}

// WithFailureMessage sets the form-level message shown when the submit
// handler fails without field errors.
func WithFailureMessage(msg string) Option {
	return func(c *config) {
		if strings.TrimSpace(msg) != "" {
			c.failureMessage = msg
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
