// Package formkit is the top-level entry point of the form engine. It
// re-exports the handful of types most callers need and wires the schema
// loader, the session and the HTML renderer together.
//
//	def, err := formkit.LoadDefinition(ctx, "signup.yaml")
//	sess, err := formkit.NewSession(def)
//	html, err := formkit.RenderHTML(ctx, sess, formkit.RenderOptions{Action: "/signup"})
package formkit

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formkit/pkg/form"
	"github.com/goliatone/go-formkit/pkg/openapi"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/renderers/html"
	"github.com/goliatone/go-formkit/pkg/schema"
)

// Definition is a parsed form document.
type Definition = schema.Definition

// Session is the runtime state of one form instance.
type Session = form.Session

// SessionOption configures a Session.
type SessionOption = form.Option

// RenderOptions describes per-request overrides for renderers.
type RenderOptions = render.RenderOptions

// FieldSubset aliases render.FieldSubset for partial rendering.
type FieldSubset = render.FieldSubset

// NewSession builds a session from a definition.
func NewSession(def Definition, opts ...SessionOption) (*Session, error) {
	return form.FromDefinition(def, opts...)
}

// LoadDefinition reads a form document from a file path or http(s) URL and
// parses it.
func LoadDefinition(ctx context.Context, location string, opts ...LoaderOption) (Definition, error) {
	src, err := schema.SourceFor(location)
	if err != nil {
		return Definition{}, err
	}
	return NewLoader(opts...).LoadDefinition(ctx, src)
}

// RenderHTML draws the session with the built-in HTML renderer.
func RenderHTML(ctx context.Context, sess *Session, opts RenderOptions, rendererOpts ...html.Option) ([]byte, error) {
	if sess == nil {
		return nil, fmt.Errorf("formkit: session is nil")
	}
	r, err := html.New(rendererOpts...)
	if err != nil {
		return nil, err
	}
	return r.Render(ctx, sess.View(), opts)
}

// ImportOpenAPI converts the request body of an OpenAPI operation into a form
// definition.
func ImportOpenAPI(ctx context.Context, document []byte, operationID string, opts ...openapi.Option) (Definition, error) {
	return openapi.ImportDefinition(ctx, document, operationID, opts...)
}
