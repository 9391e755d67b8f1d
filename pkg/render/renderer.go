package render

import (
	"context"
)

// Renderer converts a form snapshot into a byte representation.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View, options RenderOptions) ([]byte, error)
}
