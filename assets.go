package formkit

import (
	"io/fs"

	"github.com/goliatone/go-formkit/pkg/renderers/html"
)

// EmbeddedTemplates exposes the built-in HTML templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// AssetsFS exposes the default stylesheet. Typical mount:
//
//	mux.Handle("/formkit/",
//	  http.StripPrefix("/formkit/",
//	    http.FileServerFS(formkit.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return html.AssetsFS()
}
