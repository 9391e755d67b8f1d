package widgets

import (
	"mime"
	"path/filepath"
	"strings"

	ft "github.com/h2non/filetype"
	"github.com/h2non/filetype/types"

	"github.com/goliatone/go-formkit/pkg/schema"
)

// SniffFile builds a File from an upload. The content type comes from the
// magic bytes when recognised, then from the extension, then from declared.
func SniffFile(name string, content []byte, declared string) File {
	file := File{Name: filepath.Base(name), Size: int64(len(content)), Content: content}

	var kind types.Type
	if len(content) > 0 {
		if matched, err := ft.Match(content); err == nil {
			kind = matched
		}
	}
	switch {
	case kind != ft.Unknown && kind.MIME.Value != "":
		file.ContentType = kind.MIME.Value
	case mime.TypeByExtension(filepath.Ext(name)) != "":
		file.ContentType = strings.SplitN(mime.TypeByExtension(filepath.Ext(name)), ";", 2)[0]
	default:
		file.ContentType = strings.TrimSpace(declared)
	}
	return file
}

// Accepts reports whether file satisfies the field's accept filter. Tokens
// are MIME types (`image/png`), wildcards (`image/*`) or extensions (`.pdf`).
// An empty filter accepts everything.
func Accepts(field schema.FieldConfig, file File) bool {
	tokens := field.AcceptList()
	if len(tokens) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(file.Name))
	contentType := strings.ToLower(file.ContentType)
	for _, token := range tokens {
		switch {
		case strings.HasPrefix(token, "."):
			if ext == token {
				return true
			}
		case strings.HasSuffix(token, "/*"):
			if contentType != "" && strings.HasPrefix(contentType, strings.TrimSuffix(token, "*")) {
				return true
			}
		default:
			if contentType == token {
				return true
			}
		}
	}
	return false
}
