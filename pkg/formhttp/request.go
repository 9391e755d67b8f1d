package formhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/goliatone/go-formkit/pkg/form"
	"github.com/goliatone/go-formkit/pkg/schema"
	"github.com/goliatone/go-formkit/pkg/widgets"
)

// blurValueKey is the form key (or JSON property) carrying the new value of a
// blurred field.
const blurValueKey = "value"

func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

func parseBody(r *http.Request, maxBytes int64) error {
	if mediaType(r) == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return fmt.Errorf("parse multipart form: %w", err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}
	return nil
}

// decodeFieldValue reads the raw value of a blur request. JSON bodies carry
// {"value": ...}; form bodies carry one or more "value" entries.
func decodeFieldValue(r *http.Request, field schema.FieldConfig, maxBytes int64) (any, error) {
	if mediaType(r) == "application/json" {
		var payload struct {
			Value any `json:"value"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBytes)).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return payload.Value, nil
	}

	if err := parseBody(r, maxBytes); err != nil {
		return nil, err
	}
	if field.Type == schema.FieldTypeFile {
		files, _, err := readFiles(r, blurValueKey, field)
		return files, err
	}
	return formValue(field, r.PostForm[blurValueKey]), nil
}

func formValue(field schema.FieldConfig, values []string) any {
	if field.MultiValued() {
		return values
	}
	if len(values) == 0 {
		return nil
	}
	return values[0]
}

// applySubmission feeds a parsed form into the session. Fields missing from
// the body keep their value, except checkboxes and files whose absence means
// "none". It returns the messages of inputs the session refused.
func applySubmission(r *http.Request, sess *form.Session, maxBytes int64) (map[string][]string, error) {
	if err := parseBody(r, maxBytes); err != nil {
		return nil, err
	}

	rejected := make(map[string][]string)
	for _, b := range sess.Fields() {
		field := b.Config()
		if field.Disabled {
			continue
		}

		var raw any
		switch field.Type {
		case schema.FieldTypeFile:
			files, refused, err := readFiles(r, field.Name, field)
			if err != nil {
				return nil, err
			}
			if len(refused) > 0 {
				rejected[field.Name] = refused
				continue
			}
			raw = files
		case schema.FieldTypeCheckbox:
			raw = formValue(field, r.PostForm[field.Name])
		default:
			values, present := r.PostForm[field.Name]
			if !present {
				continue
			}
			raw = formValue(field, values)
		}

		if err := b.OnChange(raw); err != nil {
			if errors.Is(err, form.ErrFieldDisabled) {
				continue
			}
			rejected[field.Name] = []string{b.Error()}
		}
	}
	if len(rejected) == 0 {
		return nil, nil
	}
	return rejected, nil
}

// readFiles sniffs every upload under key. Files outside the field's accept
// filter are reported, not returned.
func readFiles(r *http.Request, key string, field schema.FieldConfig) ([]widgets.File, []string, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	headers := r.MultipartForm.File[key]
	if !field.Multiple && len(headers) > 1 {
		headers = headers[:1]
	}

	var (
		files   []widgets.File
		refused []string
	)
	for _, header := range headers {
		content, err := readUpload(header)
		if err != nil {
			return nil, nil, fmt.Errorf("read upload %q: %w", header.Filename, err)
		}
		file := widgets.SniffFile(header.Filename, content, header.Header.Get("Content-Type"))
		if !widgets.Accepts(field, file) {
			refused = append(refused, fmt.Sprintf("%s is not an accepted file type", file.Name))
			continue
		}
		files = append(files, file)
	}
	return files, refused, nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
