package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition is a parsed form document: the schema plus the form-level
// presentation settings that travel with it.
type Definition struct {
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	SubmitLabel string `json:"submitLabel,omitempty" yaml:"submitLabel,omitempty"`
	ExpandAll   bool   `json:"expandAll,omitempty" yaml:"expandAll,omitempty"`
	Schema      Schema `json:"-" yaml:"-"`
}

type documentFile struct {
	Title       string        `json:"title" yaml:"title"`
	SubmitLabel string        `json:"submitLabel" yaml:"submitLabel"`
	ExpandAll   bool          `json:"expandAll" yaml:"expandAll"`
	Fields      []FieldConfig `json:"fields" yaml:"fields"`
	Sections    []Section     `json:"sections" yaml:"sections"`
}

// MarshalYAML flattens the schema into the document layout so Definition
// round-trips through Parse.
func (d Definition) MarshalYAML() (any, error) {
	return documentFile{
		Title:       d.Title,
		SubmitLabel: d.SubmitLabel,
		ExpandAll:   d.ExpandAll,
		Fields:      d.Schema.Fields,
		Sections:    d.Schema.Sections,
	}, nil
}

// Parse decodes a JSON or YAML form document and validates its schema.
func Parse(data []byte) (Definition, error) {
	return parseDocument(data, "document")
}

// LoadFS reads and parses the named document from fsys.
func LoadFS(fsys fs.FS, name string) (Definition, error) {
	if fsys == nil {
		return Definition{}, errors.New("schema: fs is nil")
	}
	if !isDocumentFile(name) {
		return Definition{}, fmt.Errorf("schema: %s is not a .json, .yaml or .yml file", name)
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Definition{}, fmt.Errorf("schema: read %s: %w", name, err)
	}
	return parseDocument(data, name)
}

func parseDocument(data []byte, source string) (Definition, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Definition{}, fmt.Errorf("schema: %s is empty", source)
	}

	var doc documentFile
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = documentFile{}
		if yerr := yaml.Unmarshal(data, &doc); yerr != nil {
			return Definition{}, fmt.Errorf("schema: parse %s: invalid JSON or YAML: %w", source, yerr)
		}
	}

	s, err := New(Schema{Fields: doc.Fields, Sections: doc.Sections})
	if err != nil {
		return Definition{}, fmt.Errorf("schema: %s: %w", source, err)
	}
	return Definition{
		Title:       doc.Title,
		SubmitLabel: doc.SubmitLabel,
		ExpandAll:   doc.ExpandAll,
		Schema:      s,
	}, nil
}

func isDocumentFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Document wraps raw document bytes and their origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument copies raw and pairs it with src.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("schema: raw document is empty")
	}
	return Document{source: src, raw: append([]byte(nil), raw...)}, nil
}

// Source returns the document origin.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the origin identifier.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Definition parses the payload.
func (d Document) Definition() (Definition, error) {
	return parseDocument(d.raw, d.Location())
}
