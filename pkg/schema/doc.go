// Package schema defines the declarative field configuration consumed by the
// form engine. A Schema is either a flat, ordered list of FieldConfig values or
// an ordered list of named sections, each holding its own ordered fields.
// Field names are unique across the whole schema regardless of shape; New and
// Validate reject duplicates instead of letting later fields silently shadow
// earlier ones. Unknown field types are accepted here and degrade at render
// time, so a single malformed entry never prevents the rest of a form from
// being built.
//
// Schemas can be authored in Go, or parsed from JSON/YAML documents with
// Parse and Load.
package schema
