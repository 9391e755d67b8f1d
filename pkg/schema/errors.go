package schema

import "errors"

var (
	ErrFieldNameRequired = errors.New("schema: field name is required")
	ErrDuplicateField    = errors.New("schema: duplicate field name")
	ErrDuplicateSection  = errors.New("schema: duplicate section name")
	ErrSectionNameEmpty  = errors.New("schema: section name is required")
	ErrOptionsRequired   = errors.New("schema: options are required")
	ErrInvalidPattern    = errors.New("schema: invalid pattern")
	ErrInvalidBounds     = errors.New("schema: invalid bounds")
	ErrMixedShape        = errors.New("schema: fields and sections are mutually exclusive")
)
