// Package openapi turns the request body of an OpenAPI 3 operation into a
// form schema.
//
// Properties map onto field types by type and format. Vendor extensions
// refine the result:
//
//	x-formkit-widget:  textarea | radio | password | ... (any field type)
//	x-formkit-section: section name; fields sharing it are grouped
//	x-formkit-order:   number; lower comes first, unordered fields follow by name
//	x-formkit-placeholder, x-formkit-accept: copied onto the field
package openapi
