// Package xmldoc wraps a parsed score XML tree.
//
// A Document owns exactly one element tree for its lifetime. Serialization
// always emits the same XML declaration followed by the root element written
// back exactly as parsed: whitespace between elements is preserved and nothing
// is re-indented, so an untouched tree round-trips byte for byte.
//
// Path queries use the etree path syntax ("Score/Staff", ".//metaTag[@name='x']").
// The Safe and One variants turn empty or ambiguous results into
// ErrPathNotFound and ErrAmbiguousPath.
package xmldoc
