// Package textutil provides the string helpers behind rename templates and
// field values.
//
// The primary use cases are:
//   - Splitting and expanding `$name` / `${name}` templates ($$ is a literal $)
//   - Normalizing metadata values before they land in a filename
//   - Case-folding identifiers for tolerant lookups
package textutil
