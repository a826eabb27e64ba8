// Package fields exposes the metadata of a score as a flat, named catalog.
//
// Every Field carries a getter and, unless it is read-only, a setter bound to
// a score.Score. The catalog is a static table built once; a Registry binds it
// to one score for the duration of a batch iteration.
//
// Combined fields (title, subtitle, composer, lyricist) resolve to the first
// non-empty value of an ordered list of concrete fields and write through to
// all writable ones. Read-only fields describe the file on disk and the
// program that wrote it.
package fields
