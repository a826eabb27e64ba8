// Package rename moves scores to paths built from their metadata.
//
// An Engine normalizes every field value (optional alphanumeric filter, ASCII
// transliteration and whitespace removal, then trimming and replacing path
// separators), expands the template and resolves collisions: the candidates
// name.ext, name1.ext, name2.ext... are tried in order and the first free one
// wins, unless an occupied candidate already holds a file with the same SHA-1
// digest, in which case the source counts as already renamed and nothing is
// written. Moves copy and then delete so they work across volumes.
//
// The check-then-move sequence is guarded by an optional Locker so several
// mscx processes can share an output directory.
package rename
