// Package score opens, edits and saves MuseScore documents.
//
// A Score wraps either a plain .mscx file or the primary document of a
// packaged .mscz bundle. The format version read from the root element picks
// where the style subtree lives: inline under Score for older generations and
// unpackaged files, or in the bundle's separate .mss member for packaged
// version 4 documents. The choice is made once in Open and hidden behind the
// Style view, so callers never branch on the version themselves.
//
// Malformed XML does not make Open fail. The parse error is kept in
// Score.Errors so filename derived data stays available; everything that
// needs the tree reports ErrNoDocument instead.
//
// Save skips the write entirely when an in-place save would reproduce the
// bytes captured at Open. Close removes the scratch directory of packaged
// documents and must be deferred by every caller of Open.
package score
