// Package journal keeps a SQLite history of rename results so moved scores
// can be traced back to their original location.
//
// The store follows the busy-retry discipline of a shared WAL database:
// writes retry with exponential backoff while another process holds the
// lock. Schema changes bump schemaVersion; an older database is rejected
// with ErrSchemaMismatch instead of being migrated.
package journal
