// Package batch drives the per-file processing loop shared by every mscx
// command.
//
// A Runner walks an ordered file list one file at a time. For each file it
// opens the score, optionally writes a backup, snapshots the fields, applies
// the caller's Handler and then performs the configured follow-up steps:
// field and document diffs, export, the per-file log line, save (with an
// optional render pass) and rename. Every score is closed before the next
// file starts so no scratch directory outlives its iteration.
//
// In error-tolerant mode a failing file is reported and the loop continues;
// otherwise the first error stops the batch.
package batch
