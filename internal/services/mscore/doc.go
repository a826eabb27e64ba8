// Package mscore drives the external notation program used to re-save and
// render scores.
//
// The client only knows the argument contract `-o <destination> <source>`;
// everything else about the program is opaque. Each invocation is bounded by
// the configured timeout, and command execution goes through an Executor so
// tests can substitute a stub.
package mscore
