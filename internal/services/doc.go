// Package services defines shared utilities for external tool integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper so failures of external
//     tools (the notation renderer) can be classified consistently.
//   - Thin abstractions that make command execution testable (see the
//     mscore subpackage).
package services
