// Package mount wraps the Windows "net use" command: mapping and dropping
// network drives, listing current connections, and tracking which drive
// letters are in use.
//
// # Logging Verbosity Convention
//
// This package follows Kubernetes logging conventions for verbosity levels:
//
//   - V(0): Always visible - command start failures
//   - V(2): Production default - operation outcomes
//     Examples: "Mapped drive", "Dropped drive"
//   - V(4): Debug level - intermediate steps, command lines (passwords redacted)
//     Examples: "Executing net use K: \\192.168.1.10\media /user:bob [REDACTED]"
//   - V(5): Trace level - raw command output, parsing details
//
// V(3) is avoided in favor of V(2) (if actionable) or V(4) (if diagnostic).
package mount
