// Package component defines the lifecycle interface shared by the parts of a
// jig process and a Registry that starts them in order and stops them in
// reverse.
//
//   - Component: Name/Start/Stop/Health
//   - Describable: one-line summary for startup output
package component
