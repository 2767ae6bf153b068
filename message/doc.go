// Package message implements the per-message state machine: flags, routing,
// buffer ownership, the debug timing overlay, and the broadcast-only filter
// field. It is deliberately a single struct rather than a type hierarchy.
package message
