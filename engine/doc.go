// Package engine implements the message state machine: the context
// worker's dispatch loop, the pending-request table, the submit/reply verbs
// and the refcounted message handle that drives auto-reply on drop.
package engine
