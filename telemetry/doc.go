// Package telemetry supplies the engine's Logger collaborator and a
// Prometheus metrics surface for the message bus: pending-table depth,
// timeouts, auto-replies and broadcast fan-out size. Neither type is
// required by engine itself — they plug in through the small interfaces
// engine.Context exposes (WithLogger and the inbound handler's own calls
// into Metrics).
package telemetry
