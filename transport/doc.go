// Package transport ships the concrete Session/Endpoint/Object
// implementations the engine package needs to be exercised end-to-end:
// MemorySession for in-process delivery (tests and same-process bus
// topologies) and AMQPSession for process-to-process delivery over
// RabbitMQ. Object owns the per-objectId broadcast subscription table.
package transport
