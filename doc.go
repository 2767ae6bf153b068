// Package ipcbus ties the engine, transport, and telemetry packages
// together into a ready-to-use bus participant: dial a RabbitMQ broker or
// link two in-process clients, register the objects this endpoint owns,
// and submit requests through the engine.Context methods a Client embeds
// directly (Invoke, Send, Subscribe, Broadcast, Reply, ...).
package ipcbus
