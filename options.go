package ipcbus

import (
	"log/slog"

	"github.com/ipcbus/ipcbus-go/message"
	"github.com/ipcbus/ipcbus-go/telemetry"
)

// clientConfig collects what NewClient/DialAMQPClient need before the
// engine.Context and telemetry collaborators are built.
type clientConfig struct {
	slogger *slog.Logger
	metrics *telemetry.Metrics
	onError func(*message.Message, error)
}

// ClientOption configures a Client at construction time.
type ClientOption func(*clientConfig)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(cfg *clientConfig) { cfg.slogger = l }
}

// WithMetrics attaches a telemetry.Metrics instance. Client reports only
// broadcast fan-out to it, for objects added with RegisterObject; it does
// not record pending-table depth, timeouts or auto-replies. Without this
// option metrics are not collected.
func WithMetrics(m *telemetry.Metrics) ClientOption {
	return func(cfg *clientConfig) { cfg.metrics = m }
}

// WithErrorHandler registers the async error callback invoked when a
// fire-and-forget Send/Reply/Broadcast fails after being accepted.
func WithErrorHandler(h func(*message.Message, error)) ClientOption {
	return func(cfg *clientConfig) { cfg.onError = h }
}
