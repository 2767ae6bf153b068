package telemetry

import (
	"log/slog"
	"sync"

	"github.com/ipcbus/ipcbus-go/message"
)

// Logger wraps a *slog.Logger to satisfy engine.Logger, adding a
// per-endpoint toggle for the log-tunnel (SendLog/BroadcastLog) path: a
// message only gets tunneled when it carries FlagEnableLog and its
// endpoint hasn't been explicitly muted.
type Logger struct {
	base *slog.Logger

	mu       sync.RWMutex
	disabled map[string]bool
}

// NewLogger wraps base, or slog.Default() if base is nil.
func NewLogger(base *slog.Logger) *Logger {
	if base == nil {
		base = slog.Default()
	}
	return &Logger{base: base, disabled: make(map[string]bool)}
}

func (l *Logger) Debug(msg string, args ...any) { l.base.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.base.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.base.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.base.Error(msg, args...) }

// SetEndpointLogEnabled mutes or unmutes the log tunnel for a named
// endpoint. Endpoints default to enabled.
func (l *Logger) SetEndpointLogEnabled(endpointName string, enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if enabled {
		delete(l.disabled, endpointName)
	} else {
		l.disabled[endpointName] = true
	}
}

// CheckLogEnabled reports whether m should be mirrored down the log
// tunnel for endpointName: the message must carry FlagEnableLog and the
// endpoint must not have been muted.
func (l *Logger) CheckLogEnabled(m *message.Message, endpointName string) bool {
	if m == nil || !m.Flag.Any(message.FlagEnableLog) {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return !l.disabled[endpointName]
}
