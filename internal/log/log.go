package log

import (
	"context"
	"log/slog"
	"sync"
)

// maxRecords is how many records a RecentHandler retains.
const maxRecords = 20

// RecentHandler is a slog.Handler that keeps the most recent records so they
// can be shown after a command fails. Handlers derived through WithAttrs and
// WithGroup share the same records.
type RecentHandler struct {
	slog.Handler
	recent *recent
}

type recent struct {
	mu   sync.Mutex
	logs []slog.Record
}

// NewRecentHandler creates a new RecentHandler that forwards to handler.
func NewRecentHandler(handler slog.Handler) *RecentHandler {
	return &RecentHandler{
		Handler: handler,
		recent:  &recent{},
	}
}

// Enabled retains every level; filtering applies to the wrapped handler only.
func (h *RecentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

// Handle stores the record and passes it on if the wrapped handler wants it.
func (h *RecentHandler) Handle(ctx context.Context, r slog.Record) error {
	h.recent.mu.Lock()
	h.recent.logs = append(h.recent.logs, r.Clone())
	if len(h.recent.logs) > maxRecords {
		h.recent.logs = h.recent.logs[1:]
	}
	h.recent.mu.Unlock()

	if !h.Handler.Enabled(ctx, r.Level) {
		return nil
	}
	return h.Handler.Handle(ctx, r)
}

func (h *RecentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RecentHandler{Handler: h.Handler.WithAttrs(attrs), recent: h.recent}
}

func (h *RecentHandler) WithGroup(name string) slog.Handler {
	return &RecentHandler{Handler: h.Handler.WithGroup(name), recent: h.recent}
}

// Logs returns the stored log messages.
func (h *RecentHandler) Logs() []slog.Record {
	h.recent.mu.Lock()
	defer h.recent.mu.Unlock()
	logs := make([]slog.Record, len(h.recent.logs))
	copy(logs, h.recent.logs)
	return logs
}

var defaultHandler *RecentHandler

// Init initializes the default logger and returns it.
func Init(handler slog.Handler) *slog.Logger {
	defaultHandler = NewRecentHandler(handler)
	logger := slog.New(defaultHandler)
	slog.SetDefault(logger)
	return logger
}

// Logs returns the stored log messages from the default logger.
func Logs() []slog.Record {
	if defaultHandler == nil {
		return nil
	}
	return defaultHandler.Logs()
}
