package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord is one captured record. Attrs holds every attribute, including
// those added through With, keyed "group.key" inside groups.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// Has reports whether the record carries key=value
func (r LogRecord) Has(key string, value any) bool {
	v, ok := r.Attrs[key]
	return ok && v == value
}

type recordSink struct {
	mu      sync.Mutex
	records []LogRecord
}

// BufferedSlogHandler keeps every record in memory and echoes it to t.Log.
// Loggers derived through With or WithGroup share one buffer.
type BufferedSlogHandler struct {
	sink   *recordSink
	attrs  map[string]any
	prefix string
	t      *testing.T
}

func NewBufferedSlogHandler(t *testing.T) *BufferedSlogHandler {
	return &BufferedSlogHandler{sink: &recordSink{}, attrs: map[string]any{}, t: t}
}

// NewTestLogger returns a logger recording into the returned handler
func NewTestLogger(t *testing.T) (*slog.Logger, *BufferedSlogHandler) {
	handler := NewBufferedSlogHandler(t)
	return slog.New(handler), handler
}

func (h *BufferedSlogHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *BufferedSlogHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for k, v := range h.attrs {
		attrs[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[h.prefix+a.Key] = a.Value.Resolve().Any()
		return true
	})

	h.sink.mu.Lock()
	h.sink.records = append(h.sink.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	h.sink.mu.Unlock()

	if h.t != nil {
		h.t.Logf("%s %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

func (h *BufferedSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := h.derive(h.prefix)
	for _, a := range attrs {
		derived.attrs[h.prefix+a.Key] = a.Value.Resolve().Any()
	}
	return derived
}

func (h *BufferedSlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.derive(h.prefix + name + ".")
}

func (h *BufferedSlogHandler) derive(prefix string) *BufferedSlogHandler {
	attrs := make(map[string]any, len(h.attrs))
	for k, v := range h.attrs {
		attrs[k] = v
	}
	return &BufferedSlogHandler{sink: h.sink, attrs: attrs, prefix: prefix, t: h.t}
}

// GetRecords returns a copy of the captured records in logging order
func (h *BufferedSlogHandler) GetRecords() []LogRecord {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	return append([]LogRecord(nil), h.sink.records...)
}

// Find returns the records at level whose message contains message
func (h *BufferedSlogHandler) Find(level slog.Level, message string) []LogRecord {
	var found []LogRecord
	for _, r := range h.GetRecords() {
		if r.Level == level && strings.Contains(r.Message, message) {
			found = append(found, r)
		}
	}
	return found
}

func (h *BufferedSlogHandler) GetRecordsByLevel(level slog.Level) []LogRecord {
	return h.Find(level, "")
}

func (h *BufferedSlogHandler) ContainsMessage(message string) bool {
	for _, r := range h.GetRecords() {
		if strings.Contains(r.Message, message) {
			return true
		}
	}
	return false
}

// ContainsAttr reports whether any record carries key=value. Integer
// attributes are int64, as slog stores them.
func (h *BufferedSlogHandler) ContainsAttr(key string, value any) bool {
	for _, r := range h.GetRecords() {
		if r.Has(key, value) {
			return true
		}
	}
	return false
}

func (h *BufferedSlogHandler) Count() int {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	return len(h.sink.records)
}

// AssertLogContains fails t unless a record at level contains message
func AssertLogContains(t *testing.T, handler *BufferedSlogHandler, level slog.Level, message string) {
	t.Helper()
	if len(handler.Find(level, message)) > 0 {
		return
	}
	t.Errorf("no %s record containing %q", level, message)
	for _, r := range handler.GetRecordsByLevel(level) {
		t.Logf("  %s", r.Message)
	}
}

// AssertNoErrors fails t for every ERROR record
func AssertNoErrors(t *testing.T, handler *BufferedSlogHandler) {
	t.Helper()
	for _, r := range handler.GetRecordsByLevel(slog.LevelError) {
		t.Errorf("unexpected error log %q: %v", r.Message, r.Attrs)
	}
}
