package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/plugincheck/plugincheck/domain/entities"
)

// LogEntry is one call captured by RecordingLogger.
type LogEntry struct {
	Level   string
	Message string
	KV      []any
}

// RecordingLogger is a ports.Logger that keeps every call.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (l *RecordingLogger) record(level, msg string, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: msg, KV: kv})
}

func (l *RecordingLogger) Debug(msg string, kv ...any)   { l.record("debug", msg, kv) }
func (l *RecordingLogger) Info(msg string, kv ...any)    { l.record("info", msg, kv) }
func (l *RecordingLogger) Warning(msg string, kv ...any) { l.record("warning", msg, kv) }

// Messages returns the messages logged at level, in call order.
func (l *RecordingLogger) Messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// MockSpecParser is a testify mock of ports.SpecParser.
type MockSpecParser struct {
	mock.Mock
}

func (m *MockSpecParser) Validate(ctx context.Context) entities.SpecValidationResult {
	args := m.Called(ctx)
	return args.Get(0).(entities.SpecValidationResult)
}

func (m *MockSpecParser) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	ops, _ := args.Get(0).([]string)
	return ops, args.Error(1)
}
