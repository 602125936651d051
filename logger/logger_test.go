package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "default config",
			config: Config{Level: "info", OutputPaths: []string{"stdout"}},
		},
		{
			name:   "debug level",
			config: Config{Level: "debug", OutputPaths: []string{"stdout"}},
		},
		{
			name:   "invalid level falls back to info",
			config: Config{Level: "chatty", OutputPaths: []string{"stdout"}},
		},
		{
			name:   "empty output paths",
			config: Config{Level: "info"},
		},
		{
			name:   "multiple output paths",
			config: Config{Level: "warn", OutputPaths: []string{"stdout", "stderr"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger without error")
			}
		})
	}
}

func TestDefaultLoggerWritesKeysAndValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &DefaultLogger{logger: zap.New(core).Sugar()}

	l.DebugW("budgeted call", "scope", "scope-1", "assigned_timeout", "1s")
	l.InfoW("budgeted fetch finished", "completed", 3)
	l.WarnW("saving fetch report failed", "error", "disk full")
	l.ErrorW("boom")

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel || entries[0].Message != "budgeted call" {
		t.Fatalf("entry 0 = %v %q", entries[0].Level, entries[0].Message)
	}
	fields := entries[0].ContextMap()
	if fields["scope"] != "scope-1" {
		t.Fatalf("scope field = %v, want scope-1", fields["scope"])
	}
	if entries[2].ContextMap()["error"] != "disk full" {
		t.Fatalf("error field = %v", entries[2].ContextMap()["error"])
	}
}

func TestNewNopSatisfiesLogger(t *testing.T) {
	// The nop logger is what every package falls back to when no
	// logger is injected; it must satisfy the full interface and
	// never panic.
	var l Logger = NewNop()

	l.DebugW("test debug", "key", "value")
	l.InfoW("test message", "key", "value")
	l.WarnW("test warning", "key", "value")
	l.ErrorW("test error", "key", "value")

	if err := l.Sync(); err != nil {
		t.Errorf("Sync() should not error on nop logger: %v", err)
	}
}
