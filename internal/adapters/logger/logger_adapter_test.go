package logger_adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"marketplace-service/internal/core/port"
)

type fakePoster struct {
	tags     []string
	messages []map[string]interface{}
}

func (f *fakePoster) Post(tag string, message interface{}) error {
	f.tags = append(f.tags, tag)
	f.messages = append(f.messages, message.(port.Fields))
	return nil
}

func (f *fakePoster) Close() error { return nil }

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSlogAdapter_WritesFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelDebug, IsJSON: true}).
		WithFields(port.Fields{"component": "test"})

	logger.Error("Listing source returned an error", errors.New("boom"), port.Fields{"page": 2})

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not json: %v: %s", err, buf.String())
	}
	if record["msg"] != "Listing source returned an error" || record["component"] != "test" {
		t.Fatalf("unexpected record %v", record)
	}
	if record["page"] != float64(2) || record["err"] != "boom" {
		t.Fatalf("fields or error missing: %v", record)
	}
}

func TestSlogAdapter_SortsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf})

	logger.Info("sorted", port.Fields{"zeta": 1, "alpha": 2, "mid": 3})

	out := buf.String()
	a, m, z := strings.Index(out, "alpha="), strings.Index(out, "mid="), strings.Index(out, "zeta=")
	if a < 0 || !(a < m && m < z) {
		t.Fatalf("fields must be written in key order: %s", out)
	}
}

func TestFluentLoggerAdapter_FiltersByLevelAndMergesFields(t *testing.T) {
	poster := &fakePoster{}
	adapter, err := NewFluentLoggerAdapter(poster, slog.LevelInfo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger := adapter.WithFields(port.Fields{"trace_id": "t-1"})

	logger.Debug("dropped", nil)
	logger.Warn("kept", port.Fields{"page": 3})
	logger.Error("failed", errors.New("boom"), nil)

	if len(poster.tags) != 2 || poster.tags[0] != "warn" || poster.tags[1] != "error" {
		t.Fatalf("unexpected tags %v", poster.tags)
	}
	first := poster.messages[0]
	if first["trace_id"] != "t-1" || first["page"] != 3 || first["message"] != "kept" {
		t.Fatalf("unexpected payload %v", first)
	}
	if poster.messages[1]["error"] != "boom" {
		t.Fatalf("error text missing: %v", poster.messages[1])
	}
}

func TestNewFluentLoggerAdapter_RequiresClient(t *testing.T) {
	if _, err := NewFluentLoggerAdapter(nil, nil); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

func TestMultiloggerAdapter_FansOut(t *testing.T) {
	first, second := &fakePoster{}, &fakePoster{}
	a, _ := NewFluentLoggerAdapter(first, slog.LevelDebug)
	b, _ := NewFluentLoggerAdapter(second, slog.LevelDebug)

	multi, err := NewMultiloggerAdapter(a, nil, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	multi.WithFields(port.Fields{"session_id": "s"}).Info("hello", nil)

	if len(first.messages) != 1 || len(second.messages) != 1 {
		t.Fatalf("each logger must receive the record: %d %d", len(first.messages), len(second.messages))
	}
	if second.messages[0]["session_id"] != "s" {
		t.Fatalf("fields not propagated: %v", second.messages[0])
	}

	if _, err := NewMultiloggerAdapter(nil); err == nil {
		t.Fatalf("expected error without loggers")
	}
}
