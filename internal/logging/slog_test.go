package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func newBufLogger() (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))
	return NewSlogLogger(l), &buf
}

func TestSlogLogger_InfoWritesJSON(t *testing.T) {
	log, buf := newBufLogger()

	log.Info(context.Background(), "hello", "k", "v")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec["msg"] != "hello" || rec["k"] != "v" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if rec["level"] != "INFO" {
		t.Fatalf("unexpected level: %v", rec["level"])
	}
}

func TestSlogLogger_WithAddsContext(t *testing.T) {
	log, buf := newBufLogger()

	child := log.With("module", "vault")
	child.Error(context.Background(), "failed")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec["module"] != "vault" {
		t.Fatalf("expected module attr from With, got %v", rec)
	}
}
