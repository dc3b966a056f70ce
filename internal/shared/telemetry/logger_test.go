package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"
)

func TestInfoWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	Info("resume.created", map[string]any{"resume_id": "r1", "err": errors.New("boom")})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json log line, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "info" {
		t.Fatalf("expected info level, got %v", entry["level"])
	}
	if entry["msg"] != "resume.created" {
		t.Fatalf("unexpected msg %v", entry["msg"])
	}
	if entry["resume_id"] != "r1" {
		t.Fatalf("expected resume_id field, got %v", entry["resume_id"])
	}
	if entry["err"] != "boom" {
		t.Fatalf("expected error rendered as string, got %v", entry["err"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts field")
	}
}

func TestWarnAndErrorLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	Warn("w", nil)
	Error("e", nil)

	dec := json.NewDecoder(&buf)
	var levels []string
	for dec.More() {
		var entry map[string]any
		if err := dec.Decode(&entry); err != nil {
			t.Fatalf("decode: %v", err)
		}
		levels = append(levels, entry["level"].(string))
	}
	if len(levels) != 2 || levels[0] != "warn" || levels[1] != "error" {
		t.Fatalf("unexpected levels %v", levels)
	}
}
