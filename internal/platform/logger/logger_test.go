package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewProductionLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter("production", &buf)

	log.Debug("hidden")
	log.Info("station linked", "station_id", "node_1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if entry["station_id"] != "node_1" {
		t.Errorf("station_id = %v", entry["station_id"])
	}
}

func TestNewDevelopmentLoggerIncludesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter("development", &buf)

	log.Debug("tick", "remaining", 10)

	if !strings.Contains(buf.String(), "remaining=10") {
		t.Fatalf("expected text debug line, got %q", buf.String())
	}
}
