package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// TestJSONLogger_Levels verifies level filtering
func TestJSONLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines, got %d: %q", len(lines), buf.String())
	}

	var entry LogEntry
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Failed to unmarshal log entry: %v", err)
	}
	if entry.Level != "WARN" {
		t.Errorf("Expected WARN level, got %s", entry.Level)
	}
	if entry.Message != "warn message" {
		t.Errorf("Expected warn message, got %s", entry.Message)
	}
}

// TestJSONLogger_Fields verifies structured fields appear in output
func TestJSONLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("pass started", Component("analysis"), Network(3))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal log entry: %v", err)
	}
	if entry.Fields["component"] != "analysis" {
		t.Errorf("Expected component=analysis, got %v", entry.Fields["component"])
	}
	if entry.Fields["network"] != float64(3) {
		t.Errorf("Expected network=3, got %v", entry.Fields["network"])
	}
}

// TestJSONLogger_With verifies child loggers keep pre-set fields
func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Stage("decode"))
	child.Info("record decoded", Network(7))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal log entry: %v", err)
	}
	if entry.Fields["stage"] != "decode" {
		t.Errorf("Expected stage=decode, got %v", entry.Fields["stage"])
	}
	if entry.Fields["network"] != float64(7) {
		t.Errorf("Expected network=7, got %v", entry.Fields["network"])
	}
}

// TestParseLevel covers the accepted spellings
func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != DebugLevel {
		t.Error("debug should parse to DebugLevel")
	}
	if ParseLevel("WARNING") != WarnLevel {
		t.Error("WARNING should parse to WarnLevel")
	}
	if ParseLevel("bogus") != InfoLevel {
		t.Error("unknown level should default to InfoLevel")
	}
}
