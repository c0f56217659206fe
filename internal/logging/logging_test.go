package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		level      string
		logLevel   slog.Level // level to log at
		wantOutput bool
		wantJSON   bool
	}{
		{"text format info level", "text", "info", slog.LevelInfo, true, false},
		{"json format info level", "json", "info", slog.LevelInfo, true, true},
		{"debug level logs debug", "text", "debug", slog.LevelDebug, true, false},
		{"info level filters debug", "text", "info", slog.LevelDebug, false, false},
		{"warn level filters info", "text", "warn", slog.LevelInfo, false, false},
		{"error level filters warn", "json", "error", slog.LevelWarn, false, false},
		{"unknown format defaults to text", "banana", "info", slog.LevelInfo, true, false},
		{"unknown level defaults to info", "text", "banana", slog.LevelDebug, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New("druggraph-test", tt.format, tt.level, &buf)
			logger.Log(t.Context(), tt.logLevel, "expanded", "drug", "DB00001")

			output := buf.String()
			hasOutput := strings.TrimSpace(output) != ""
			if hasOutput != tt.wantOutput {
				t.Fatalf("wantOutput=%v, got output=%q", tt.wantOutput, output)
			}
			if !hasOutput {
				return
			}
			if !strings.Contains(output, "druggraph-test") {
				t.Errorf("output %q missing app attribute", output)
			}
			if tt.wantJSON {
				var m map[string]any
				if err := json.Unmarshal([]byte(output), &m); err != nil {
					t.Fatalf("expected valid JSON, got: %q", output)
				}
				if m["drug"] != "DB00001" {
					t.Errorf("drug attr = %v, want DB00001", m["drug"])
				}
			}
		})
	}
}

func TestNew_NilWriter(t *testing.T) {
	// Should not panic with nil writer (defaults to stderr).
	logger := New("", "text", "info", nil)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tui.log")
	logger, closeFn, err := Open("druggraph-tui", path, "text", "info")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	logger.Info("graph cleared")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "graph cleared") {
		t.Errorf("log file = %q, want message", data)
	}
}

func TestOpen_EmptyPathDiscards(t *testing.T) {
	logger, closeFn, err := Open("druggraph-tui", "", "text", "debug")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	logger.Info("nowhere")
	if err := closeFn(); err != nil {
		t.Errorf("close: %v", err)
	}
}
