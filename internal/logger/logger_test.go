package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{"debug", "DEBUG", slog.LevelDebug},
		{"info lowercase", "info", slog.LevelInfo},
		{"warning", "WARNING", slog.LevelWarn},
		{"warn alias", "warn", slog.LevelWarn},
		{"error", "ERROR", slog.LevelError},
		{"critical", "CRITICAL", LevelCritical},
		{"empty defaults to warning", "", slog.LevelWarn},
		{"unrecognized defaults to warning", "verbose", slog.LevelWarn},
		{"padded", "  info  ", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewLoggerWithFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs.txt")

	log, err := NewLoggerWithFile("info", logPath)
	if err != nil {
		t.Fatalf("NewLoggerWithFile failed: %v", err)
	}

	log.Info("feed scan started", "feeds", 3)
	log.Debug("this should be filtered out")
	log.Critical("cache unreadable")

	if err := log.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "feed scan started") {
		t.Error("Expected info message in log file")
	}

	if strings.Contains(content, "filtered out") {
		t.Error("Debug message should be filtered at info level")
	}

	if !strings.Contains(content, "CRITICAL") {
		t.Error("Expected CRITICAL level name in log file")
	}
}

func TestNewLoggerWithFile_Appends(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs.txt")

	for i := 0; i < 2; i++ {
		log, err := NewLoggerWithFile("info", logPath)
		if err != nil {
			t.Fatalf("NewLoggerWithFile failed: %v", err)
		}

		log.Info("run finished")

		if closeErr := log.Close(); closeErr != nil {
			t.Fatalf("Close failed: %v", closeErr)
		}
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	if got := strings.Count(string(data), "run finished"); got != 2 {
		t.Errorf("Expected 2 log lines across runs, got %d", got)
	}
}

func TestLogger_With(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs.txt")

	log, err := NewLoggerWithFile("debug", logPath)
	if err != nil {
		t.Fatalf("NewLoggerWithFile failed: %v", err)
	}

	child := log.With("feed", "http://example.com/rss")
	child.Debug("parsed")

	if err := log.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	if !strings.Contains(string(data), "feed=http://example.com/rss") {
		t.Error("Expected child logger attribute in output")
	}
}
