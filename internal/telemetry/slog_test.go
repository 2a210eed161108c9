package telemetry

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSetupLogger_DoesNotPanicForAllCombinations(t *testing.T) {
	formats := []string{"json", "text", "JSON", "TEXT", "", "unknown"}
	levels := []string{"debug", "info", "warn", "warning", "error", "ERROR", "", "unknown"}

	for _, format := range formats {
		for _, level := range levels {
			t.Run(format+"/"+level, func(t *testing.T) {
				defer func() {
					if r := recover(); r != nil {
						t.Errorf("SetupLogger(%q, %q) panicked: %v", format, level, r)
					}
				}()
				SetupLogger(format, level)
			})
		}
	}
	SetupLogger("text", "error")
}

func TestSetupLogger_JSONFormat_ProducesValidJSON(t *testing.T) {
	var buf bytes.Buffer
	setupLogger(&buf, "json", "info")
	t.Cleanup(func() { SetupLogger("text", "error") })

	buf.Reset()
	slog.Info("test message", "key", "value")

	line := strings.TrimSpace(buf.String())
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, line)
	}
	if obj["msg"] != "test message" {
		t.Errorf("expected msg=test message, got %v", obj["msg"])
	}
	if obj["key"] != "value" {
		t.Errorf("expected key=value, got %v", obj["key"])
	}
}

func TestSetLevel_ChangesFilteringAtRuntime(t *testing.T) {
	var buf bytes.Buffer
	setupLogger(&buf, "text", "error")
	t.Cleanup(func() { SetupLogger("text", "error") })

	buf.Reset()
	slog.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info record emitted at error level: %q", buf.String())
	}

	SetLevel("debug")
	buf.Reset()
	slog.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug record missing after SetLevel(debug): %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
