package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
)

func newJSONLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: FormatJSON, Output: "stdout"}, "jig", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("failed to decode log line %q: %v", line, err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := &Config{Level: "invalid-level", Format: FormatJSON, Output: "stdout"}
	if l := New(cfg, "test"); l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "debug").WithComponent("participant")

	l.Info("request dispatched", Fields(FieldTarget, "127.0.0.1:3000", FieldStatus, 200))

	m := decodeLine(t, &buf)
	if m["message"] != "request dispatched" {
		t.Errorf("unexpected message %v", m["message"])
	}
	if m[FieldComponent] != "participant" {
		t.Errorf("expected component=participant, got %v", m[FieldComponent])
	}
	if m[FieldTarget] != "127.0.0.1:3000" {
		t.Errorf("expected target field, got %v", m[FieldTarget])
	}
	if m["service"] != "jig" {
		t.Errorf("expected service=jig, got %v", m["service"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "warn")

	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}

	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn line, got %q", buf.String())
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "info").
		WithFields(Fields(FieldWorkItemID, "wi-1")).
		WithError(fmt.Errorf("boom"))

	l.Error("consume failed")

	m := decodeLine(t, &buf)
	if m[FieldWorkItemID] != "wi-1" {
		t.Errorf("expected work_item_id=wi-1, got %v", m[FieldWorkItemID])
	}
	if m["error"] != "boom" {
		t.Errorf("expected error=boom, got %v", m["error"])
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("discarded")
}

func TestInitSetsGlobal(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	Init(Config{Level: "debug", Format: FormatJSON, ServiceName: "jig-test"})
	if got := GetGlobalLogger().service; got != "jig-test" {
		t.Errorf("expected global service 'jig-test', got %q", got)
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)
	SetGlobalLogger(newJSONLogger(&buf, "debug"))

	Debug("d")
	Info("i")
	Warn("w")
	Error("e")

	if got := strings.Count(buf.String(), "\n"); got != 4 {
		t.Errorf("expected 4 log lines, got %d", got)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != FormatConsole || cfg.Output != "stdout" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp enabled by default")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: FormatJSON, Output: "stdout"}, false},
		{"bad level", Config{Level: "loud", Format: FormatJSON, Output: "stdout"}, true},
		{"bad format", Config{Level: "info", Format: "xml", Output: "stdout"}, true},
		{"bad output", Config{Level: "info", Format: FormatJSON, Output: "file"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFieldHelpers(t *testing.T) {
	f := Fields("a", 1, "b")
	if len(f) != 1 || f["a"] != 1 {
		t.Errorf("unexpected fields %v", f)
	}

	ef := ErrorFields("consume", fmt.Errorf("x"))
	if ef[FieldOperation] != "consume" || ef[FieldError] != "x" {
		t.Errorf("unexpected error fields %v", ef)
	}

	df := DurationFields("dispatch", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500ms, got %v", df[FieldDuration])
	}

	merged := MergeWithError(nil, fmt.Errorf("y"))
	if merged[FieldError] != "y" {
		t.Errorf("expected error=y, got %v", merged[FieldError])
	}
}
