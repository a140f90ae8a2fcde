package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

func fixedLogger(buf *bytes.Buffer, cfg Config) *Logger {
	cfg.Output = buf
	l := New(cfg)
	l.sink.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 6e6, time.UTC) }
	return l
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level(%d).String() = %q, expected %q", tt.level, got, tt.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{" info ", LevelInfo},
		{"warning", LevelWarn},
		{"Error", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, Config{Level: LevelDebug, Prefix: "folio"})
	l.WithComponent("editor").WithField("steps", 2).Info("applied %s", "tr")

	want := "2026-01-02T03:04:05.006 [INFO] folio: applied tr {component=editor, steps=2}\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, Config{Level: LevelWarn})
	child := l.WithComponent("history")

	child.Debug("hidden")
	child.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}

	child.Warn("shown")
	if !strings.Contains(buf.String(), "[WARN] shown") {
		t.Errorf("missing warning in %q", buf.String())
	}

	// Level changes are shared with derived loggers.
	l.SetLevel(LevelDebug)
	if !child.Enabled(LevelDebug) {
		t.Error("derived logger should see the new level")
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, Config{Level: LevelDebug, Prefix: "folio", Format: FormatJSON})
	l.WithFields(map[string]any{
		"component": "markup",
		"err":       errors.New("boom"),
		"a.b":       true,
	}).Error("parse failed")

	line := strings.TrimSpace(buf.String())
	if !gjson.Valid(line) {
		t.Fatalf("invalid JSON: %s", line)
	}
	checks := map[string]string{
		"level":            "ERROR",
		"msg":              "parse failed",
		"logger":           "folio",
		"fields.component": "markup",
		"fields.err":       "boom",
		`fields.a\.b`:      "true",
	}
	for path, want := range checks {
		if got := gjson.Get(line, path).String(); got != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
}

func TestNullLogger(t *testing.T) {
	l := Null()
	if l.Enabled(LevelError) {
		t.Error("null logger should be disabled")
	}
	l.WithField("k", "v").Error("nothing")
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("JSON") != FormatJSON {
		t.Error("expected JSON format")
	}
	if ParseFormat("logfmt") != FormatText {
		t.Error("expected text fallback")
	}
}
