package logging

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"
)

func TestLevel_String(t *testing.T) {
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
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"WARNING", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}

	if ValidLevel("bogus") {
		t.Error("bogus should not be a valid level")
	}
	if !ValidLevel("Warn") {
		t.Error("Warn should be a valid level")
	}
}

func fixedClock(l *Logger) {
	l.sink.now = func() time.Time {
		return time.Date(2024, 1, 2, 3, 4, 5, 6000000, time.UTC)
	}
}

func TestLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Outputs: []io.Writer{&buf}, Prefix: "vt"})
	fixedClock(l)

	l.WithField("term", 3).WithComponent("console").Info("wrote %d cells", 42)

	want := "03:04:05.006 [INFO] vt: wrote 42 cells {component=console, term=3}\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Outputs: []io.Writer{&buf}})

	l.Debug("debug")
	l.Info("info")
	if buf.Len() != 0 {
		t.Errorf("expected nothing below warn, got %q", buf.String())
	}

	l.Warn("careful")
	if !strings.Contains(buf.String(), "[WARN] careful") {
		t.Errorf("missing warn line: %q", buf.String())
	}

	l.SetLevel(LevelError)
	buf.Reset()
	l.Warn("again")
	if buf.Len() != 0 {
		t.Error("SetLevel should raise the threshold")
	}
	if l.Level() != LevelError {
		t.Errorf("expected level error, got %v", l.Level())
	}
}

func TestLogger_DerivedShareSink(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Outputs: []io.Writer{&buf}})
	child := l.WithComponent("irq")

	l.SetLevel(LevelError)
	child.Info("hidden")
	if buf.Len() != 0 {
		t.Error("derived logger should observe the parent's level")
	}

	var extra bytes.Buffer
	child.AddOutput(&extra)
	l.Error("boom")
	if !strings.Contains(extra.String(), "boom") {
		t.Error("output added through a child should receive parent lines")
	}
}

type levelRecorder struct {
	levels []Level
	lines  []string
}

func (r *levelRecorder) Write(p []byte) (int, error) {
	r.lines = append(r.lines, string(p))
	return len(p), nil
}

func (r *levelRecorder) WriteLevel(level Level, p []byte) (int, error) {
	r.levels = append(r.levels, level)
	return r.Write(p)
}

func TestLogger_LevelWriter(t *testing.T) {
	rec := &levelRecorder{}
	l := New(Config{Level: LevelDebug, Outputs: []io.Writer{rec}})

	l.Warn("w")
	l.Error("e")

	if len(rec.levels) != 2 || rec.levels[0] != LevelWarn || rec.levels[1] != LevelError {
		t.Errorf("unexpected levels: %v", rec.levels)
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing")
	l.WithField("a", 1).Warn("still nothing")
}
