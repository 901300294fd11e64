package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   Level
		wantOK bool
	}{
		{"debug", LevelDebug, true},
		{"DEBUG", LevelDebug, true},
		{"info", LevelInfo, true},
		{"warning", LevelWarn, true},
		{"Error", LevelError, true},
		{"loud", LevelInfo, false},
		{"", LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func newTestLogger(level Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New(Config{Level: level, Output: &buf, Prefix: "modal"})
	l.sink.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return l, &buf
}

func TestLoggerFormat(t *testing.T) {
	l, buf := newTestLogger(LevelDebug)
	l.WithFields(map[string]any{"mode": "insert", "cursors": 2}).Info("applied %s", "cw")

	want := "2024-01-02T03:04:05.000 [INFO] modal: applied cw {cursors=2, mode=insert}\n"
	if got := buf.String(); got != want {
		t.Errorf("line = %q, want %q", got, want)
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	l, buf := newTestLogger(LevelWarn)
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown too")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("filtered messages leaked: %q", out)
	}
	if strings.Count(out, "\n") != 2 {
		t.Errorf("expected 2 lines, got %q", out)
	}
}

func TestDerivedLoggerSharesOutput(t *testing.T) {
	l, buf := newTestLogger(LevelInfo)
	child := l.WithComponent("dispatch")
	child.Info("one")
	l.Info("two")

	out := buf.String()
	if !strings.Contains(out, "one {component=dispatch}") || !strings.Contains(out, "two\n") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	if l.Enabled(LevelError) {
		t.Error("Nop logger should be disabled")
	}
	l.Error("nothing")
}
