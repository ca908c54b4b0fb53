package internal

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func captureLog(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	}()
	fn()
	return buf.String()
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"error": LogLevelError,
		"WARN":  LogLevelWarn,
		"":      LogLevelInfo,
		"debug": LogLevelDebug,
		"TRACE": LogLevelTrace,
		"bogus": LogLevelInfo,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestComponentLoggerSharesLevel(t *testing.T) {
	root := NewLogger(LogLevelWarn)
	child := root.WithComponent("Load")

	out := captureLog(t, func() {
		child.Info("hidden")
		child.Warn("gene %s skipped", "FOO")
	})
	if strings.Contains(out, "hidden") {
		t.Errorf("Info line should be suppressed at WARN, got %q", out)
	}
	if !strings.Contains(out, "[WARN] [Load] gene FOO skipped") {
		t.Errorf("Expected prefixed warning, got %q", out)
	}

	root.SetLevel(LogLevelDebug)
	out = captureLog(t, func() { child.Debug("now visible") })
	if !strings.Contains(out, "now visible") {
		t.Errorf("Expected child to follow root level change, got %q", out)
	}
}
