package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestBuildFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := Build(Options{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	log.Info("hidden")
	log.Warn("shown")
	_ = log.Sync()
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestBuildJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := Build(Options{Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	log.Sugar().Infow("step done", "rows", 3)
	_ = log.Sync()
	if !strings.Contains(buf.String(), `"rows":3`) {
		t.Fatalf("json output missing field: %q", buf.String())
	}
	if _, err := Build(Options{Format: "xml"}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
