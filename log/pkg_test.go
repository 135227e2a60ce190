package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestPackage_LogFunctions_UseDefaultLogger(t *testing.T) {
	original := defaultLog
	defer func() { defaultLog = original }()

	var buf bytes.Buffer

	defaultLog = Make(&buf,
		WithLevel(LevelTrace),
		WithFormat(FormatJSON),
		WithPretty(false),
	)

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Trace", Trace, "TRACE"},
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
		{"ErrorContext", func(msg string, attrs ...slog.Attr) {
			ErrorContext(context.Background(), msg, attrs...)
		}, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn(tt.name+" message", slog.String("key", "value"))

			out := buf.String()
			if !strings.Contains(out, tt.name+" message") {
				t.Errorf("expected message in output, got: %s", out)
			}

			if !strings.Contains(out, tt.level) {
				t.Errorf("expected level %q in output, got: %s", tt.level, out)
			}

			if !strings.Contains(out, `"key":"value"`) {
				t.Errorf("expected attribute in output, got: %s", out)
			}
		})
	}
}

func TestPackage_Config_ReconfiguresDefault(t *testing.T) {
	original := defaultLog
	defer func() { defaultLog = original }()

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithLevel(LevelDebug), WithPretty(false))
	DebugContext(context.Background(), "configured")

	if !strings.Contains(buf.String(), "configured") {
		t.Errorf("expected message through reconfigured logger, got %q", buf.String())
	}

	if Default().Level() != LevelDebug {
		t.Errorf("expected debug level, got %v", Default().Level())
	}
}
