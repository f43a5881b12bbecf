package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()

	tests := []struct {
		level string
		msg   string
		kv    string
	}{
		{"DEBUG", "dbg", "a=1"},
		{"INFO", "inf", "b=2"},
		{"WARN", "wrn", "c=3"},
		{"ERROR", "err", "d=4"},
	}

	for _, test := range tests {
		assert.Contains(t, out, "level="+test.level)
		assert.Contains(t, out, "msg="+test.msg)
		assert.Contains(t, out, test.kv)
	}
}

func TestSlogLogger_With(t *testing.T) {
	log, buf := newTestLogger(t)

	log.With("component", "recovery").Info(context.Background(), "hello", "k", "v")

	out := buf.String()
	for _, want := range []string{"msg=hello", "component=recovery", "k=v"} {
		assert.Contains(t, out, want)
	}
}

func TestNew_FormatAndLevel(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		level     string
		wantDebug bool
		wantJSON  bool
	}{
		{name: "json info", format: "json", level: "info", wantJSON: true},
		{name: "text debug", format: "text", level: "debug", wantDebug: true},
		{name: "unknown format falls back to json", format: "yaml", level: "", wantJSON: true},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			var buf bytes.Buffer
			log := New(&buf, test.format, test.level)

			// Act
			log.Debug(context.Background(), "debug-line")
			log.Info(context.Background(), "info-line")

			// Assert
			out := buf.String()
			assert.Equal(t, test.wantDebug, strings.Contains(out, "debug-line"), "debug line logged")
			assert.Equal(t, test.wantJSON, strings.HasPrefix(out, "{"), "json output: %q", out)
		})
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
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}
