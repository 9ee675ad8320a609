package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wiring/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
		{"warn at error level", log.ErrorLevel, func(l *log.Logger) { l.Warn("test") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))

			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)
	prog.done("Built 3 devices")

	out := buf.String()
	if !strings.Contains(out, "Built 3 devices (") {
		t.Errorf("progress output = %q, want message with elapsed time", out)
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Fatal("loggerFromContext() without logger returned nil")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if got := loggerFromContext(ctx); got != custom {
		t.Error("loggerFromContext() did not return the attached logger")
	}
}

func TestRegisterLogHooks(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	RegisterLogHooks(newLogger(&buf, log.DebugLevel))
	ctx := context.Background()

	observability.Pipeline().OnBuildStart(ctx, "strict")
	observability.Pipeline().OnBuildComplete(ctx, 0, 1, time.Millisecond, errors.New("aborted"))
	observability.Cache().OnCacheMiss(ctx, "artifact")
	observability.HTTP().OnPanic(ctx, "POST", "/api/v1/check", "boom")

	out := buf.String()
	for _, want := range []string{"build started", "policy=strict", "build failed", "cache miss", "handler panic", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksQuietAtInfo(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	RegisterLogHooks(newLogger(&buf, log.InfoLevel))
	observability.Cache().OnCacheHit(context.Background(), "artifact")
	observability.Pipeline().OnRenderStart(context.Background(), 2, []string{"svg"})

	if buf.Len() != 0 {
		t.Errorf("debug events logged at info level: %q", buf.String())
	}
}
