package logger_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/mriflash/internal/logger"
)

func newBufferLogger(level logger.Level) (*logger.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := logger.New(
		logger.WithOutput(&buf),
		logger.WithLevel(level),
		logger.WithColors(false),
		logger.WithClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }),
	)
	return l, &buf
}

func TestParseLevel(t *testing.T) {
	tests := map[string]logger.Level{
		"debug":   logger.DEBUG,
		"INFO":    logger.INFO,
		"Warning": logger.WARN,
		"error":   logger.ERROR,
		"":        logger.INFO,
		"verbose": logger.INFO,
	}
	for in, expected := range tests {
		assert.Equal(t, expected, logger.ParseLevel(in), "input %q", in)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(logger.WARN)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown %d", 1)
	l.Error("shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN  ")
	assert.Contains(t, out, "shown 1")
	assert.Contains(t, out, "shown 2")
}

func TestLogger_Format(t *testing.T) {
	l, buf := newBufferLogger(logger.DEBUG)

	l.WithPrefix("quiz").WithFields(map[string]any{"phase": "question", "cursor": 2}).Info("advanced")

	out := buf.String()
	assert.Contains(t, out, "2026-01-02 03:04:05.000 INFO  [quiz] [logger_test.go:")
	assert.Contains(t, out, "advanced cursor=2 phase=question\n", "fields are sorted by key")
}

func TestLogger_ChildDoesNotLeakFields(t *testing.T) {
	l, buf := newBufferLogger(logger.DEBUG)

	child := l.WithError(errors.New("boom"))
	l.Info("parent")
	child.Info("child")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	assert.Len(t, lines, 2)
	assert.NotContains(t, string(lines[0]), "error=")
	assert.Contains(t, string(lines[1]), "error=boom")
}

func TestContext(t *testing.T) {
	l, buf := newBufferLogger(logger.DEBUG)
	ctx := logger.NewContext(context.Background(), l)

	logger.FromContext(ctx).Debug("from context")

	assert.Contains(t, buf.String(), "from context")
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}
