package diag

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	last := &Last{}
	logger := NewLogger(slog.LevelInfo, &buf, last)

	logger.Debug("hidden")
	logger.Info("docked", "player", "e1")
	_, _, n := last.Get()
	assert.Zero(t, n, "info stays off the status line")
	assert.Contains(t, buf.String(), "docked")
	assert.NotContains(t, buf.String(), "hidden")

	logger.With("device", "/dev/ttyACM0").Warn("serial read failed")
	level, msg, n := last.Get()
	assert.Equal(t, slog.LevelWarn, level)
	assert.Equal(t, "serial read failed", msg)
	assert.Equal(t, 1, n)
	assert.Contains(t, buf.String(), "device=/dev/ttyACM0")
}

func TestHandlerSinkBelowTextLevel(t *testing.T) {
	var buf bytes.Buffer
	var got []string
	sink := SinkFunc(func(_ slog.Level, msg string) { got = append(got, msg) })

	text := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError})
	logger := slog.New(NewHandler(text, sink, slog.LevelWarn))

	logger.WithGroup("audio").Warn("sink failed")
	logger.Error("port closed")

	assert.Equal(t, []string{"sink failed", "port closed"}, got)
	assert.NotContains(t, buf.String(), "sink failed")
	assert.Contains(t, buf.String(), "port closed")
}

func TestHandlerWithoutSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(slog.NewTextHandler(&buf, nil), nil, slog.LevelWarn))
	logger.Warn("only text")
	assert.Contains(t, buf.String(), "only text")
}
