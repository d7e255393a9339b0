package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/plus3/capsynth/ecs"
)

const reloadDebounce = 100 * time.Millisecond

// Watch reloads path whenever it changes and passes valid results to
// onChange. Invalid files are logged and ignored. The directory is watched
// so editors that replace the file are handled. Watch blocks until ctx is
// done.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func(*Config)) error {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(reloadDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "path", path, "error", err)
		case <-timer.C:
			cfg, err := Load(path)
			if err != nil {
				logger.Warn("config reload rejected", "path", path, "error", err)
				continue
			}
			logger.Info("config reloaded", "path", path)
			onChange(cfg)
		}
	}
}

// Live hands reloaded configs from the watcher goroutine to the game loop.
type Live struct {
	cell *ecs.Singleton[*Config]
	seen uint64
}

func NewLive(initial *Config) *Live {
	l := &Live{cell: ecs.NewSingleton(initial)}
	l.seen = l.cell.Version()
	return l
}

// Publish stores a new config. Safe from any goroutine.
func (l *Live) Publish(cfg *Config) {
	l.cell.Set(cfg)
}

// Current returns the latest config.
func (l *Live) Current() *Config {
	cfg, _ := l.cell.Get()
	return cfg
}

// Poll returns the latest config if it changed since the previous Poll.
// Call from a single goroutine.
func (l *Live) Poll() (*Config, bool) {
	v := l.cell.Version()
	if v == l.seen {
		return nil, false
	}
	l.seen = v
	return l.Current(), true
}
