package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/plus3/capsynth/config"
	"github.com/plus3/capsynth/input"
)

// serialControl owns the controller port across retries.
type serialControl struct {
	ctx        context.Context
	device     string
	baud       int
	logger     *slog.Logger
	activation *input.Activation
	system     *input.SerialSystem
	cancel     context.CancelFunc
}

func newSerialControl(ctx context.Context, cfg *config.Config, lobby input.Lobby, board *input.Board, logger *slog.Logger) *serialControl {
	activation := input.NewActivation(cfg.Timing(), lobby, board, logger)
	return &serialControl{
		ctx:        ctx,
		device:     cfg.Serial.Device,
		baud:       cfg.Serial.Baud,
		logger:     logger,
		activation: activation,
		system:     input.NewSerialSystem(activation, nil, nil, nil),
	}
}

// begin opens the port and starts registration. It is a no-op while
// registration or play is running.
func (s *serialControl) begin(now time.Time) {
	switch s.activation.State() {
	case input.StateActivating, input.StateReady:
		return
	}
	if s.cancel != nil {
		s.cancel()
	}

	port, err := input.OpenPort(s.device, s.baud)
	if err != nil {
		s.activation.Fail(err)
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel

	reader := input.NewReader(s.device, port, s.logger)
	s.system.Rebind(reader.Samples(), reader.Failure())
	go func() {
		if err := reader.Run(ctx); err != nil {
			s.logger.Warn("serial reader stopped", "error", err)
		}
	}()
	s.activation.Begin(now)
}

func (s *serialControl) status() string {
	switch s.activation.State() {
	case input.StateInit:
		return "serial: press Enter to start controller registration"
	case input.StateActivating:
		return fmt.Sprintf("serial: press and release a controller button (%d joined)", s.activation.Confirmed())
	case input.StateError:
		return "serial: device error, press Enter to retry"
	default:
		return fmt.Sprintf("serial: %d controllers", s.activation.Confirmed())
	}
}
