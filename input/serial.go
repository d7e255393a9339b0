package input

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/plus3/capsynth/ecs"
)

// ErrUnsupportedBaud is returned for a baud rate the port cannot be set to.
var ErrUnsupportedBaud = errors.New("input: unsupported baud rate")

// pollTimeout bounds each blocking read so cancellation is noticed.
const pollTimeout = 100 * time.Millisecond

// Device is a byte source that can wait with a timeout.
type Device interface {
	// ReadTimeout reads into p, returning 0 and no error when nothing
	// arrived within timeout.
	ReadTimeout(p []byte, timeout time.Duration) (int, error)
	Close() error
}

// Sample is the latest decoded frame and when it arrived.
type Sample struct {
	Frame Frame
	At    time.Time
}

// Reader pulls bytes from a device on its own goroutine and stores the
// newest frame in a shared cell. It never touches the simulation.
type Reader struct {
	name    string
	device  Device
	samples *ecs.Singleton[Sample]
	failure *ecs.Singleton[error]
	logger  *slog.Logger
	now     func() time.Time
	scanner Scanner
}

// NewReader creates a reader for device. name is used in logs and errors.
func NewReader(name string, device Device, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		name:    name,
		device:  device,
		samples: ecs.NewSingleton[Sample](),
		failure: ecs.NewSingleton[error](),
		logger:  logger.With("device", name),
		now:     time.Now,
	}
}

// Samples is the cell holding the newest frame.
func (r *Reader) Samples() *ecs.Singleton[Sample] {
	return r.samples
}

// Failure is the cell holding the error that stopped the reader.
func (r *Reader) Failure() *ecs.Singleton[error] {
	return r.failure
}

// Run reads until ctx is cancelled or the device fails. The device is
// closed on return.
func (r *Reader) Run(ctx context.Context) error {
	defer r.device.Close()

	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		n, err := r.device.ReadTimeout(buf, pollTimeout)
		if err != nil {
			err = fmt.Errorf("input: read %s: %w", r.name, err)
			r.failure.Set(err)
			return err
		}
		if n == 0 {
			continue
		}

		frames, perr := r.scanner.Feed(buf[:n])
		if perr != nil {
			r.logger.Warn("discarding malformed serial data", "error", perr, "discarded", r.scanner.Discarded)
		}
		if len(frames) > 0 {
			r.samples.Set(Sample{Frame: frames[len(frames)-1], At: r.now()})
		}
	}
}
