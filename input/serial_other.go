//go:build !linux

package input

import (
	"errors"
	"time"
)

// Port is unavailable on this platform.
type Port struct{}

// OpenPort always fails on this platform.
func OpenPort(path string, baud int) (*Port, error) {
	return nil, errors.ErrUnsupported
}

func (p *Port) ReadTimeout(buf []byte, timeout time.Duration) (int, error) {
	return 0, errors.ErrUnsupported
}

func (p *Port) Close() error {
	return nil
}
