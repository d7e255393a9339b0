//go:build linux

package input

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

var baudRates = map[int]uint32{
	9600:   unix.B9600,
	19200:  unix.B19200,
	38400:  unix.B38400,
	57600:  unix.B57600,
	115200: unix.B115200,
	230400: unix.B230400,
}

// Port is a serial tty in raw mode.
type Port struct {
	fd    int
	path  string
	state *term.State
}

// OpenPort opens path in raw mode at baud.
func OpenPort(path string, baud int) (*Port, error) {
	rate, ok := baudRates[baud]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBaud, baud)
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("input: open %s: %w", path, err)
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("input: raw mode %s: %w", path, err)
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		term.Restore(fd, state)
		unix.Close(fd)
		return nil, fmt.Errorf("input: get termios %s: %w", path, err)
	}
	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= rate | unix.CLOCAL | unix.CREAD
	termios.Ispeed = rate
	termios.Ospeed = rate
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		term.Restore(fd, state)
		unix.Close(fd)
		return nil, fmt.Errorf("input: set termios %s: %w", path, err)
	}

	return &Port{fd: fd, path: path, state: state}, nil
}

// ReadTimeout waits up to timeout for data.
func (p *Port) ReadTimeout(buf []byte, timeout time.Duration) (int, error) {
	fds := []unix.PollFd{{Fd: int32(p.fd), Events: unix.POLLIN}}

	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, nil
		}
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	if fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
		return 0, fmt.Errorf("%s: device hung up", p.path)
	}

	read, err := unix.Read(p.fd, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			return 0, nil
		}
		return 0, err
	}
	return read, nil
}

// Close restores the terminal settings and closes the port.
func (p *Port) Close() error {
	term.Restore(p.fd, p.state)
	return unix.Close(p.fd)
}
