package input

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// SyncByte starts every controller frame.
	SyncByte = 0xC0
	// Slots is the number of controllers per frame.
	Slots = 3
	// FrameSize is the sync byte plus a button byte and a big-endian pot
	// reading per slot.
	FrameSize = 1 + Slots*3
	// PotMax is the full scale pot reading, one turn in milliradians.
	PotMax = 6283
)

var (
	// ErrBadSync means a frame did not start with SyncByte.
	ErrBadSync = errors.New("input: bad sync byte")
	// ErrShortFrame means fewer than FrameSize bytes were available.
	ErrShortFrame = errors.New("input: short frame")
)

// Reading is the state of one controller.
type Reading struct {
	Pressed bool
	Pot     uint16
}

// Heading converts the pot reading to radians.
func (r Reading) Heading() float64 {
	return float64(r.Pot) / 1000
}

// Frame holds one reading per slot.
type Frame [Slots]Reading

// ParseFrame decodes exactly one frame from the start of b.
func ParseFrame(b []byte) (Frame, error) {
	var f Frame
	if len(b) < FrameSize {
		return f, fmt.Errorf("%w: got %d bytes", ErrShortFrame, len(b))
	}
	if b[0] != SyncByte {
		return f, fmt.Errorf("%w: 0x%02X", ErrBadSync, b[0])
	}

	for i := range f {
		off := 1 + i*3
		f[i] = Reading{
			Pressed: b[off] != 0,
			Pot:     binary.BigEndian.Uint16(b[off+1 : off+3]),
		}
	}
	return f, nil
}

// AppendFrame encodes f after b.
func AppendFrame(b []byte, f Frame) []byte {
	b = append(b, SyncByte)
	for _, r := range f {
		pressed := byte(0)
		if r.Pressed {
			pressed = 1
		}
		b = append(b, pressed)
		b = binary.BigEndian.AppendUint16(b, r.Pot)
	}
	return b
}

// Scanner splits a byte stream into frames, resynchronising on SyncByte
// after garbage.
type Scanner struct {
	buf []byte
	// Discarded counts bytes dropped while resynchronising.
	Discarded int
}

// Feed appends stream bytes and returns every complete frame. A non-nil
// error reports a protocol problem; frames decoded around it are still
// returned.
func (s *Scanner) Feed(p []byte) ([]Frame, error) {
	s.buf = append(s.buf, p...)

	var (
		frames []Frame
		errs   []error
	)
	for len(s.buf) >= FrameSize {
		frame, err := ParseFrame(s.buf)
		if err == nil {
			frames = append(frames, frame)
			s.buf = s.buf[FrameSize:]
			continue
		}

		skip := bytes.IndexByte(s.buf[1:], SyncByte) + 1
		if skip == 0 {
			skip = len(s.buf)
		}
		s.Discarded += skip
		s.buf = s.buf[skip:]
		errs = append(errs, err)
	}

	s.buf = append(s.buf[:0:0], s.buf...)
	return frames, errors.Join(errs...)
}
