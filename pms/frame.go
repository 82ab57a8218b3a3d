package pms

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	ErrChecksum = errors.New("checksum mismatch")
	ErrTimeout  = errors.New("timeout")
)

// ParseFrame validates the checksum of f and decodes its concentrations.
func ParseFrame(f Frame) (Reading, error) {
	expected := binary.BigEndian.Uint16(f[ChecksumAt:])
	if actual := sum(f[:ChecksumAt]); actual != expected {
		return Reading{}, fmt.Errorf("%w: got %04X, want %04X", ErrChecksum, actual, expected)
	}

	return Reading{
		PM1Std:  binary.BigEndian.Uint16(f[4:6]),
		PM25Std: binary.BigEndian.Uint16(f[6:8]),
		PM10Std: binary.BigEndian.Uint16(f[8:10]),
		PM1Atm:  binary.BigEndian.Uint16(f[10:12]),
		PM25Atm: binary.BigEndian.Uint16(f[12:14]),
		PM10Atm: binary.BigEndian.Uint16(f[14:16]),
	}, nil
}

// ReadFrame reads r byte per byte until a full frame is received and returns its decoded values.
// It aborts on the first read error or once timeout is elapsed.
func ReadFrame(r io.ByteReader, timeout time.Duration) (Reading, error) {
	var f Frame
	var i int

	start := time.Now()
	for i < FrameLen {
		if time.Since(start) >= timeout {
			return Reading{}, fmt.Errorf("frame: %w after %d bytes", ErrTimeout, i)
		}

		b, err := r.ReadByte()
		if err != nil {
			return Reading{}, fmt.Errorf("frame: %w", err)
		}

		switch i {
		case 0:
			if b == StartByte1 {
				f[0] = b
				i = 1
			}
		case 1:
			switch b {
			case StartByte2:
				f[1] = b
				i = 2
			case StartByte1:
				// Repeated first marker byte, it may be the real start of the frame.
			default:
				i = 0
			}
		default:
			f[i] = b
			i++
		}
	}

	return ParseFrame(f)
}

// NewFrame builds a valid frame carrying the given reading, as the sensor would send it.
func NewFrame(r Reading) Frame {
	var f Frame
	f[0], f[1] = StartByte1, StartByte2
	binary.BigEndian.PutUint16(f[2:4], FrameLen-4) // Frame length excluding start bytes and itself
	binary.BigEndian.PutUint16(f[4:6], r.PM1Std)
	binary.BigEndian.PutUint16(f[6:8], r.PM25Std)
	binary.BigEndian.PutUint16(f[8:10], r.PM10Std)
	binary.BigEndian.PutUint16(f[10:12], r.PM1Atm)
	binary.BigEndian.PutUint16(f[12:14], r.PM25Atm)
	binary.BigEndian.PutUint16(f[14:16], r.PM10Atm)
	binary.BigEndian.PutUint16(f[ChecksumAt:], sum(f[:ChecksumAt]))
	return f
}
