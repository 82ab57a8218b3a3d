package pms

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrame(t *testing.T) {
	f := NewFrame(Reading{
		PM1Std:  1,
		PM25Std: 2,
		PM10Std: 3,
		PM1Atm:  0x0102,
		PM25Atm: 0x0A0B,
		PM10Atm: 0xFFFE,
	})

	r, err := ParseFrame(f)
	require.NoError(t, err)
	assert.Equal(t, binary.BigEndian.Uint16(f[10:12]), r.PM1Atm)
	assert.Equal(t, binary.BigEndian.Uint16(f[12:14]), r.PM25Atm)
	assert.Equal(t, binary.BigEndian.Uint16(f[14:16]), r.PM10Atm)
	assert.Equal(t, Reading{1, 2, 3, 0x0102, 0x0A0B, 0xFFFE}, r)
}

func TestParseFrame_ChecksumMismatch(t *testing.T) {
	f := NewFrame(Reading{PM1Atm: 10, PM25Atm: 20})

	for _, i := range []int{0, 4, 12, 29, 30, 31} {
		corrupted := f
		corrupted[i]++

		_, err := ParseFrame(corrupted)
		assert.ErrorIs(t, err, ErrChecksum, "byte %d", i)
	}
}

func TestParseFrame_ChecksumOverflow(t *testing.T) {
	var f Frame
	for i := range f[:ChecksumAt] {
		f[i] = 0xFF
	}
	// 30*255 = 7650 fits in 16 bits, the sum is not truncated to a byte.
	binary.BigEndian.PutUint16(f[ChecksumAt:], 30*0xFF)

	r, err := ParseFrame(f)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xFFFF), r.PM25Atm)
}

func TestCommands(t *testing.T) {
	for _, c := range []Command{CommandPassive, CommandActive, CommandRead, CommandSleep, CommandWake} {
		assert.True(t, c.Valid(), c.String())
	}

	assert.False(t, Command{0x42, 0x4D, 0xE4, 0x00, 0x01, 0x01, 0x73}.Valid())
	assert.Equal(t, "42 4D 00 00 00 00 8F", Command{0x42, 0x4D, 0, 0, 0, 0, 0x8F}.String())
}

//
//
//

func stream(chunks ...[]byte) *bytes.Reader {
	return bytes.NewReader(bytes.Join(chunks, nil))
}

func TestReadFrame(t *testing.T) {
	f := NewFrame(Reading{PM1Atm: 7, PM25Atm: 9})

	r, err := ReadFrame(stream([]byte{0x00, 0x13, 0x4D}, f[:]), time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint16(7), r.PM1Atm)
	assert.Equal(t, uint16(9), r.PM25Atm)
}

func TestReadFrame_RepeatedStartByte(t *testing.T) {
	f := NewFrame(Reading{PM1Atm: 3, PM25Atm: 4})

	r, err := ReadFrame(stream([]byte{StartByte1}, f[:]), time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint16(4), r.PM25Atm)
}

func TestReadFrame_FalseStart(t *testing.T) {
	f := NewFrame(Reading{PM25Atm: 12})

	r, err := ReadFrame(stream([]byte{StartByte1, 0x01, StartByte2}, f[:]), time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint16(12), r.PM25Atm)
}

func TestReadFrame_ReadError(t *testing.T) {
	f := NewFrame(Reading{})

	_, err := ReadFrame(stream(f[:20]), time.Second)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadFrame_Corrupted(t *testing.T) {
	f := NewFrame(Reading{PM25Atm: 1})
	f[20] ^= 0xFF

	_, err := ReadFrame(stream(f[:]), time.Second)
	assert.ErrorIs(t, err, ErrChecksum)
}

type slowReader struct {
	delay time.Duration
}

func (r slowReader) ReadByte() (byte, error) {
	time.Sleep(r.delay)
	return 0x00, nil
}

func TestReadFrame_Timeout(t *testing.T) {
	start := time.Now()
	_, err := ReadFrame(slowReader{delay: 5 * time.Millisecond}, 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.False(t, errors.Is(err, ErrChecksum))
	assert.Less(t, time.Since(start), time.Second)
}
