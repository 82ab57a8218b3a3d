package pms

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/mdouchement/logger"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

var (
	ErrNotFound   = errors.New("device not found/plugged")
	ErrShortWrite = errors.New("short write")
)

// ByteTimeout bounds the wait of a single byte read.
const ByteTimeout = 100 * time.Millisecond

// A Port is the serial link to a PMS sensor.
type Port struct {
	sync   sync.Mutex
	pname  string
	serial serial.Port
	log    logger.Logger
	rbuf   []byte
}

// ListPorts returns the serial ports found on the host.
func ListPorts() ([]*enumerator.PortDetails, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	slices.SortFunc(ports, func(a, b *enumerator.PortDetails) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return ports, nil
}

// IsBridge reports whether p is a known USB-UART bridge.
func IsBridge(p *enumerator.PortDetails) bool {
	if !p.IsUSB {
		return false
	}

	return slices.ContainsFunc(bridges, func(b [2]string) bool {
		return p.VID == b[0] && p.PID == b[1]
	})
}

// OpenAuto opens the first USB-UART bridge found on the host.
func OpenAuto(baudrate int) (*Port, error) {
	ports, err := ListPorts()
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(ports, IsBridge)
	if idx < 0 {
		return nil, ErrNotFound
	}

	p := ports[idx]
	fmt.Printf("Found USB-UART bridge on %s - VID: %s - PID: %s - SN: %s\n", p.Name, p.VID, p.PID, p.SerialNumber)
	return Open(p.Name, baudrate)
}

// Open opens the given serial port using the 8N1 framing of the sensor.
// An empty port falls back on OpenAuto.
func Open(port string, baudrate int) (*Port, error) {
	if port == "" {
		return OpenAuto(baudrate)
	}
	if baudrate <= 0 {
		baudrate = BaudRate
	}

	p := &Port{
		pname: port,
		rbuf:  make([]byte, 1),
	}

	var err error
	p.serial, err = serial.Open(port, &serial.Mode{
		BaudRate: baudrate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}

	if err = p.serial.SetReadTimeout(ByteTimeout); err != nil {
		p.serial.Close()
		return nil, err
	}

	if err = p.serial.ResetInputBuffer(); err != nil {
		p.serial.Close()
		return nil, err
	}

	return p, nil
}

func (p *Port) SetLogger(l logger.Logger) {
	p.log = l
}

func (p *Port) Close() error {
	if err := p.serial.ResetInputBuffer(); err != nil {
		return err
	}

	return p.serial.Close()
}

func (p *Port) Port() string {
	return p.pname
}

// Send writes the given command to the sensor.
func (p *Port) Send(c Command) error {
	p.sync.Lock()
	defer p.sync.Unlock()

	n, err := p.serial.Write(c[:])
	if err != nil {
		return fmt.Errorf("send %s: %w", c, err)
	}
	if n != len(c) {
		return fmt.Errorf("send %s: %w: %d of %d", c, ErrShortWrite, n, len(c))
	}

	if p.log != nil {
		p.log.Debugf("Sent command %s", c)
	}
	return nil
}

// ReadByte reads one byte, waiting at most ByteTimeout.
func (p *Port) ReadByte() (byte, error) {
	p.sync.Lock()
	defer p.sync.Unlock()

	n, err := p.serial.Read(p.rbuf)
	if err != nil {
		return 0, fmt.Errorf("read: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("read: %w", ErrTimeout)
	}

	return p.rbuf[0], nil
}

// ClearInput discards the bytes received but not read yet.
func (p *Port) ClearInput() error {
	p.sync.Lock()
	defer p.sync.Unlock()

	return p.serial.ResetInputBuffer()
}
