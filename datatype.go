package airqd

import (
	"io"
	"time"

	"github.com/mdouchement/airqd/pms"
)

// A LEDDriver drives the three PWM channels of the status LED.
// Duties follow the inverted logic of Color: 255 turns a channel off.
type LEDDriver interface {
	SetColor(c Color) error
	Off() error
	io.Closer
}

// A SerialPort is the link to the particulate matter sensor.
// ReadByte must not block more than a short per-byte timeout.
type SerialPort interface {
	Send(c pms.Command) error
	ReadByte() (byte, error)
	ClearInput() error
}

// A Sampler provides frames on demand when the sensor is in passive mode.
type Sampler interface {
	io.ByteReader
	RequestRead() error
}

// Measurement is the PM1.0 and PM2.5 concentrations (µg/m³) averaged over a session window.
type Measurement struct {
	PM1        uint32    `json:"pm1"`
	PM25       uint32    `json:"pm25"`
	Samples    uint32    `json:"samples"`
	MeasuredAt time.Time `json:"measured_at"`
}

func ToPtr[T any](v T) *T {
	return &v
}

type sampler struct {
	SerialPort
}

func (s sampler) RequestRead() error {
	return s.Send(pms.CommandRead)
}

type Shaper interface {
	Eval(m Measurement) LEDCommand
}
