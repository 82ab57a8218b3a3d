package pms

import (
	"encoding/binary"
	"fmt"
)

type (
	// A Frame is one data message sent by the sensor.
	Frame [FrameLen]byte

	// A Command is a request sent to the sensor:
	// 0x42 0x4D CMD DATAH DATAL LRCH LRCL where LRC is the sum of the previous bytes.
	Command [7]byte
)

// Reading holds the concentrations (µg/m³) decoded from a valid frame.
// Std values are CF=1 standard particles, Atm values are under atmospheric environment.
type Reading struct {
	PM1Std  uint16 `json:"pm1_std"`
	PM25Std uint16 `json:"pm25_std"`
	PM10Std uint16 `json:"pm10_std"`
	PM1Atm  uint16 `json:"pm1_atm"`
	PM25Atm uint16 `json:"pm25_atm"`
	PM10Atm uint16 `json:"pm10_atm"`
}

func (c Command) Valid() bool {
	return sum(c[:5]) == binary.BigEndian.Uint16(c[5:])
}

func (c Command) String() string {
	switch c {
	case CommandPassive:
		return "passive"
	case CommandActive:
		return "active"
	case CommandRead:
		return "read"
	case CommandSleep:
		return "sleep"
	case CommandWake:
		return "wake"
	default:
		return fmt.Sprintf("% X", c[:])
	}
}

func sum(p []byte) uint16 {
	var s uint16
	for _, b := range p {
		s += uint16(b)
	}
	return s
}
