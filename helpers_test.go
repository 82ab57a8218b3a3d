package airqd

import (
	"io"
	"log/slog"
	"time"

	"github.com/mdouchement/airqd/pms"
	"github.com/mdouchement/logger"
)

func testLogger() logger.Logger {
	h := logger.NewSlogTextHandler(io.Discard, &logger.SlogTextOption{
		Level: slog.LevelDebug,
	})
	return logger.WrapSlogHandler(h)
}

func newTestPMS(r pms.Reading) *DummyPMS {
	d := NewDummyPMS()
	d.interval = 5 * time.Millisecond
	d.timeout = 2 * time.Millisecond
	d.SetReadings(func() pms.Reading {
		return r
	})
	return d
}

func newTestAcquisition(port SerialPort) *Acquisition {
	a := NewAcquisition(port, testLogger())
	a.timing = timing{
		settle:       time.Millisecond,
		wakeUp:       10 * time.Millisecond,
		frameTimeout: 500 * time.Millisecond,
		drain:        10 * time.Millisecond,
	}
	return a
}

func count[T comparable](s []T, v T) (n int) {
	for _, e := range s {
		if e == v {
			n++
		}
	}
	return n
}
