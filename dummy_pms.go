package airqd

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/mdouchement/airqd/pms"
	"github.com/mdouchement/logger"
)

// A DummyPMS simulates a PMS sensor behind a serial port. It should only be used for dev & tests.
// Like the real sensor it starts asleep and in active mode.
type DummyPMS struct {
	sync     sync.Mutex
	awake    bool
	passive  bool
	rbuf     []byte
	last     time.Time
	interval time.Duration // between two frames in active mode
	timeout  time.Duration // per byte read
	next     func() pms.Reading
	sent     []pms.Command
	log      logger.Logger
}

func NewDummyPMS() *DummyPMS {
	start := time.Now()
	return &DummyPMS{
		interval: 800 * time.Millisecond,
		timeout:  pms.ByteTimeout,
		next: func() pms.Reading {
			// Slow oscillation around 15µg/m³ with some noise.
			x := math.Sin(time.Since(start).Minutes() / 10)
			pm25 := uint16(15 + 10*x + rand.Float64()*3)
			return pms.Reading{
				PM1Std:  pm25 * 2 / 3,
				PM25Std: pm25,
				PM10Std: pm25 * 4 / 3,
				PM1Atm:  pm25 * 2 / 3,
				PM25Atm: pm25,
				PM10Atm: pm25 * 4 / 3,
			}
		},
	}
}

func (d *DummyPMS) SetLogger(l logger.Logger) {
	d.log = l
}

// SetReadings replaces the generator of the values sent by the sensor.
func (d *DummyPMS) SetReadings(next func() pms.Reading) {
	d.sync.Lock()
	defer d.sync.Unlock()

	d.next = next
}

func (d *DummyPMS) Close() error {
	return nil
}

func (d *DummyPMS) Port() string {
	return "x-testing"
}

// Sent returns the commands received by the sensor.
func (d *DummyPMS) Sent() []pms.Command {
	d.sync.Lock()
	defer d.sync.Unlock()

	return append([]pms.Command(nil), d.sent...)
}

func (d *DummyPMS) Send(c pms.Command) error {
	d.sync.Lock()
	defer d.sync.Unlock()

	d.sent = append(d.sent, c)
	if d.log != nil {
		d.log.Debugf("Dummy sensor received %s", c)
	}

	switch c {
	case pms.CommandWake:
		d.awake = true
	case pms.CommandSleep:
		d.awake = false
		d.rbuf = d.rbuf[:0]
	case pms.CommandPassive:
		d.passive = true
	case pms.CommandActive:
		d.passive = false
	case pms.CommandRead:
		if d.awake && d.passive {
			d.push()
		}
	}
	return nil
}

func (d *DummyPMS) ReadByte() (byte, error) {
	d.sync.Lock()
	if d.awake && !d.passive && len(d.rbuf) == 0 && time.Since(d.last) >= d.interval {
		d.push()
	}

	if len(d.rbuf) == 0 {
		d.sync.Unlock()
		time.Sleep(d.timeout)
		return 0, pms.ErrTimeout
	}
	defer d.sync.Unlock()

	b := d.rbuf[0]
	d.rbuf = d.rbuf[1:]
	return b, nil
}

func (d *DummyPMS) ClearInput() error {
	d.sync.Lock()
	defer d.sync.Unlock()

	d.rbuf = d.rbuf[:0]
	return nil
}

func (d *DummyPMS) push() {
	f := pms.NewFrame(d.next())
	d.rbuf = append(d.rbuf, f[:]...)
	d.last = time.Now()
}
