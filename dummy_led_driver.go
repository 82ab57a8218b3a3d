package airqd

import (
	"sync"

	"github.com/mdouchement/logger"
)

// A DummyLEDDriver should only be used for dev & tests.
type DummyLEDDriver struct {
	sync    sync.Mutex
	current Color
	history []Color
	closed  bool
	err     error
	log     logger.Logger
}

func NewDummyLEDDriver() *DummyLEDDriver {
	return &DummyLEDDriver{
		current: ColorOff,
	}
}

func (d *DummyLEDDriver) SetLogger(l logger.Logger) {
	d.log = l
}

// SetError makes the next writes fail with err, nil restores them.
func (d *DummyLEDDriver) SetError(err error) {
	d.sync.Lock()
	defer d.sync.Unlock()

	d.err = err
}

func (d *DummyLEDDriver) SetColor(c Color) error {
	d.sync.Lock()
	defer d.sync.Unlock()

	if d.err != nil {
		return d.err
	}

	d.current = c
	d.history = append(d.history, c)
	if d.log != nil {
		d.log.Debugf("LED duty R:%d G:%d B:%d", c.R, c.G, c.B)
	}
	return nil
}

func (d *DummyLEDDriver) Off() error {
	return d.SetColor(ColorOff)
}

func (d *DummyLEDDriver) Close() error {
	d.sync.Lock()
	defer d.sync.Unlock()

	d.closed = true
	return nil
}

func (d *DummyLEDDriver) Color() Color {
	d.sync.Lock()
	defer d.sync.Unlock()

	return d.current
}

// History returns all the colors written so far.
func (d *DummyLEDDriver) History() []Color {
	d.sync.Lock()
	defer d.sync.Unlock()

	return append([]Color(nil), d.history...)
}

func (d *DummyLEDDriver) Closed() bool {
	d.sync.Lock()
	defer d.sync.Unlock()

	return d.closed
}
