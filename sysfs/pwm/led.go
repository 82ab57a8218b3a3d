package pwm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mdouchement/airqd"
	"github.com/mdouchement/airqd/sysfs/environment"
)

//
// Linux PWM sysfs interface:
// https://www.kernel.org/doc/Documentation/pwm.txt
//
// /sys/class/pwm/pwmchip0/
//   export  unexport  npwm  pwm0/
//                           period  duty_cycle  enable  polarity
//

var ErrExportTimeout = errors.New("exported channel did not show up")

const exportTimeout = time.Second

// A Channel is one exported PWM output.
type Channel struct {
	chip     string
	index    int
	dir      string
	period   uint64 // ns
	exported bool   // by us
}

// An LED is a tri-color LED wired on three PWM channels of the same chip.
type LED struct {
	red, green, blue *Channel
}

// Open exports and enables the given channels (red, green, blue) of pwmchip<chip>.
func Open(chip int, channels []int, frequency int) (*LED, error) {
	if len(channels) != 3 {
		return nil, fmt.Errorf("pwm: %d channels provided, expected 3", len(channels))
	}
	if frequency <= 0 {
		return nil, fmt.Errorf("pwm: invalid frequency %d", frequency)
	}

	dir := environment.SysPath("class", "pwm", "pwmchip"+strconv.Itoa(chip))
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("pwm: %w", err)
	}

	period := uint64(time.Second) / uint64(frequency)

	var opened []*Channel
	for _, index := range channels {
		ch, err := openChannel(dir, index, period)
		if err != nil {
			for _, ch := range opened {
				ch.Close()
			}
			return nil, fmt.Errorf("pwm%d: %w", index, err)
		}

		opened = append(opened, ch)
	}

	return &LED{
		red:   opened[0],
		green: opened[1],
		blue:  opened[2],
	}, nil
}

func openChannel(chip string, index int, period uint64) (*Channel, error) {
	ch := &Channel{
		chip:   chip,
		index:  index,
		dir:    filepath.Join(chip, "pwm"+strconv.Itoa(index)),
		period: period,
	}

	if _, err := os.Stat(ch.dir); os.IsNotExist(err) {
		if err = write(filepath.Join(chip, "export"), strconv.Itoa(index)); err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
		ch.exported = true

		// udev may take some time to create and chmod the channel's directory.
		deadline := time.Now().Add(exportTimeout)
		for {
			if _, err = os.Stat(filepath.Join(ch.dir, "enable")); err == nil {
				break
			}
			if time.Now().After(deadline) {
				ch.Close()
				return nil, ErrExportTimeout
			}
			time.Sleep(20 * time.Millisecond)
		}
	}

	if err := ch.setup(); err != nil {
		ch.Close()
		return nil, err
	}

	return ch, nil
}

func (ch *Channel) setup() error {
	// The duty cycle cannot be greater than the period, reset it before changing the period.
	if err := ch.write("duty_cycle", "0"); err != nil {
		return err
	}
	if err := ch.write("period", strconv.FormatUint(ch.period, 10)); err != nil {
		return err
	}
	if err := ch.SetDuty(airqd.ColorOff.R); err != nil {
		return err
	}
	if err := ch.write("enable", "1"); err != nil {
		return err
	}

	return nil
}

// SetDuty sets the duty of the channel on a 0-255 scale.
func (ch *Channel) SetDuty(duty uint8) error {
	ns := ch.period * uint64(duty) / 255
	return ch.write("duty_cycle", strconv.FormatUint(ns, 10))
}

// Duty returns the current duty of the channel on a 0-255 scale.
func (ch *Channel) Duty() (uint8, error) {
	raw, err := os.ReadFile(filepath.Join(ch.dir, "duty_cycle"))
	if err != nil {
		return 0, err
	}

	ns, err := strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0, err
	}
	if ch.period == 0 {
		return 0, nil
	}

	return uint8(min((ns*255+ch.period/2)/ch.period, 255)), nil
}

func (ch *Channel) Close() error {
	var errs []error
	errs = append(errs, ch.write("enable", "0"))
	if ch.exported {
		errs = append(errs, write(filepath.Join(ch.chip, "unexport"), strconv.Itoa(ch.index)))
	}

	return errors.Join(errs...)
}

func (ch *Channel) write(name, value string) error {
	return write(filepath.Join(ch.dir, name), value)
}

func write(path, value string) error {
	return os.WriteFile(path, []byte(value), 0o644)
}

//
//
//

func (l *LED) SetColor(c airqd.Color) error {
	return errors.Join(
		l.red.SetDuty(c.R),
		l.green.SetDuty(c.G),
		l.blue.SetDuty(c.B),
	)
}

func (l *LED) Off() error {
	return l.SetColor(airqd.ColorOff)
}

// Color returns the duties currently applied on the channels.
func (l *LED) Color() (airqd.Color, error) {
	var c airqd.Color
	var err error
	if c.R, err = l.red.Duty(); err != nil {
		return c, err
	}
	if c.G, err = l.green.Duty(); err != nil {
		return c, err
	}
	c.B, err = l.blue.Duty()
	return c, err
}

// Close turns the LED off and releases the channels.
func (l *LED) Close() error {
	return errors.Join(
		l.Off(),
		l.red.Close(),
		l.green.Close(),
		l.blue.Close(),
	)
}
