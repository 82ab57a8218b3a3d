package airqd

import (
	"context"
	"time"

	"github.com/mdouchement/logger"
)

// WarmUpCommand is displayed until the first measurement is received.
var WarmUpCommand = Blinking(ColorBlue, 500*time.Millisecond)

// Controller renders the measurements of the sensor on the status LED.
type Controller struct {
	acq    *Acquisition
	led    LEDDriver
	shaper Shaper
	period time.Duration
	done   chan struct{}
}

func New(cfg Config, acq *Acquisition, led LEDDriver, shaper Shaper) *Controller {
	return &Controller{
		acq:    acq,
		led:    led,
		shaper: shaper,
		period: cfg.Period.Duration,
		done:   make(chan struct{}),
	}
}

// Launch starts the LED command processor and an acquisition session.
// Both are stopped when ctx is canceled, Done is then closed.
func (c *Controller) Launch(ctx context.Context) error {
	log := logger.LogWith(ctx)

	leds, ledDone := StartLED(log, c.led)
	leds <- WarmUpCommand

	session, err := c.acq.StartSession(ctx, c.period)
	if err != nil {
		close(leds)
		<-ledDone
		return err
	}

	go func() {
		defer close(c.done)

		current := WarmUpCommand
		for m := range session.C {
			log.Infof("PM1.0: %d µg/m³ - PM2.5: %d µg/m³ (%d samples)", m.PM1, m.PM25, m.Samples)

			cmd := c.shaper.Eval(m)
			if cmd == current {
				continue
			}

			log.Infof("Status LED: %s", cmd)
			leds <- cmd
			current = cmd
		}

		close(leds)
		<-ledDone
	}()

	return nil
}

func (c *Controller) Done() <-chan struct{} {
	return c.done
}
