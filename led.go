package airqd

import (
	"fmt"
	"time"

	"github.com/mdouchement/logger"
)

type LEDMode uint8

const (
	LEDOff LEDMode = iota
	LEDContinuous
	LEDBlinking
)

// A LEDCommand is the rendering requested to the LED command processor.
type LEDCommand struct {
	Mode   LEDMode
	Color  Color
	Period time.Duration // Blinking only, duration of each on/off phase
}

func Off() LEDCommand {
	return LEDCommand{Mode: LEDOff, Color: ColorOff}
}

func Continuous(c Color) LEDCommand {
	return LEDCommand{Mode: LEDContinuous, Color: c}
}

func Blinking(c Color, period time.Duration) LEDCommand {
	if period <= 0 {
		return Continuous(c)
	}
	return LEDCommand{Mode: LEDBlinking, Color: c, Period: period}
}

func (c LEDCommand) String() string {
	switch c.Mode {
	case LEDOff:
		return "off"
	case LEDContinuous:
		return c.Color.String()
	case LEDBlinking:
		return fmt.Sprintf("%s blinking every %s", c.Color, c.Period)
	default:
		return fmt.Sprintf("unknown mode %d", c.Mode)
	}
}

// StartLED starts the LED command processor which becomes the owner of drv.
// Commands are rendered in the order they are sent. Closing cmds stops the processor,
// drv is then closed and done is closed.
func StartLED(log logger.Logger, drv LEDDriver) (cmds chan<- LEDCommand, done <-chan struct{}) {
	ch := make(chan LEDCommand, 8)
	over := make(chan struct{})

	go func() {
		defer close(over)
		runLED(log, drv, ch)
	}()

	return ch, over
}

func runLED(log logger.Logger, drv LEDDriver, cmds <-chan LEDCommand) {
	defer func() {
		if err := drv.Close(); err != nil {
			log.WithError(err).Error("Could not release LED driver")
		}
	}()

	current := Off()
	phaseOn := true

	for {
		renderLED(log, drv, current, phaseOn)

		var timer *time.Timer
		var timeout <-chan time.Time
		if current.Mode == LEDBlinking {
			timer = time.NewTimer(current.Period)
			timeout = timer.C
		}

		select {
		case cmd, ok := <-cmds:
			if timer != nil {
				timer.Stop()
			}
			if !ok {
				log.Info("LED command channel closed, exiting")
				return
			}

			if cmd.Mode == LEDBlinking && cmd.Period <= 0 {
				cmd = Continuous(cmd.Color)
			}
			current = cmd
			phaseOn = true
		case <-timeout:
			phaseOn = !phaseOn
		}
	}
}

func renderLED(log logger.Logger, drv LEDDriver, cmd LEDCommand, phaseOn bool) {
	var err error
	switch {
	case cmd.Mode == LEDOff:
		err = drv.Off()
	case cmd.Mode == LEDBlinking && !phaseOn:
		err = drv.Off()
	default:
		err = drv.SetColor(cmd.Color)
	}

	if err != nil {
		log.WithError(err).Errorf("Could not render LED %s", cmd)
	}
}
