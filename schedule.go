package airqd

import (
	"fmt"
	"time"
)

type PowerMode uint8

const (
	// PowerActive keeps the sensor awake, streaming frames by itself.
	PowerActive PowerMode = iota
	// PowerPassive keeps the sensor awake, frames are requested one by one.
	PowerPassive
	// PowerSleep puts the sensor asleep between two measurements.
	PowerSleep
)

const (
	// WakeUpDelay is the warm-up duration the sensor needs once woken up.
	WakeUpDelay = 5 * time.Second
	// SleepWindow is the averaging window used when the sensor sleeps between measurements.
	SleepWindow = 30 * time.Second
	// SingleReadWindow is the largest window read as one frame instead of an average.
	SingleReadWindow = 3 * time.Second

	shortInterval = 10 * time.Millisecond
)

func (m PowerMode) String() string {
	switch m {
	case PowerActive:
		return "active"
	case PowerPassive:
		return "passive"
	case PowerSleep:
		return "sleep"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// Schedule is the timing of an acquisition session.
type Schedule struct {
	Interval time.Duration `json:"interval"` // Wait between two cycles
	Window   time.Duration `json:"window"`   // Averaging window, 0 means a single frame
	Mode     PowerMode     `json:"mode"`
}

func (s Schedule) String() string {
	return fmt.Sprintf("mode: %s - interval: %s - window: %s", s.Mode, s.Interval, s.Window)
}

// ScheduleFor returns the timing of a session that measures every period.
// Only whole seconds of period are considered.
func ScheduleFor(period time.Duration) Schedule {
	seconds := max(period, 0) / time.Second

	switch {
	case seconds <= 3:
		return Schedule{Interval: shortInterval, Window: 0, Mode: PowerActive}
	case seconds < 60:
		return Schedule{Interval: shortInterval, Window: seconds * time.Second, Mode: PowerPassive}
	default:
		return Schedule{
			Interval: seconds*time.Second - WakeUpDelay - SleepWindow,
			Window:   SleepWindow,
			Mode:     PowerSleep,
		}
	}
}
