package airqd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mdouchement/airqd/pms"
	"github.com/mdouchement/logger"
)

var ErrSessionActive = errors.New("an acquisition session is already running")

type timing struct {
	settle       time.Duration // after the first wake up of an active session
	wakeUp       time.Duration
	frameTimeout time.Duration
	drain        time.Duration
}

var defaultTiming = timing{
	settle:       100 * time.Millisecond,
	wakeUp:       WakeUpDelay,
	frameTimeout: SingleReadWindow,
	drain:        time.Second,
}

// Acquisition polls the particulate matter sensor, one session at a time.
type Acquisition struct {
	mu     sync.Mutex // held by the session for the duration of a cycle
	port   SerialPort
	token  chan struct{}
	timing timing
	log    logger.Logger
}

func NewAcquisition(port SerialPort, log logger.Logger) *Acquisition {
	return &Acquisition{
		port:   port,
		token:  make(chan struct{}, 1),
		timing: defaultTiming,
		log:    log,
	}
}

// A Session produces measurements on C until it is stopped or its context is canceled.
// C is closed once the sensor has been put asleep.
type Session struct {
	C        <-chan Measurement
	Schedule Schedule
	stop     chan struct{}
	once     sync.Once
	done     chan struct{}
}

// Stop asks the session to end. The current cycle is abandoned at its next wait, an in-progress read
// runs until its own timeout.
func (s *Session) Stop() {
	s.once.Do(func() {
		close(s.stop)
	})
}

// Done is closed when the session is over and a new one can be started.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// wait returns false if the session must end before d is elapsed.
func (s *Session) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-s.stop:
		return false
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// StartSession starts polling the sensor for one measurement every period.
// It fails with ErrSessionActive while a previous session is not over.
func (a *Acquisition) StartSession(ctx context.Context, period time.Duration) (*Session, error) {
	if period < 0 {
		return nil, fmt.Errorf("period: negative value %s", period)
	}

	select {
	case a.token <- struct{}{}:
	default:
		return nil, ErrSessionActive
	}

	out := make(chan Measurement, 4)
	s := &Session{
		C:        out,
		Schedule: ScheduleFor(period),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	go a.run(ctx, s, out)
	return s, nil
}

func (a *Acquisition) run(ctx context.Context, s *Session, out chan<- Measurement) {
	defer func() {
		a.mu.Lock()
		if a.send(pms.CommandSleep) == nil {
			a.log.Info("Sensor put asleep")
		}
		a.mu.Unlock()

		close(out)
		<-a.token
		close(s.done)
	}()

	a.log.Infof("Acquisition session started (%s)", s.Schedule)

	if !a.setup(ctx, s) {
		a.log.Info("Acquisition session stopped during warm-up")
		return
	}

	for {
		if !s.wait(ctx, s.Schedule.Interval) {
			a.log.Info("Acquisition session stopped")
			return
		}

		m, ok := a.cycle(s.Schedule)
		if !ok {
			continue
		}

		a.log.Debugf("Measurement PM1.0=%d PM2.5=%d over %d samples", m.PM1, m.PM25, m.Samples)

		select {
		case out <- m:
		case <-s.stop:
			a.log.Info("Acquisition session stopped")
			return
		case <-ctx.Done():
			a.log.Info("Acquisition session stopped")
			return
		}
	}
}

// setup wakes the sensor up and selects the reporting mode of the session.
func (a *Acquisition) setup(ctx context.Context, s *Session) bool {
	a.mu.Lock()
	a.send(pms.CommandWake)
	a.mu.Unlock()

	settle, mode := a.timing.wakeUp, pms.CommandPassive
	if s.Schedule.Mode == PowerActive {
		settle, mode = a.timing.settle, pms.CommandActive
	}

	if !s.wait(ctx, settle) {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.send(mode)
	if s.Schedule.Mode == PowerSleep {
		// Each cycle wakes it up again.
		a.send(pms.CommandSleep)
	}
	return true
}

func (a *Acquisition) cycle(sched Schedule) (Measurement, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if sched.Mode == PowerSleep {
		if err := a.send(pms.CommandWake); err != nil {
			return Measurement{}, false
		}

		time.Sleep(a.timing.wakeUp)

		if err := a.send(pms.CommandPassive); err != nil {
			return Measurement{}, false
		}
	}

	if err := a.port.ClearInput(); err != nil {
		a.log.WithError(err).Error("Could not clear serial input")
	}

	if sched.Window <= SingleReadWindow {
		r, err := pms.ReadFrame(a.port, a.timing.frameTimeout)
		if errors.Is(err, pms.ErrTimeout) {
			// Active sensors stream on their own pace.
			a.log.WithError(err).Debug("No frame received yet")
			return Measurement{}, false
		}
		if err != nil {
			a.log.WithError(err).Error("Could not read measurement")
			return Measurement{}, false
		}

		return Measurement{
			PM1:        uint32(r.PM1Atm),
			PM25:       uint32(r.PM25Atm),
			Samples:    1,
			MeasuredAt: time.Now(),
		}, true
	}

	m, ok := a.average(sampler{a.port}, sched.Window)
	if sched.Mode == PowerSleep {
		a.send(pms.CommandSleep)
	}
	return m, ok
}

// average reads frames from s during window and returns their mean.
func (a *Acquisition) average(s Sampler, window time.Duration) (Measurement, bool) {
	var pm1, pm25, n uint32

	start := time.Now()
	for time.Since(start) < window {
		if err := s.RequestRead(); err != nil {
			a.log.WithError(err).Debug("Could not request frame")
		}

		r, err := pms.ReadFrame(s, a.timing.frameTimeout)
		if err != nil {
			a.log.WithError(err).Debug("Frame skipped")
			continue
		}

		pm1 += uint32(r.PM1Atm)
		pm25 += uint32(r.PM25Atm)
		n++
	}

	// Let the last requested frame arrive before the caller touches the port again.
	time.Sleep(a.timing.drain)

	if n == 0 {
		a.log.Warnf("No valid frame received in %s", window)
		return Measurement{}, false
	}

	return Measurement{
		PM1:        pm1 / n,
		PM25:       pm25 / n,
		Samples:    n,
		MeasuredAt: time.Now(),
	}, true
}

func (a *Acquisition) send(c pms.Command) error {
	err := a.port.Send(c)
	if err != nil {
		a.log.WithError(err).Errorf("Could not send %s command", c)
	}
	return err
}
