package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"regexp"
	"runtime"
	"syscall"

	"github.com/mdouchement/airqd"
	showports "github.com/mdouchement/airqd/cmd/airqd/show_ports"
	showschedule "github.com/mdouchement/airqd/cmd/airqd/show_schedule"
	"github.com/mdouchement/airqd/cmd/airqd/watch"
	"github.com/mdouchement/airqd/pms"
	"github.com/mdouchement/airqd/sysfs/pwm"
	"github.com/mdouchement/logger"
	"github.com/spf13/cobra"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	cpath  string
	dummy  bool
	period airqd.Duration
)

func main() {
	cmd := &cobra.Command{
		Use:     "airqd",
		Short:   "Air quality status light controller",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    cobra.NoArgs,
		RunE:    daemon,
	}
	cmd.Flags().StringVarP(&cpath, "config", "c", "/etc/airqd/airqd.yml", "Configfile path")
	cmd.Flags().BoolVarP(&dummy, "dummy", "", false, "Start airqd with a dummy sensor and LED")
	cmd.Flags().DurationVarP(&period.Duration, "period", "p", 0, "Override the measurement period of the config")
	cmd.AddCommand(showschedule.Command())
	cmd.AddCommand(showports.Command())
	cmd.AddCommand(watch.Command())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Version for airqd",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(cmd.Version)
		},
	})

	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func daemon(_ *cobra.Command, args []string) error {
	cfg, err := airqd.Load(cpath)
	if err != nil {
		return err
	}
	if period.Duration > 0 {
		cfg.Period = period
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	h := logger.NewSlogTextHandler(os.Stdout, &logger.SlogTextOption{
		Level:            level,
		ForceColors:      true,
		ForceFormatting:  true,
		PrefixRE:         regexp.MustCompile(`^(\[.*?\])\s`),
		DisableTimestamp: true, // Provided by journalctl
	})
	log := logger.WrapSlogHandler(h)
	ctx := logger.WithLogger(context.Background(), log)

	log.Infof("airqd version %s", version)

	//
	// Hardware is acquired before starting any worker.
	//

	dled, dpms := airqd.NewDummyLEDDriver(), airqd.NewDummyPMS()
	dled.SetLogger(log)
	dpms.SetLogger(log)

	var led airqd.LEDDriver = dled
	var port airqd.SerialPort = dpms
	if !dummy {
		l, err := pwm.Open(cfg.LED.Chip, cfg.LED.Channels, cfg.LED.Frequency)
		if err != nil {
			return fmt.Errorf("led: %w", err)
		}
		led = l

		p, err := pms.Open(cfg.Serial.Port, cfg.Serial.BaudRate)
		if err != nil {
			led.Close()
			return fmt.Errorf("sensor: %w", err)
		}
		if cfg.Debug {
			p.SetLogger(log)
		}
		defer p.Close()
		port = p

		log.Infof("Sensor port `%s` - LED pwmchip%d %v @ %dHz", p.Port(), cfg.LED.Chip, cfg.LED.Channels, cfg.LED.Frequency)
	}

	log.Infof("Measurement period %s (%s)", cfg.Period, airqd.ScheduleFor(cfg.Period.Duration))

	ctx, cancel := context.WithCancel(ctx)

	controller := airqd.New(cfg, airqd.NewAcquisition(port, log), led, airqd.NewLevelShaper(cfg))
	if err = controller.Launch(ctx); err != nil {
		cancel()
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	cancel()
	<-controller.Done()

	log.Info("Gracefully shutdown")
	return nil
}
