package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mdouchement/airqd"
	"github.com/mdouchement/airqd/pms"
	"github.com/mdouchement/logger"
	"github.com/spf13/cobra"
)

func Command() *cobra.Command {
	var cpath string
	var lpath string
	var dummy bool
	var period time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Start a sensor session and display its measurements",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := airqd.Load(cpath)
			if err != nil {
				return err
			}
			if period > 0 {
				cfg.Period.Duration = period
			}

			// The terminal belongs to the TUI.
			var w io.Writer = io.Discard
			if lpath != "" {
				f, err := os.OpenFile(lpath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			log := logger.WrapSlogHandler(logger.NewSlogTextHandler(w, &logger.SlogTextOption{
				Level: slog.LevelDebug,
			}))

			var port airqd.SerialPort = airqd.NewDummyPMS()
			name := "dummy"
			if !dummy {
				p, err := pms.Open(cfg.Serial.Port, cfg.Serial.BaudRate)
				if err != nil {
					return fmt.Errorf("sensor: %w", err)
				}
				p.SetLogger(log)
				defer p.Close()

				port = p
				name = p.Port()
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			session, err := airqd.NewAcquisition(port, log).StartSession(ctx, cfg.Period.Duration)
			if err != nil {
				return err
			}

			m := newTUI(name, session.Schedule, airqd.NewLevelShaper(cfg))
			tui := tea.NewProgram(m, tea.WithAltScreen())

			go func() {
				for measurement := range session.C {
					tui.Send(measurement)
				}
			}()

			_, err = tui.Run()

			// Put the sensor asleep before releasing the port.
			session.Stop()
			<-session.Done()
			return err
		},
	}
	cmd.Flags().StringVarP(&cpath, "config", "c", "/etc/airqd/airqd.yml", "Configfile path")
	cmd.Flags().StringVarP(&lpath, "log", "l", "", "Write logs to the given file")
	cmd.Flags().BoolVarP(&dummy, "dummy", "", false, "Use a dummy sensor")
	cmd.Flags().DurationVarP(&period, "period", "p", 0, "Override the measurement period of the config")

	return cmd
}
