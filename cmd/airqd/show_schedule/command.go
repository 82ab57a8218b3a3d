package showschedule

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"strconv"
	"time"

	"github.com/go-analyze/charts"
	"github.com/mattn/go-sixel"
	"github.com/mdouchement/airqd"
	"github.com/spf13/cobra"
)

func Command() *cobra.Command {
	var until time.Duration
	var resolution int

	cmd := &cobra.Command{
		Use:   "show-schedule",
		Short: "Show how the measurement period drives the sensor",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			seconds := int(until / time.Second)
			if seconds < 1 {
				return fmt.Errorf("--until must be at least 1s")
			}

			//
			// Compute points
			//

			interval := charts.LineSeries{Name: "wait between cycles (s)"}
			window := charts.LineSeries{Name: "averaging window (s)"}
			labels := make([]string, 0, seconds+1)

			var prev *airqd.Schedule
			for s := range seconds + 1 {
				sched := airqd.ScheduleFor(time.Duration(s) * time.Second)

				interval.Values = append(interval.Values, sched.Interval.Seconds())
				window.Values = append(window.Values, sched.Window.Seconds())
				labels = append(labels, strconv.Itoa(s))

				if prev == nil || prev.Mode != sched.Mode {
					fmt.Printf("from %4ds: %s\n", s, sched)
				}
				prev = &sched
			}

			//
			// Render chart
			//

			opt := charts.NewLineChartOptionWithSeries(charts.LineSeriesList{interval, window})
			opt.Theme = charts.GetTheme(charts.ThemeVividDark)
			opt.Padding = charts.NewBox(20, 20, 20, 20)
			opt.Title.Text = "Acquisition schedule"
			opt.Title.FontStyle.FontSize = 16
			opt.Title.Offset = charts.OffsetLeft
			opt.Legend = charts.LegendOption{
				Show:     airqd.ToPtr(true),
				Offset:   charts.OffsetCenter,
				Vertical: airqd.ToPtr(true),
				Padding:  charts.NewBox(0, 0, 0, 20),
			}
			opt.Symbol = charts.SymbolNone
			opt.LineStrokeWidth = 2
			opt.XAxis.Show = airqd.ToPtr(true)
			opt.XAxis.Title = "period (s)"
			opt.XAxis.Labels = labels
			opt.XAxis.LabelCount = min(seconds, 10)
			opt.YAxis = []charts.YAxisOption{
				{
					Show:                   airqd.ToPtr(true),
					Title:                  "s",
					Min:                    airqd.ToPtr(float64(0)),
					RangeValuePaddingScale: airqd.ToPtr(float64(0)),
				},
			}
			p := charts.NewPainter(charts.PainterOptions{
				OutputFormat: charts.ChartOutputPNG,
				Width:        resolution,
				Height:       int(float64(resolution) / (16.0 / 9.0)),
			})

			err := p.LineChart(opt)
			if err != nil {
				return fmt.Errorf("chart: %w", err)
			}

			mPNG, err := p.Bytes()
			if err != nil {
				return fmt.Errorf("chart: %w", err)
			}

			m, _, err := image.Decode(bytes.NewReader(mPNG))
			if err != nil {
				return fmt.Errorf("chart: %w", err)
			}

			codec := sixel.NewEncoder(os.Stdout)
			err = codec.Encode(m)
			if err != nil {
				return fmt.Errorf("chart: %w", err)
			}

			return nil
		},
	}
	cmd.Flags().DurationVarP(&until, "until", "u", 5*time.Minute, "The longest period displayed")
	cmd.Flags().IntVarP(&resolution, "resolution", "r", 1000, "The width size in pixel of the graph")

	return cmd
}
