package watch

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mdouchement/airqd"
)

const maxRows = 500

type model struct {
	table  table.Model
	header string
	shaper airqd.Shaper
	rows   []table.Row
}

var headerStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#00afff")).
	Padding(0, 1)

func newTUI(port string, sched airqd.Schedule, shaper airqd.Shaper) *model {
	columns := []table.Column{
		{Title: "Time", Width: 10},
		{Title: "PM1.0", Width: 12},
		{Title: "PM2.5", Width: 12},
		{Title: "Samples", Width: 8},
		{Title: "Status", Width: 30},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		Foreground(lipgloss.Color("#00afff")).
		BorderForeground(lipgloss.Color("#00afff")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#ffffff")).
		Bold(false)
	t.SetStyles(s)

	return &model{
		table:  t,
		header: headerStyle.Render(fmt.Sprintf("%s - %s - awaiting first measurement…", port, sched)),
		shaper: shaper,
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(msg.Height - 1) // header
	case airqd.Measurement:
		m.update(msg)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	return m.header + "\n" + m.table.View()
}

func (m *model) update(measurement airqd.Measurement) {
	row := table.Row{
		measurement.MeasuredAt.Format("15:04:05"),
		fmt.Sprintf("%4d µg/m³", measurement.PM1),
		fmt.Sprintf("%4d µg/m³", measurement.PM25),
		fmt.Sprintf("%d", measurement.Samples),
		m.shaper.Eval(measurement).String(),
	}

	// Newest first, only the current screen session is kept.
	m.rows = append([]table.Row{row}, m.rows...)
	if len(m.rows) > maxRows {
		m.rows = m.rows[:maxRows]
	}

	m.header = headerStyle.Render(fmt.Sprintf("last measurement at %s - PM2.5 %d µg/m³", row[0], measurement.PM25))
	m.table.SetRows(m.rows)
}
