package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/jetauto/pkg/motion"
	"github.com/gwillem/jetauto/pkg/sequencer"
)

const (
	headerHeight = 3 // title + status + blank line
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

// Command axes and their chart colors.
var axes = []struct {
	name  string
	color string
	value func(motion.VelocityCommand) float64
}{
	{"vx", "196", func(c motion.VelocityCommand) float64 { return c.LinearX }}, // red
	{"vy", "46", func(c motion.VelocityCommand) float64 { return c.LinearY }},  // green
	{"wz", "51", func(c motion.VelocityCommand) float64 { return c.AngularZ }}, // cyan
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	phaseStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

type dashboardModel struct {
	seq      *sequencer.Sequencer
	cancel   context.CancelFunc
	chart    *streamlinechart.Model
	state    sequencer.State
	width    int      // terminal width
	height   int      // terminal height
	logs     []string // last N log messages
	err      error
	quitting bool
}

func (m *dashboardModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// Messages from the sequencer
type stateMsg sequencer.State
type logMsg string
type runDoneMsg struct{ err error }

func waitForState(s *sequencer.Sequencer) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-s.States())
	}
}

func waitForLog(s *sequencer.Sequencer) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-s.Logs())
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *dashboardModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20 // default size before we know terminal size
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - legendHeight - footerHeight - borderSize
	if height < 10 {
		height = 10
	}
	return width, height
}

func (m *dashboardModel) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

func newDashboardModel(s *sequencer.Sequencer, cancel context.CancelFunc) dashboardModel {
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(-0.6, 0.6),
	)

	for _, axis := range axes {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(axis.color))
		chart.SetDataSetStyles(axis.name, runes.ThinLineStyle, style)
	}

	return dashboardModel{
		seq:    s,
		cancel: cancel,
		chart:  &chart,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.seq),
		waitForLog(m.seq),
	)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// Interrupt the run; runDoneMsg follows once the stop is sent.
			m.cancel()
			m.addLog("Interrupt requested")
			return m, nil
		}

	case stateMsg:
		m.state = sequencer.State(msg)
		if m.state.Phase == sequencer.PhaseMoving {
			for _, axis := range axes {
				m.chart.PushDataSet(axis.name, axis.value(m.state.Command))
			}
			m.chart.DrawAll()
		}
		return m, waitForState(m.seq)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.seq)

	case runDoneMsg:
		m.err = msg.err
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m dashboardModel) statusLine() string {
	st := m.state
	if st.Total == 0 {
		return statusStyle.Render("Waiting for first step...")
	}
	progress := ""
	if st.Duration > 0 {
		progress = fmt.Sprintf(" %4.1fs / %4.1fs", st.Elapsed.Seconds(), st.Duration.Seconds())
	}
	return fmt.Sprintf("%s  loop %d  step %d/%d  %s%s",
		phaseStyle.Render(strings.ToUpper(string(st.Phase))),
		st.Loop, st.Index, st.Total, st.Step, statusStyle.Render(progress))
}

func (m dashboardModel) View() string {
	if m.quitting {
		if m.err != nil {
			return fmt.Sprintf("Run stopped: %v\n", m.err)
		}
		return "Pattern complete.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("JetAuto Run"))
	sb.WriteString(fmt.Sprintf(" - %d Hz", m.seq.Hz()))
	if id := m.seq.RunID(); id != "" {
		sb.WriteString(statusStyle.Render("  run " + id[:8]))
	}
	sb.WriteString("\n")
	sb.WriteString(m.statusLine())
	sb.WriteString("\n\n")

	// Chart
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	// Legend
	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(m.width - 4).
		Foreground(lipgloss.Color("9")) // bright red

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Press 'q' to stop")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func renderLegend() string {
	var items []string
	for _, axis := range axes {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(axis.color)).Bold(true)
		item := colorStyle.Render("━━") + " " + axis.name
		items = append(items, item)
	}
	return strings.Join(items, "  ")
}

// runDashboard runs the sequence in the background while the dashboard owns
// the terminal.
func runDashboard(ctx context.Context, s *sequencer.Sequencer, seq motion.Sequence) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newDashboardModel(s, cancel), tea.WithAltScreen())

	errCh := make(chan error, 1)
	go func() {
		err := s.Run(runCtx, seq)
		errCh <- err
		p.Send(runDoneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-errCh
		return fmt.Errorf("dashboard: %w", err)
	}
	return <-errCh
}
