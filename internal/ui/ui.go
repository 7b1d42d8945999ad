package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shirou/gopsutil/v3/load"

	"github.com/Dicklesworthstone/cpumon/internal/model"
	"github.com/Dicklesworthstone/cpumon/internal/sampler"
)

// Model polls the sampler's accessor and renders one row per unit.
type Model struct {
	src     sampler.Accessor
	scaling []bool
	latest  model.Snapshot
	loadAvg *load.AvgStat
	loadFn  func() (*load.AvgStat, error)
	width   int
	height  int
}

func New(src sampler.Accessor) *Model {
	scaling := make([]bool, src.Units())
	for i := range scaling {
		scaling[i] = src.HasFrequencyScaling(i)
	}
	return &Model{
		src:     src,
		scaling: scaling,
		latest:  model.Zero(src.Units()),
		loadFn:  load.Avg,
		width:   120,
		height:  40,
	}
}

// Messages
type tickMsg struct{}

func tickCmd() tea.Cmd { return tea.Tick(time.Second/5, func(time.Time) tea.Msg { return tickMsg{} }) }

func (m *Model) Init() tea.Cmd { return tickCmd() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tickMsg:
		m.latest = m.src.Snapshot()
		if avg, err := m.loadFn(); err == nil {
			m.loadAvg = avg
		}
		return m, tickCmd()
	}
	return m, nil
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	gaugeFill   = "█"
	gaugeEmpty  = "░"
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1).
			MarginRight(1)
)

func (m *Model) View() string {
	s := m.latest

	status := "warming up"
	if s.State == model.StateSteady {
		status = s.Timestamp.Format("Mon Jan 2 15:04:05 MST 2006")
	}
	header := titleStyle.Render("CPU Monitor") + "  " + subtleStyle.Render(status)
	if m.loadAvg != nil {
		header += "  " + subtleStyle.Render(fmt.Sprintf("load %.2f %.2f %.2f",
			m.loadAvg.Load1, m.loadAvg.Load5, m.loadAvg.Load15))
	}

	width := gaugeWidth(m.width)
	rows := make([]string, 0, len(s.Units))
	for i, u := range s.Units {
		row := fmt.Sprintf("%-16s %s", unitLabel(i, u.Utilization), gaugeBar(u.Utilization, width))
		if i < len(m.scaling) && m.scaling[i] {
			row += "  freq " + gaugeBar(u.Frequency, width/2)
		}
		rows = append(rows, row)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, card("CPU", strings.Join(rows, "\n")))
}

// unitLabel numbers units from 1, as the desktop graph legend did.
func unitLabel(i int, pct float64) string {
	return fmt.Sprintf("CPU%d  %0.1f %%", i+1, pct)
}

// Helpers
func gaugeBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int((pct / 100) * float64(width))
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %5.1f%%",
		strings.Repeat(gaugeFill, filled),
		strings.Repeat(gaugeEmpty, width-filled),
		pct)
}

func gaugeWidth(termWidth int) int {
	w := (termWidth - 40) / 2
	if w < 10 {
		return 10
	}
	if w > 40 {
		return 40
	}
	return w
}

func card(title, body string) string {
	titleStr := labelStyle.Render(title)
	content := titleStr + "\n" + body
	return cardStyle.Render(content)
}

// Run starts the Bubble Tea program. Cancelling ctx closes it cleanly.
func Run(ctx context.Context, src sampler.Accessor) error {
	prog := tea.NewProgram(New(src), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
