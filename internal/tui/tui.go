// Package tui is the terminal front end: a live map of the village, the
// roster, and the scrolling chronicle of everything the characters do.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tatianab/village-sim/internal/engine"
	"github.com/tatianab/village-sim/internal/story"
)

type sessionState int

const (
	stateIdle sessionState = iota
	stateThinking
	stateError
)

type model struct {
	state     sessionState
	engine    *engine.Engine
	narrator  *story.Narrator
	chapter   string
	adaptive  bool
	narrate   bool
	viewport  viewport.Model
	spinner   spinner.Model
	err       error
	width     int
	height    int
	turnCount int
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))

	logStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	markerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4444")).
			Bold(true)
)

// NewModel builds the TUI over an engine and an optional narrator.
func NewModel(eng *engine.Engine, narrator *story.Narrator, adaptive, narrate bool) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return model{
		state:    stateIdle,
		engine:   eng,
		narrator: narrator,
		adaptive: adaptive,
		narrate:  narrate && narrator != nil,
		spinner:  sp,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

type turnDoneMsg struct {
	logs []string
}

type narrationDoneMsg struct {
	page string
}

type errMsg struct {
	err error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit

		case " ", "enter":
			if m.state == stateIdle {
				m.state = stateThinking
				return m, tea.Batch(m.spinner.Tick, m.runTurn())
			}

		case "a":
			m.adaptive = !m.adaptive
			return m, nil

		case "n":
			if m.narrator != nil {
				m.narrate = !m.narrate
			}
			return m, nil
		}

		// Remaining keys (arrows, page up/down) drive log scrolling.
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = logHeight(msg.Height, m.engine.Seed().GridSize)
		m.viewport.SetContent(m.renderLog())

	case turnDoneMsg:
		m.turnCount++
		if m.narrate && len(msg.logs) > 0 {
			return m, tea.Batch(m.spinner.Tick, m.runNarration(msg.logs))
		}
		m.state = stateIdle
		m.viewport.SetContent(m.renderLog())
		m.viewport.GotoTop()
		return m, nil

	case narrationDoneMsg:
		m.state = stateIdle
		if msg.page != "" {
			m.chapter += "\n" + msg.page
		}
		m.viewport.SetContent(m.renderLog())
		m.viewport.GotoTop()
		return m, nil

	case errMsg:
		m.err = msg.err
		m.state = stateError
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) View() string {
	if m.state == stateError {
		return fmt.Sprintf("\n  Error: %v\n\nPress q to quit.\n", m.err)
	}

	seed := m.engine.Seed()
	st := m.engine.State()

	header := titleStyle.Render(seed.ScenarioName) + headerStyle.Render(fmt.Sprintf(
		"  |  Jour %d - %s  |  %s  |  Tour %d",
		st.Clock.Day(), st.Clock.HourString(), st.Weather, m.turnCount))

	mapView := m.renderMap()
	roster := m.renderRoster()
	top := lipgloss.JoinHorizontal(lipgloss.Top, mapView, roster)

	status := ""
	if m.state == stateThinking {
		status = m.spinner.View() + " Les personnages réfléchissent..."
	}

	mode := "fixe"
	if m.adaptive {
		mode = "adaptatif"
	}
	narr := "off"
	if m.narrate {
		narr = "on"
	}
	help := helpStyle.Render(fmt.Sprintf(
		"space: tour suivant · a: horloge (%s) · n: narration (%s) · ↑/↓: logs · q: quitter", mode, narr))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		top,
		status,
		m.viewport.View(),
		help,
	)
}

// renderMap draws the terrain grid with seed colors and overlays a
// marker initial wherever a character stands.
func (m model) renderMap() string {
	seed := m.engine.Seed()
	chars := m.engine.State().Characters

	occupied := make(map[[2]int]string)
	for name, c := range chars {
		occupied[c.Pos] = name
	}

	var b strings.Builder
	for y, row := range seed.MapLayout {
		for x, code := range []rune(row) {
			if name, ok := occupied[[2]int{x, y}]; ok {
				b.WriteString(markerStyle.Render(string([]rune(name)[0])))
				continue
			}
			cell := string(code)
			if hex, ok := seed.MapColors[cell]; ok {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(cell))
			} else {
				b.WriteString(cell)
			}
		}
		if y < len(seed.MapLayout)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m model) renderRoster() string {
	chars := m.engine.State().Characters
	names := make([]string, 0, len(chars))
	for name := range chars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(titleStyle.Render("PERSONNAGES") + "\n")
	for _, name := range names {
		c := chars[name]
		b.WriteString(fmt.Sprintf("%s  Lvl %d  ⚡%d  (%d,%d)\n", name, c.Level, c.Energy, c.Pos[0], c.Pos[1]))
	}
	width := m.width - m.engine.Seed().GridSize - 4
	if width < 20 {
		width = 20
	}
	return panelStyle.Width(width).Render(b.String())
}

func (m model) renderLog() string {
	st := m.engine.State()
	var b strings.Builder
	if m.chapter != "" {
		b.WriteString(titleStyle.Render("CHRONIQUE") + "\n" + logStyle.Render(m.chapter) + "\n\n")
	}
	for _, line := range st.Logs {
		b.WriteString(logStyle.Render(line) + "\n\n")
	}
	return b.String()
}

func (m model) runTurn() tea.Cmd {
	return func() tea.Msg {
		var logs []string
		if m.adaptive {
			logs = m.engine.StepAdaptive(context.Background(), m.chapter)
		} else {
			logs = m.engine.Step(context.Background(), m.chapter)
		}
		return turnDoneMsg{logs}
	}
}

func (m model) runNarration(logs []string) tea.Cmd {
	eng := m.engine
	narrator := m.narrator
	chapter := m.chapter
	return func() tea.Msg {
		var page strings.Builder
		err := narrator.NarrateTurn(context.Background(), eng.Seed(), eng.State().Clock, chapter, logs, "",
			func(chunk string) error {
				page.WriteString(chunk)
				return nil
			})
		if err != nil {
			// Narration is decoration; a failed page never blocks play.
			return narrationDoneMsg{""}
		}
		return narrationDoneMsg{page.String()}
	}
}

func logHeight(total, gridSize int) int {
	h := total - gridSize - 8
	if h < 5 {
		h = 5
	}
	return h
}

// Run starts the program in the alternate screen.
func Run(eng *engine.Engine, narrator *story.Narrator, adaptive, narrate bool) error {
	p := tea.NewProgram(NewModel(eng, narrator, adaptive, narrate), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
