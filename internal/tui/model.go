// Package tui is a terminal viewer that steps through a single match.
package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/arenaforbots/internal/match"
)

// AutoplayInterval is the delay between steps while autoplay is on.
const AutoplayInterval = 150 * time.Millisecond

type tickMsg struct{}

// Model is the Bubble Tea model for the match viewer.
type Model struct {
	match  *match.Match
	logger *log.Logger

	keys     keyMap
	help     help.Model
	viewport viewport.Model

	log      []string
	seen     int // eliminations already written to the log
	autoplay bool
	err      error
	quitting bool

	width  int
	height int
}

// New creates a viewer for m. The match should not have been stepped yet.
func New(m *match.Match, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	vp := viewport.New(10, 5)
	vp.SetContent("")

	model := &Model{
		match:    m,
		logger:   logger.WithPrefix("tui"),
		keys:     defaultKeys,
		help:     help.New(),
		viewport: vp,
	}
	for _, d := range m.Roster() {
		model.appendLog(InfoStyle.Render(fmt.Sprintf("%s enters the arena", d.Name)))
	}
	return model
}

// StartAutoplay turns autoplay on before the program starts.
func (m *Model) StartAutoplay() {
	m.autoplay = true
}

// Autoplay reports whether the viewer is stepping on its own.
func (m *Model) Autoplay() bool {
	return m.autoplay
}

// Err returns the error that stopped the match, if any.
func (m *Model) Err() error {
	return m.err
}

// Log returns the lines written so far.
func (m *Model) Log() []string {
	return m.log
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.autoplay {
		return tick()
	}
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(AutoplayInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)
		return m, nil

	case tickMsg:
		if !m.autoplay {
			return m, nil
		}
		m.advance(m.match.Step)
		if m.autoplay {
			return m, tick()
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Step):
			m.advance(m.match.Step)
			return m, nil
		case key.Matches(msg, m.keys.Episode):
			m.advance(m.stepEpisode)
			return m, nil
		case key.Matches(msg, m.keys.Finish):
			m.advance(m.finish)
			return m, nil
		case key.Matches(msg, m.keys.Autoplay):
			if m.match.Finished() || m.err != nil {
				return m, nil
			}
			m.autoplay = !m.autoplay
			if m.autoplay {
				return m, tick()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// stepEpisode steps until the next environment step has run.
func (m *Model) stepEpisode() error {
	start := m.match.Episode()
	for !m.match.Finished() && m.match.Episode() == start {
		if err := m.match.Step(); err != nil {
			return err
		}
		m.record()
	}
	return nil
}

// finish steps to the end, logging after every unit of work.
func (m *Model) finish() error {
	for !m.match.Finished() {
		if err := m.match.Step(); err != nil {
			return err
		}
		m.record()
	}
	return nil
}

// advance runs fn unless the match is over and records what happened.
func (m *Model) advance(fn func() error) {
	if m.match.Finished() || m.err != nil {
		m.autoplay = false
		return
	}
	if err := fn(); err != nil {
		m.err = err
		m.autoplay = false
		m.appendLog(ErrorStyle.Render("Error: " + err.Error()))
		m.logger.Error("Match stopped", "error", err)
		return
	}
	m.record()
	if m.match.Finished() {
		m.autoplay = false
		m.appendLog(SuccessStyle.Render(m.resultLine()))
	}
}

// record logs the latest action and any new eliminations.
func (m *Model) record() {
	if actor := m.match.LastActor(); actor != nil && m.match.State() == match.Acting {
		m.appendLog(LogStyle.Render(fmt.Sprintf("Episode %d: %s acts %d", m.match.Episode(), actor.Name(), actor.LastValue)))
	}
	elims := m.match.Eliminations()
	for _, e := range elims[m.seen:] {
		if e.Champion == m.match.Winner() {
			m.appendLog(SuccessStyle.Render(fmt.Sprintf("Episode %d: %s is the last champion standing", e.Episode, e.Champion.Name())))
			continue
		}
		m.appendLog(ErrorStyle.Render(fmt.Sprintf("Episode %d: %s eliminated", e.Episode, e.Champion.Name())))
	}
	m.seen = len(elims)
}

func (m *Model) resultLine() string {
	if w := m.match.Winner(); w != nil {
		return fmt.Sprintf("Match over after %d episodes, %s wins", m.match.Episode(), w.Name())
	}
	return fmt.Sprintf("Match over after %d episodes, no winner", m.match.Episode())
}

func (m *Model) appendLog(line string) {
	m.log = append(m.log, line)
	m.viewport.SetContent(strings.Join(m.log, "\n"))
	m.viewport.GotoBottom()
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	header := HeaderStyle.Render(fmt.Sprintf("Episode %d  %s", m.match.Episode(), m.match.State()))
	sidebar := PaneStyle.Width(30).Render(m.renderSidebar())

	logWidth := max(m.width-lipgloss.Width(sidebar)-2, 20)
	logHeight := max(m.height-lipgloss.Height(header)-4, lipgloss.Height(sidebar)-2)
	m.viewport.Width = logWidth
	m.viewport.Height = logHeight
	logPane := PaneStyle.Width(logWidth).Render(m.viewport.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebar)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.help.View(m.keys))
}

func (m *Model) renderSidebar() string {
	var b strings.Builder

	if m.match.Finished() {
		b.WriteString(WarningStyle.Render("Final scores"))
		b.WriteString("\n")
		standings, err := m.match.Standings()
		if err != nil {
			b.WriteString(ErrorStyle.Render(err.Error()))
			return b.String()
		}
		for i := len(standings) - 1; i >= 0; i-- {
			s := standings[i]
			fmt.Fprintf(&b, "%-18s %3d\n", s.Name, s.Score)
		}
		return b.String()
	}

	b.WriteString(WarningStyle.Render("Champions"))
	b.WriteString("\n")
	var actor string
	if a := m.match.LastActor(); a != nil {
		actor = a.Name()
	}
	for _, d := range m.match.Roster() {
		name := ChampionStyle.Render(d.Name)
		if d.Name == actor {
			name = ActorStyle.Render(d.Name)
		}
		fmt.Fprintf(&b, "%s\n  %s %d\n", name, HealthStyle.Render(healthBar(d.Health)), d.LastValue)
	}
	if n := m.match.Pending(); n > 0 {
		b.WriteString(InfoStyle.Render(fmt.Sprintf("%d still to act", n)))
		b.WriteString("\n")
	}
	if m.autoplay {
		b.WriteString(InfoStyle.Render("autoplay"))
	}
	return b.String()
}

func healthBar(health int) string {
	health = max(0, min(health, match.StartingHealth))
	return strings.Repeat("█", health) + strings.Repeat("░", match.StartingHealth-health)
}
