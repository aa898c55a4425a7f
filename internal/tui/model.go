// Package tui provides the Bubble Tea counter drill interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/kazoe/internal/catalog"
	"github.com/verte-zerg/kazoe/internal/generator"
	"github.com/verte-zerg/kazoe/internal/modality"
	"github.com/verte-zerg/kazoe/internal/model"
	"github.com/verte-zerg/kazoe/internal/session"
	"github.com/verte-zerg/kazoe/internal/settings"
	"github.com/verte-zerg/kazoe/internal/stats"
)

type screen int

const (
	screenGame screen = iota
	screenCounters
)

var (
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	readingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	keyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#8A6A2A"))
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	clockFaceStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	summaryStyle = lipgloss.NewStyle().
			Padding(1, 3).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
)

// continuationMsg delivers a session continuation after its delay.
type continuationMsg struct {
	k session.Continuation
}

// Options wires the game screen.
type Options struct {
	Catalog   *catalog.Catalog
	Generator *generator.Generator
	Registry  *modality.Registry
	Tracker   *stats.Tracker
	Settings  *settings.Settings
	History   session.History
	Voice     session.Voice
	Log       logrus.FieldLogger
	Config    model.Config
}

// Model implements the Bubble Tea game UI and receives controller events.
type Model struct {
	ctrl     *session.Controller
	cat      *catalog.Catalog
	reg      *modality.Registry
	tracker  *stats.Tracker
	settings *settings.Settings
	log      logrus.FieldLogger
	keys     keyMap
	help     help.Model

	screen   screen
	counters *counterPicker

	width  int
	height int

	view     session.RoundView
	hasRound bool
	cursor   int

	status   model.SessionState
	resolved bool
	correct  bool
	feedback string
	idle     string
	summary  string
	notice   string
}

// NewModel constructs the game model and its session controller.
func NewModel(opts Options) *Model {
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	m := &Model{
		cat:      opts.Catalog,
		reg:      opts.Registry,
		tracker:  opts.Tracker,
		settings: opts.Settings,
		log:      log,
		keys:     defaultKeyMap(),
		help:     help.New(),
	}
	m.ctrl = session.New(session.Deps{
		Catalog:   opts.Catalog,
		Generator: opts.Generator,
		Registry:  opts.Registry,
		Stats:     opts.Tracker,
		Settings:  opts.Settings,
		History:   opts.History,
		Voice:     opts.Voice,
		Port:      m,
		Log:       log,
		Config:    opts.Config,
	})
	return m
}

// OnRoundStart implements session.Port.
func (m *Model) OnRoundStart(view session.RoundView) {
	m.view = view
	m.hasRound = true
	m.cursor = 0
	m.resolved = false
	m.feedback = ""
	m.idle = ""
	m.summary = ""
}

// OnRoundResolved implements session.Port.
func (m *Model) OnRoundResolved(correct bool, feedback string) {
	m.resolved = true
	m.correct = correct
	m.feedback = feedback
}

// OnSessionStatus implements session.Port.
func (m *Model) OnSessionStatus(state model.SessionState) {
	m.status = state
}

// OnChallengeComplete implements session.Port.
func (m *Model) OnChallengeComplete(score, rounds int) {
	m.hasRound = false
	m.resolved = false
	m.feedback = ""
	m.summary = fmt.Sprintf("Challenge over! Score: %d/%d", score, rounds)
}

// OnIdle implements session.Port.
func (m *Model) OnIdle(message string) {
	m.hasRound = false
	m.resolved = false
	m.idle = message
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.ctrl.StartPractice()
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if m.counters != nil {
			m.counters.setSize(msg.Width, msg.Height)
		}
		return m, nil
	case continuationMsg:
		m.ctrl.Fire(context.Background(), msg.k)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.screen == screenCounters {
			return m.updateCounters(msg)
		}
		return m.updateGame(msg)
	}
	return m, nil
}

func (m *Model) updateGame(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctrl.Stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()
	case key.Matches(msg, m.keys.Practice):
		m.ctrl.StartPractice()
		return m, nil
	case key.Matches(msg, m.keys.Challenge):
		m.ctrl.StartChallenge()
		return m, nil
	case key.Matches(msg, m.keys.Replay):
		m.ctrl.Replay()
		return m, nil
	case key.Matches(msg, m.keys.Furigana):
		m.updatePreferences(func(p *model.Preferences) { p.Furigana = !p.Furigana })
		return m, nil
	case key.Matches(msg, m.keys.Voice):
		m.updatePreferences(func(p *model.Preferences) { p.Voice = !p.Voice })
		return m, nil
	case key.Matches(msg, m.keys.Fallback):
		m.updatePreferences(func(p *model.Preferences) { p.FallbackVoice = !p.FallbackVoice })
		return m, nil
	case key.Matches(msg, m.keys.Counters):
		m.openCounters()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	if m.hasRound && !m.resolved {
		m.handleSurfaceKey(msg)
	}
	return m, nil
}

func (m *Model) submit() tea.Cmd {
	k, ok := m.ctrl.Submit(context.Background())
	if !ok {
		return nil
	}
	m.refreshSurface()
	return schedule(k)
}

func schedule(k session.Continuation) tea.Cmd {
	return tea.Tick(k.Delay, func(time.Time) tea.Msg {
		return continuationMsg{k: k}
	})
}

func (m *Model) updatePreferences(change func(*model.Preferences)) {
	prefs := m.settings.Preferences()
	change(&prefs)
	if err := m.settings.SetPreferences(context.Background(), prefs); err != nil {
		m.log.WithError(err).Warn("failed to save preferences")
	}
	m.notice = fmt.Sprintf("furigana %s · voice %s · fallback %s", onOff(prefs.Furigana), onOff(prefs.Voice), onOff(prefs.FallbackVoice))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (m *Model) handleSurfaceKey(msg tea.KeyMsg) {
	adapter := m.ctrl.Adapter()
	if adapter == nil {
		return
	}
	if key.Matches(msg, m.keys.Clear) {
		adapter.Reset()
		m.refreshSurface()
		return
	}
	switch a := adapter.(type) {
	case *modality.ItemTray:
		switch {
		case key.Matches(msg, m.keys.TrayAdd):
			a.AddShelf(int(msg.Runes[0] - '1'))
		case key.Matches(msg, m.keys.TrayRemove):
			a.RemoveLast()
		}
	case *modality.Clock:
		switch {
		case key.Matches(msg, m.keys.Hours):
			a.Select(model.HandHours)
		case key.Matches(msg, m.keys.Minutes):
			a.Select(model.HandMinutes)
		case key.Matches(msg, m.keys.Seconds):
			a.Select(model.HandSeconds)
		case key.Matches(msg, m.keys.Up):
			a.Step(1)
		case key.Matches(msg, m.keys.Down):
			a.Step(-1)
		}
	case *modality.Calendar:
		switch {
		case key.Matches(msg, m.keys.Mode):
			a.CycleMode()
		case key.Matches(msg, m.keys.Right):
			a.Extend(1)
		case key.Matches(msg, m.keys.Left):
			a.Extend(-1)
		}
	case *modality.House:
		regions := len(a.Surface().Regions)
		switch {
		case key.Matches(msg, m.keys.Right):
			if m.cursor < regions-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Left):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Toggle):
			a.Toggle(m.cursor)
		}
	}
	m.refreshSurface()
}

func (m *Model) refreshSurface() {
	if adapter := m.ctrl.Adapter(); adapter != nil {
		m.view.Surface = adapter.Surface()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.screen == screenCounters && m.counters != nil {
		return m.counters.View()
	}
	content := m.renderGame()
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footer
	}
	footerHeight := lipgloss.Height(footer)
	bodyHeight := m.height - footerHeight - 1
	if bodyHeight < 1 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	header := lipgloss.Place(m.width, 1, lipgloss.Left, lipgloss.Top, m.renderStatus())
	body := lipgloss.Place(m.width, bodyHeight-1, lipgloss.Center, lipgloss.Center, content)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	w := int(float64(m.width) * 0.70)
	if w < 1 {
		w = 1
	}
	return w
}

func (m *Model) renderGame() string {
	if m.summary != "" {
		return summaryStyle.Render(promptStyle.Render(m.summary) + "\n\n" + mutedStyle.Render("p practice · c challenge again"))
	}
	if !m.hasRound {
		msg := m.idle
		if msg == "" {
			msg = "Press p to practice or c for a challenge."
		}
		return pendingStyle.Render(wrapText(msg, m.contentWidth()))
	}
	lines := []string{}
	prompt := promptStyle.Render(m.view.Prompt)
	if m.settings.Preferences().Furigana {
		lines = append(lines, readingStyle.Render(centerOver(m.view.Reading, lipgloss.Width(m.view.Prompt))))
	}
	lines = append(lines, prompt)
	if m.view.Hint != "" {
		lines = append(lines, mutedStyle.Render(m.view.Hint))
	}
	lines = append(lines, "", renderSurface(m.view.Surface, m.cursor), "")
	if m.resolved {
		style := incorrectStyle
		if m.correct {
			style = correctStyle
		}
		lines = append(lines, style.Render(wrapText(m.feedback, m.contentWidth())))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderStatus() string {
	s := m.status
	segments := []string{keyStyle.Render("kazoe")}
	if s.Mode == model.ModeChallenge {
		segments = append(segments, fmt.Sprintf("Challenge %d/%d", s.RoundIndex, m.ctrl.ChallengeRounds()), fmt.Sprintf("Score %d", s.Score))
	} else {
		segments = append(segments, "Practice", fmt.Sprintf("Rounds %d", s.RoundIndex))
	}
	segments = append(segments, fmt.Sprintf("Streak %d", s.Streak))
	if m.hasRound {
		ck := m.currentCounterKey()
		if pct, ok := m.tracker.Accuracy(ck); ok {
			segments = append(segments, fmt.Sprintf("%s %d%%", ck, pct))
		}
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) currentCounterKey() string {
	round, ok := m.ctrl.Round()
	if !ok {
		return ""
	}
	return round.Counter.Key
}

func (m *Model) renderFooter() string {
	kind := model.ModalityItemTray
	if round, ok := m.ctrl.Round(); ok {
		kind = round.Modality.Kind
	}
	footer := m.help.View(m.keys.gameHelp(kind, m.hasRound && !m.resolved))
	if m.notice != "" {
		footer = footerStyle.Render(m.notice) + "\n" + footer
	}
	return footer
}

func (m *Model) openCounters() {
	m.counters = newCounterPicker(m.cat, m.settings, m.tracker, m.keys)
	m.counters.setSize(m.width, m.height)
	m.screen = screenCounters
}

func (m *Model) updateCounters(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = screenGame
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		m.ctrl.Stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle), msg.Type == tea.KeyEnter:
		if err := m.counters.toggleSelected(context.Background()); err != nil && !errors.Is(err, settings.ErrLastCounter) {
			m.log.WithError(err).Warn("failed to save enabled counters")
		}
		return m, nil
	case key.Matches(msg, m.keys.All):
		if err := m.counters.enableAll(context.Background()); err != nil {
			m.log.WithError(err).Warn("failed to save enabled counters")
		}
		return m, nil
	}
	return m, m.counters.update(msg)
}
