package tui

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/kazoe/internal/catalog"
	"github.com/verte-zerg/kazoe/internal/generator"
	"github.com/verte-zerg/kazoe/internal/modality"
	"github.com/verte-zerg/kazoe/internal/model"
	"github.com/verte-zerg/kazoe/internal/settings"
	"github.com/verte-zerg/kazoe/internal/stats"
	"github.com/verte-zerg/kazoe/internal/store"
)

const (
	trayOnly = `{"counters": [
  {"counter": "個", "reading": "こ", "category": "small",
   "items": [{"id": "apple", "english": "apple"}, {"id": "egg", "english": "egg"}]}
]}`
	clockOnly = `{"counters": [
  {"counter": "時", "reading": "じ", "category": "time", "irregular": {"4": "よじ"},
   "practice": {"type": "clock", "hand": "hours", "min": 3, "max": 3}}
]}`
	twoCounters = `{"counters": [
  {"counter": "個", "reading": "こ", "items": [{"id": "apple"}]},
  {"counter": "本", "reading": "ほん", "items": [{"id": "pen"}]}
]}`
)

type memBlobs map[string][]byte

func (m memBlobs) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (m memBlobs) Put(_ context.Context, key string, value []byte) error {
	m[key] = value
	return nil
}

func newTestModel(t *testing.T, dataset string) *Model {
	t.Helper()
	cat, err := catalog.Parse([]byte(dataset))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	ctx := context.Background()
	blobs := memBlobs{}
	m := NewModel(Options{
		Catalog:   cat,
		Generator: generator.NewSeeded(generator.Options{MaxQuantity: 3, Decoys: 2}, 11),
		Registry:  modality.NewRegistry(),
		Tracker:   stats.LoadTracker(ctx, blobs, log),
		Settings:  settings.Load(ctx, blobs, log),
		Log:       log,
		Config:    model.Config{AdvanceDelay: time.Millisecond, SummaryDelay: time.Millisecond},
	})
	m.Init()
	return m
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestInitStartsPractice(t *testing.T) {
	m := newTestModel(t, trayOnly)
	if !m.hasRound {
		t.Fatalf("expected an active round after Init")
	}
	out := m.View()
	if !strings.Contains(out, "個ください。") {
		t.Fatalf("prompt missing from view: %s", out)
	}
	if !strings.Contains(out, "Shelf") {
		t.Fatalf("tray surface missing from view: %s", out)
	}
}

func TestTrayRoundAdvances(t *testing.T) {
	m := newTestModel(t, trayOnly)
	round, _ := m.ctrl.Round()
	keys := make([]string, 0, round.Quantity)
	for i := 0; i < round.Quantity; i++ {
		keys = append(keys, "1")
	}
	press(m, keys...)
	if got := len(m.view.Surface.Tray); got != 1 {
		t.Fatalf("expected one tray entry, got %d", got)
	}

	cmd := press(m, "enter")
	if cmd == nil {
		t.Fatalf("expected a scheduled continuation")
	}
	if !m.resolved || !m.correct {
		t.Fatalf("expected a correct verdict, feedback %q", m.feedback)
	}
	if m.status.Streak != 1 {
		t.Fatalf("streak = %d, want 1", m.status.Streak)
	}

	m.Update(cmd())
	if m.resolved {
		t.Fatalf("expected the next round to start")
	}
	if m.status.RoundIndex != 1 {
		t.Fatalf("round index = %d, want 1", m.status.RoundIndex)
	}
}

func TestClockRound(t *testing.T) {
	m := newTestModel(t, clockOnly)
	press(m, "k", "k", "k", "m", "k")
	if m.view.Surface.Clock != (model.ClockTime{Hours: 3, Minutes: 1}) {
		t.Fatalf("unexpected clock %+v", m.view.Surface.Clock)
	}
	press(m, "enter")
	if m.correct {
		t.Fatalf("a moved minute hand must fail the round")
	}
	if m.tracker.Get("時").Incorrect != 1 {
		t.Fatalf("expected an incorrect record")
	}
}

func TestClockRoundCorrect(t *testing.T) {
	m := newTestModel(t, clockOnly)
	press(m, "j", "k", "k", "k", "k", "enter")
	if !m.correct {
		t.Fatalf("expected 3 o'clock to be correct, feedback %q", m.feedback)
	}
}

func TestFuriganaToggle(t *testing.T) {
	m := newTestModel(t, clockOnly)
	if strings.Contains(m.View(), "さんじ") {
		t.Fatalf("furigana shown before it was enabled")
	}
	press(m, "f")
	if !m.settings.Preferences().Furigana {
		t.Fatalf("expected furigana preference to be saved")
	}
	if !strings.Contains(m.View(), "さんじ") {
		t.Fatalf("expected reading in view: %s", m.View())
	}
}

func TestModeSwitchIgnoresPendingAdvance(t *testing.T) {
	m := newTestModel(t, trayOnly)
	cmd := press(m, "enter")
	if cmd == nil {
		t.Fatalf("expected a scheduled continuation")
	}
	press(m, "c")
	m.Update(cmd())
	if m.status.Mode != model.ModeChallenge || m.status.RoundIndex != 0 {
		t.Fatalf("stale continuation changed the session: %+v", m.status)
	}
	if m.resolved {
		t.Fatalf("new challenge round should be open")
	}
}

func TestCounterPickerKeepsLastCounter(t *testing.T) {
	m := newTestModel(t, trayOnly)
	press(m, "t")
	if m.screen != screenCounters {
		t.Fatalf("expected counters screen")
	}
	press(m, " ")
	if !m.settings.Enabled().All {
		t.Fatalf("the last counter must stay enabled")
	}
	if !strings.Contains(m.View(), "At least one counter") {
		t.Fatalf("expected guard message: %s", m.View())
	}
	press(m, "esc")
	if m.screen != screenGame {
		t.Fatalf("expected game screen")
	}
}

func TestCounterPickerToggle(t *testing.T) {
	m := newTestModel(t, twoCounters)
	press(m, "t", " ")
	set := m.settings.Enabled()
	if set.All || len(set.Keys) != 1 || set.Keys[0] != "本" {
		t.Fatalf("unexpected enabled set %+v", set)
	}
	press(m, "a")
	if !m.settings.Enabled().All {
		t.Fatalf("expected all counters enabled")
	}
}

func TestEmptyCatalogShowsIdle(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	blobs := memBlobs{}
	m := NewModel(Options{
		Catalog:   &catalog.Catalog{},
		Generator: generator.New(generator.Options{}),
		Registry:  modality.NewRegistry(),
		Tracker:   stats.LoadTracker(context.Background(), blobs, log),
		Settings:  settings.Load(context.Background(), blobs, log),
		Log:       log,
	})
	m.Init()
	if m.hasRound {
		t.Fatalf("no round expected without counters")
	}
	if !strings.Contains(m.View(), "No counters loaded") {
		t.Fatalf("expected idle message: %s", m.View())
	}
	if cmd := press(m, "enter"); cmd != nil {
		t.Fatalf("submit without a round must be a no-op")
	}
}

func TestChallengeSummaryShown(t *testing.T) {
	m := newTestModel(t, trayOnly)
	press(m, "c")
	for i := 0; i < 10; i++ {
		cmd := press(m, "enter")
		if cmd == nil {
			t.Fatalf("round %d: expected continuation", i)
		}
		m.Update(cmd())
	}
	if !strings.Contains(m.View(), "Challenge over! Score: 0/10") {
		t.Fatalf("expected summary: %s", m.View())
	}
	if m.status.Mode != model.ModePractice || m.status.RoundIndex != 0 {
		t.Fatalf("expected practice defaults, got %+v", m.status)
	}
}
