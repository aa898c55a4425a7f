package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/verte-zerg/kazoe/internal/model"
)

type keyMap struct {
	Submit    key.Binding
	Practice  key.Binding
	Challenge key.Binding
	Replay    key.Binding
	Furigana  key.Binding
	Voice     key.Binding
	Fallback  key.Binding
	Counters  key.Binding
	Help      key.Binding
	Quit      key.Binding

	Clear key.Binding

	TrayAdd    key.Binding
	TrayRemove key.Binding

	Hours   key.Binding
	Minutes key.Binding
	Seconds key.Binding
	Up      key.Binding
	Down    key.Binding

	Mode   key.Binding
	Left   key.Binding
	Right  key.Binding
	Toggle key.Binding

	Back key.Binding
	All  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "hand over")),
		Practice:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "practice")),
		Challenge: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "challenge")),
		Replay:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repeat")),
		Furigana:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "furigana")),
		Voice:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "voice")),
		Fallback:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "fallback voice")),
		Counters:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "counters")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),

		Clear: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),

		TrayAdd:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "take item")),
		TrayRemove: key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "put back")),

		Hours:   key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hour hand")),
		Minutes: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "minute hand")),
		Seconds: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "second hand")),
		Up:      key.NewBinding(key.WithKeys("up", "k", "+"), key.WithHelp("↑", "forward")),
		Down:    key.NewBinding(key.WithKeys("down", "j", "-"), key.WithHelp("↓", "back")),

		Mode:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "unit")),
		Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "shorter")),
		Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "longer")),
		Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),

		Back: key.NewBinding(key.WithKeys("esc", "t"), key.WithHelp("esc", "back")),
		All:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "enable all")),
	}
}

// helpKeys adapts a binding list to help.KeyMap.
type helpKeys struct {
	short []key.Binding
	full  [][]key.Binding
}

func (h helpKeys) ShortHelp() []key.Binding  { return h.short }
func (h helpKeys) FullHelp() [][]key.Binding { return h.full }

func (k keyMap) surfaceKeys(kind model.ModalityKind) []key.Binding {
	switch kind {
	case model.ModalityClock:
		return []key.Binding{k.Hours, k.Minutes, k.Seconds, k.Up, k.Down, k.Clear}
	case model.ModalityCalendar:
		return []key.Binding{k.Mode, k.Left, k.Right, k.Clear}
	case model.ModalityHouse:
		left := key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "move"))
		return []key.Binding{left, k.Toggle, k.Clear}
	default:
		return []key.Binding{k.TrayAdd, k.TrayRemove, k.Clear}
	}
}

func (k keyMap) gameHelp(kind model.ModalityKind, active bool) helpKeys {
	session := []key.Binding{k.Practice, k.Challenge, k.Counters, k.Quit}
	prefs := []key.Binding{k.Replay, k.Furigana, k.Voice, k.Fallback}
	if !active {
		return helpKeys{
			short: append(session, k.Help),
			full:  [][]key.Binding{session, prefs},
		}
	}
	surface := k.surfaceKeys(kind)
	short := append([]key.Binding{k.Submit}, surface...)
	short = append(short, k.Help)
	return helpKeys{
		short: short,
		full:  [][]key.Binding{append([]key.Binding{k.Submit}, surface...), session, prefs},
	}
}

func (k keyMap) counterHelp() helpKeys {
	keys := []key.Binding{k.Toggle, k.All, k.Back, k.Quit}
	return helpKeys{short: keys, full: [][]key.Binding{keys}}
}
