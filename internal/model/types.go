// Package model defines shared data structures.
package model

import "time"

// ModalityKind tags the input-and-judging strategy of a counter.
type ModalityKind string

const (
	ModalityItemTray ModalityKind = "item"
	ModalityClock    ModalityKind = "clock"
	ModalityCalendar ModalityKind = "calendar"
	ModalityHouse    ModalityKind = "house"
)

// Hand names a clock hand.
type Hand string

const (
	HandHours   Hand = "hours"
	HandMinutes Hand = "minutes"
	HandSeconds Hand = "seconds"
)

// Modulus returns the number of discrete positions on the hand's dial.
func (h Hand) Modulus() int {
	if h == HandHours {
		return 12
	}
	return 60
}

// Hands lists the clock hands in display order.
var Hands = []Hand{HandHours, HandMinutes, HandSeconds}

// CalendarMode names the unit a calendar selection is counted in.
type CalendarMode string

const (
	CalendarDays   CalendarMode = "days"
	CalendarWeeks  CalendarMode = "weeks"
	CalendarMonths CalendarMode = "months"
	CalendarYears  CalendarMode = "years"
)

// CalendarModes lists the calendar modes in cycling order.
var CalendarModes = []CalendarMode{CalendarDays, CalendarWeeks, CalendarMonths, CalendarYears}

// HouseTarget names a selectable region category of the house diagram.
type HouseTarget string

const (
	HouseFloors  HouseTarget = "floors"
	HouseRooms   HouseTarget = "rooms"
	HouseTatami  HouseTarget = "tatami"
	HouseCars    HouseTarget = "cars"
	HouseTrees   HouseTarget = "trees"
	HouseWindows HouseTarget = "windows"
)

// HouseTargets lists the house categories in display order.
var HouseTargets = []HouseTarget{HouseFloors, HouseRooms, HouseTatami, HouseCars, HouseTrees, HouseWindows}

// Modality describes how a counter is practiced. Hand, Mode and Target are
// only meaningful for their own Kind.
type Modality struct {
	Kind   ModalityKind
	Hand   Hand
	Mode   CalendarMode
	Target HouseTarget
	Min    int
	Max    int
}

// ItemTray is the default modality for counters without a descriptor.
var ItemTray = Modality{Kind: ModalityItemTray}

// Irregular holds reading overrides for a counter.
type Irregular struct {
	Exact   map[int]string
	Default string
}

// HasDefault reports whether a templated default reading is present.
func (i Irregular) HasDefault() bool {
	return i.Default != ""
}

// Item is a countable thing owned by exactly one counter.
type Item struct {
	ID      string
	Image   string
	English string
}

// Counter is a numeral classifier with its items.
type Counter struct {
	Key       string
	Reading   string
	Category  string
	Irregular Irregular
	Items     []Item
	Practice  *Modality
}

// ItemRef identifies an item together with its owning counter.
type ItemRef struct {
	CounterKey string
	Item       Item
}

// ClockTime is a clock-hand position, each field wrapped to its hand modulus.
type ClockTime struct {
	Hours   int
	Minutes int
	Seconds int
}

// Get returns the value of one hand.
func (c ClockTime) Get(h Hand) int {
	switch h {
	case HandHours:
		return c.Hours
	case HandMinutes:
		return c.Minutes
	default:
		return c.Seconds
	}
}

// With returns a copy with one hand set, wrapped to the hand's modulus.
func (c ClockTime) With(h Hand, v int) ClockTime {
	v = Wrap(v, h.Modulus())
	switch h {
	case HandHours:
		c.Hours = v
	case HandMinutes:
		c.Minutes = v
	default:
		c.Seconds = v
	}
	return c
}

// Wrap reduces v into [0, mod).
func Wrap(v, mod int) int {
	v %= mod
	if v < 0 {
		v += mod
	}
	return v
}

// CalendarSpan is a calendar selection measured in one mode.
type CalendarSpan struct {
	Mode  CalendarMode
	Count int
}

// HouseCount is the expected selection count for one house category.
type HouseCount struct {
	Target HouseTarget
	Count  int
}

// TrayEntry is one item placed on the counter tray.
type TrayEntry struct {
	ItemID     string
	CounterKey string
	Count      int
}

// Expected is the modality-specific expected answer of a round.
type Expected struct {
	Kind       ModalityKind
	Quantity   int
	CounterKey string
	Clock      ClockTime
	Calendar   CalendarSpan
	House      HouseCount
}

// Selection is what the learner submitted, as extracted by an adapter.
type Selection struct {
	Kind     ModalityKind
	Tray     []TrayEntry
	Clock    ClockTime
	Calendar CalendarSpan
	House    map[HouseTarget]int
}

// Round is one prompt/answer cycle. It is never persisted.
type Round struct {
	Counter  Counter
	Modality Modality
	Quantity int
	Target   Item
	Decoys   []ItemRef
	Expected Expected
}

// Mode is the session mode.
type Mode string

const (
	ModePractice  Mode = "practice"
	ModeChallenge Mode = "challenge"
)

// SessionState captures the observable session counters.
type SessionState struct {
	Mode       Mode
	Active     bool
	RoundIndex int
	Score      int
	Streak     int
}

// CounterStats stores per-counter answer counts.
type CounterStats struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// Total returns the number of recorded answers.
func (s CounterStats) Total() int {
	return s.Correct + s.Incorrect
}

// ChallengeRecord captures a completed challenge session.
type ChallengeRecord struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Score     int
	Rounds    int
}

// Preferences are the persisted display and voice toggles.
type Preferences struct {
	Furigana      bool `json:"furigana"`
	Voice         bool `json:"voice"`
	FallbackVoice bool `json:"fallbackVoice"`
}

// DefaultPreferences returns the preferences used when nothing is stored.
func DefaultPreferences() Preferences {
	return Preferences{Furigana: false, Voice: true, FallbackVoice: true}
}

// Config defines practice settings.
type Config struct {
	Dataset         string
	AdvanceDelay    time.Duration
	SummaryDelay    time.Duration
	ChallengeRounds int
	MaxQuantity     int
	Decoys          int
	FocusWeak       bool
	WeakTop         int
	WeakFactor      float64
}

// VoiceConfig defines speech settings.
type VoiceConfig struct {
	Command      string
	Player       string
	Endpoint     string
	StartTimeout time.Duration
	CacheSize    int
}

// EnabledSet is the persisted counter selection. All is the sentinel for
// "every counter enabled"; Keys is ignored when All is set.
type EnabledSet struct {
	All  bool
	Keys []string
}

// AllEnabled returns the sentinel selection.
func AllEnabled() EnabledSet {
	return EnabledSet{All: true}
}
