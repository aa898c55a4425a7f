// Package modality implements the per-counter input surfaces and their
// answer-equivalence rules.
package modality

import (
	"github.com/verte-zerg/kazoe/internal/model"
)

// Adapter is the render/extract/judge contract of one practice modality.
type Adapter interface {
	// Kind returns the modality tag served by the adapter.
	Kind() model.ModalityKind
	// Render resets the adapter and prepares its surface for round.
	Render(round model.Round) Surface
	// Surface returns the current state of the input surface.
	Surface() Surface
	// Reset clears the learner's selection, keeping the surface layout.
	Reset()
	// Extract reads the learner's current selection.
	Extract() model.Selection
	// Judge compares a selection with the round's expected answer.
	Judge(round model.Round, sel model.Selection) Verdict
}

// Surface describes an input surface for the presentation layer. Only the
// fields of Kind are populated.
type Surface struct {
	Kind model.ModalityKind

	Shelf []model.ItemRef
	Tray  []model.TrayEntry

	Hand  model.Hand
	Clock model.ClockTime

	Calendar     model.CalendarSpan
	CalendarGrid int
	RangeFrom    int
	RangeTo      int

	Regions []Region
}

// Verdict is the outcome of judging one selection.
type Verdict struct {
	Correct bool
	// Reasons lists human-readable mismatch descriptions, empty when correct.
	Reasons []string
	// ModeMismatch and CountMismatch are set by the calendar adapter.
	ModeMismatch  bool
	CountMismatch bool
}

// Registry is the dispatch table of adapters keyed by modality tag.
type Registry struct {
	tray     *ItemTray
	clock    *Clock
	calendar *Calendar
	house    *House
	adapters map[model.ModalityKind]Adapter
}

// NewRegistry returns a registry holding one adapter per modality.
func NewRegistry() *Registry {
	r := &Registry{
		tray:     NewItemTray(),
		clock:    NewClock(),
		calendar: NewCalendar(),
		house:    NewHouse(),
	}
	r.adapters = map[model.ModalityKind]Adapter{
		model.ModalityItemTray: r.tray,
		model.ModalityClock:    r.clock,
		model.ModalityCalendar: r.calendar,
		model.ModalityHouse:    r.house,
	}
	return r
}

// For returns the adapter for kind, the item tray for unknown kinds.
func (r *Registry) For(kind model.ModalityKind) Adapter {
	if a, ok := r.adapters[kind]; ok {
		return a
	}
	return r.tray
}

// ResetAll clears the selection state of every adapter.
func (r *Registry) ResetAll() {
	for _, a := range r.adapters {
		a.Reset()
	}
}

// Tray returns the item-tray adapter.
func (r *Registry) Tray() *ItemTray { return r.tray }

// Clock returns the clock adapter.
func (r *Registry) Clock() *Clock { return r.clock }

// Calendar returns the calendar adapter.
func (r *Registry) Calendar() *Calendar { return r.calendar }

// House returns the house-diagram adapter.
func (r *Registry) House() *House { return r.house }
