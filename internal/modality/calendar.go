package modality

import (
	"fmt"

	"github.com/verte-zerg/kazoe/internal/model"
)

var calendarGrid = map[model.CalendarMode]int{
	model.CalendarDays:   42,
	model.CalendarWeeks:  6,
	model.CalendarMonths: 12,
	model.CalendarYears:  12,
}

// Calendar selects a contiguous range of cells counted in one mode.
type Calendar struct {
	mode     model.CalendarMode
	minCells int
	from     int
	to       int
	selected bool
}

// NewCalendar returns a calendar in days mode with nothing selected.
func NewCalendar() *Calendar {
	return &Calendar{mode: model.CalendarDays}
}

// Kind implements Adapter.
func (a *Calendar) Kind() model.ModalityKind { return model.ModalityCalendar }

// Render implements Adapter. The starting mode is always days so the mode
// is part of the answer.
func (a *Calendar) Render(round model.Round) Surface {
	a.mode = model.CalendarDays
	a.minCells = round.Expected.Calendar.Count
	a.Reset()
	return a.Surface()
}

// Surface implements Adapter.
func (a *Calendar) Surface() Surface {
	from, to := a.bounds()
	if !a.selected {
		from, to = -1, -1
	}
	return Surface{
		Kind:         model.ModalityCalendar,
		Calendar:     model.CalendarSpan{Mode: a.mode, Count: a.count()},
		CalendarGrid: a.Cells(),
		RangeFrom:    from,
		RangeTo:      to,
	}
}

// Reset implements Adapter.
func (a *Calendar) Reset() {
	a.from, a.to = 0, 0
	a.selected = false
}

// Mode returns the active mode.
func (a *Calendar) Mode() model.CalendarMode {
	return a.mode
}

// SetMode switches the counting unit and clears the selection.
func (a *Calendar) SetMode(mode model.CalendarMode) {
	if _, ok := calendarGrid[mode]; !ok {
		return
	}
	a.mode = mode
	a.Reset()
}

// CycleMode switches to the next mode in model.CalendarModes.
func (a *Calendar) CycleMode() {
	for i, m := range model.CalendarModes {
		if m == a.mode {
			a.SetMode(model.CalendarModes[(i+1)%len(model.CalendarModes)])
			return
		}
	}
	a.SetMode(model.CalendarDays)
}

// Cells returns the grid size for the active mode.
func (a *Calendar) Cells() int {
	n := calendarGrid[a.mode]
	if a.minCells > n {
		n = a.minCells
	}
	return n
}

// SelectRange selects the cells between from and to inclusive, clamped to the grid.
func (a *Calendar) SelectRange(from, to int) {
	a.from = clamp(from, 0, a.Cells()-1)
	a.to = clamp(to, 0, a.Cells()-1)
	a.selected = true
}

// Extend moves the range end by delta cells. A positive delta on an empty
// grid starts the range at cell 0; shrinking a range anchored at cell 0 below
// one cell clears it.
func (a *Calendar) Extend(delta int) {
	if !a.selected {
		if delta <= 0 {
			return
		}
		a.SelectRange(0, 0)
		delta--
	}
	if a.from == 0 && a.to+delta < 0 {
		a.Reset()
		return
	}
	a.SelectRange(a.from, a.to+delta)
}

func (a *Calendar) bounds() (int, int) {
	if a.from <= a.to {
		return a.from, a.to
	}
	return a.to, a.from
}

func (a *Calendar) count() int {
	if !a.selected {
		return 0
	}
	from, to := a.bounds()
	return to - from + 1
}

// Extract implements Adapter.
func (a *Calendar) Extract() model.Selection {
	return model.Selection{
		Kind:     model.ModalityCalendar,
		Calendar: model.CalendarSpan{Mode: a.mode, Count: a.count()},
	}
}

// Judge implements Adapter. Mode and count must both match; equal durations
// in another unit are not converted.
func (a *Calendar) Judge(round model.Round, sel model.Selection) Verdict {
	want := round.Expected.Calendar
	v := Verdict{
		ModeMismatch:  sel.Calendar.Mode != want.Mode,
		CountMismatch: sel.Calendar.Count != want.Count,
	}
	v.Correct = !v.ModeMismatch && !v.CountMismatch
	if v.ModeMismatch {
		v.Reasons = append(v.Reasons, fmt.Sprintf("counted in %s, expected %s", sel.Calendar.Mode, want.Mode))
	}
	if v.CountMismatch {
		v.Reasons = append(v.Reasons, fmt.Sprintf("selected %d, expected %d", sel.Calendar.Count, want.Count))
	}
	return v
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
