package modality

import (
	"fmt"

	"github.com/verte-zerg/kazoe/internal/model"
)

// ItemTray lets the learner place shelf items on the counter tray.
type ItemTray struct {
	shelf []model.ItemRef
	tray  []model.TrayEntry
}

// NewItemTray returns an empty item-tray adapter.
func NewItemTray() *ItemTray {
	return &ItemTray{}
}

// Kind implements Adapter.
func (a *ItemTray) Kind() model.ModalityKind { return model.ModalityItemTray }

// Render implements Adapter.
func (a *ItemTray) Render(round model.Round) Surface {
	a.shelf = append([]model.ItemRef(nil), round.Decoys...)
	a.tray = nil
	return a.Surface()
}

// Surface implements Adapter.
func (a *ItemTray) Surface() Surface {
	return Surface{
		Kind:  model.ModalityItemTray,
		Shelf: append([]model.ItemRef(nil), a.shelf...),
		Tray:  append([]model.TrayEntry(nil), a.tray...),
	}
}

// Reset implements Adapter.
func (a *ItemTray) Reset() {
	a.tray = nil
}

// Add places one unit of ref on the tray.
func (a *ItemTray) Add(ref model.ItemRef) {
	for i := range a.tray {
		if a.tray[i].ItemID == ref.Item.ID && a.tray[i].CounterKey == ref.CounterKey {
			a.tray[i].Count++
			return
		}
	}
	a.tray = append(a.tray, model.TrayEntry{ItemID: ref.Item.ID, CounterKey: ref.CounterKey, Count: 1})
}

// AddShelf places the shelf item at index on the tray. It reports false for
// an index outside the shelf.
func (a *ItemTray) AddShelf(index int) bool {
	if index < 0 || index >= len(a.shelf) {
		return false
	}
	a.Add(a.shelf[index])
	return true
}

// RemoveLast takes one unit of the most recently added entry off the tray.
func (a *ItemTray) RemoveLast() {
	if len(a.tray) == 0 {
		return
	}
	last := len(a.tray) - 1
	a.tray[last].Count--
	if a.tray[last].Count <= 0 {
		a.tray = a.tray[:last]
	}
}

// Extract implements Adapter.
func (a *ItemTray) Extract() model.Selection {
	return model.Selection{Kind: model.ModalityItemTray, Tray: append([]model.TrayEntry(nil), a.tray...)}
}

// Judge implements Adapter. The tray is correct when the counts add up to the
// quantity and every entry belongs to the round's counter; which items of that
// counter were chosen does not matter.
func (a *ItemTray) Judge(round model.Round, sel model.Selection) Verdict {
	total := 0
	foreign := map[string]struct{}{}
	for _, entry := range sel.Tray {
		total += entry.Count
		if entry.CounterKey != round.Expected.CounterKey {
			foreign[entry.CounterKey] = struct{}{}
		}
	}
	v := Verdict{Correct: true}
	if total != round.Expected.Quantity {
		v.Correct = false
		v.Reasons = append(v.Reasons, fmt.Sprintf("placed %d, asked for %d", total, round.Expected.Quantity))
	}
	if len(foreign) > 0 {
		v.Correct = false
		v.Reasons = append(v.Reasons, fmt.Sprintf("some items are not counted with %s", round.Expected.CounterKey))
	}
	return v
}
