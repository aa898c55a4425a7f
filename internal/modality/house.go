package modality

import (
	"fmt"

	"github.com/verte-zerg/kazoe/internal/model"
)

// Region is one selectable part of the house diagram.
type Region struct {
	ID       int
	Target   model.HouseTarget
	Selected bool
}

var houseLayout = map[model.HouseTarget]int{
	model.HouseFloors:  3,
	model.HouseRooms:   6,
	model.HouseTatami:  8,
	model.HouseCars:    2,
	model.HouseTrees:   3,
	model.HouseWindows: 6,
}

// House is a diagram of selectable regions grouped by category.
type House struct {
	regions []Region
}

// NewHouse returns a house diagram with the default layout.
func NewHouse() *House {
	h := &House{}
	h.layout(model.HouseCount{})
	return h
}

// Kind implements Adapter.
func (a *House) Kind() model.ModalityKind { return model.ModalityHouse }

func (a *House) layout(expected model.HouseCount) {
	a.regions = a.regions[:0]
	for _, target := range model.HouseTargets {
		n := houseLayout[target]
		if target == expected.Target && expected.Count > n {
			n = expected.Count
		}
		for i := 0; i < n; i++ {
			a.regions = append(a.regions, Region{ID: len(a.regions), Target: target})
		}
	}
}

// Render implements Adapter.
func (a *House) Render(round model.Round) Surface {
	a.layout(round.Expected.House)
	return a.Surface()
}

// Surface implements Adapter.
func (a *House) Surface() Surface {
	return Surface{Kind: model.ModalityHouse, Regions: append([]Region(nil), a.regions...)}
}

// Reset implements Adapter.
func (a *House) Reset() {
	for i := range a.regions {
		a.regions[i].Selected = false
	}
}

// Toggle flips the selection of a region. It reports false for an unknown id.
func (a *House) Toggle(id int) bool {
	if id < 0 || id >= len(a.regions) {
		return false
	}
	a.regions[id].Selected = !a.regions[id].Selected
	return true
}

// Snapshot returns the selected-region count per category.
func (a *House) Snapshot() map[model.HouseTarget]int {
	counts := map[model.HouseTarget]int{}
	for _, r := range a.regions {
		if r.Selected {
			counts[r.Target]++
		}
	}
	return counts
}

// Extract implements Adapter.
func (a *House) Extract() model.Selection {
	return model.Selection{Kind: model.ModalityHouse, House: a.Snapshot()}
}

// Judge implements Adapter. Only the target category's count is compared;
// which regions were picked and selections in other categories are ignored.
func (a *House) Judge(round model.Round, sel model.Selection) Verdict {
	target := round.Expected.House.Target
	got := sel.House[target]
	if got == round.Quantity {
		return Verdict{Correct: true}
	}
	return Verdict{Reasons: []string{fmt.Sprintf("selected %d %s, expected %d", got, target, round.Quantity)}}
}
