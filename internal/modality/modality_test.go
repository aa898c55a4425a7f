package modality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/kazoe/internal/model"
)

func trayRound(quantity int) model.Round {
	return model.Round{
		Counter:  model.Counter{Key: "個"},
		Modality: model.ItemTray,
		Quantity: quantity,
		Decoys: []model.ItemRef{
			{CounterKey: "個", Item: model.Item{ID: "apple"}},
			{CounterKey: "本", Item: model.Item{ID: "pen"}},
			{CounterKey: "個", Item: model.Item{ID: "egg"}},
		},
		Expected: model.Expected{Kind: model.ModalityItemTray, Quantity: quantity, CounterKey: "個"},
	}
}

func TestItemTrayMixedItemsSameCounter(t *testing.T) {
	a := NewItemTray()
	round := trayRound(3)
	a.Render(round)
	require.True(t, a.AddShelf(0))
	require.True(t, a.AddShelf(0))
	require.True(t, a.AddShelf(2))

	sel := a.Extract()
	require.Len(t, sel.Tray, 2)
	assert.Equal(t, 2, sel.Tray[0].Count)
	assert.True(t, a.Judge(round, sel).Correct)
}

func TestItemTrayForeignCounterAlwaysWrong(t *testing.T) {
	a := NewItemTray()
	round := trayRound(2)
	a.Render(round)
	a.AddShelf(0)
	a.AddShelf(1)
	v := a.Judge(round, a.Extract())
	assert.False(t, v.Correct)
	assert.Len(t, v.Reasons, 1)

	sel := model.Selection{Tray: []model.TrayEntry{
		{ItemID: "apple", CounterKey: "個", Count: 1},
		{ItemID: "pen", CounterKey: "本", Count: 1},
	}}
	assert.False(t, a.Judge(trayRound(1), sel).Correct)
}

func TestItemTrayWrongCountAndRemove(t *testing.T) {
	a := NewItemTray()
	round := trayRound(2)
	a.Render(round)
	assert.False(t, a.Judge(round, a.Extract()).Correct)
	a.AddShelf(0)
	a.AddShelf(2)
	a.AddShelf(2)
	assert.False(t, a.Judge(round, a.Extract()).Correct)
	a.RemoveLast()
	assert.True(t, a.Judge(round, a.Extract()).Correct)
	assert.False(t, a.AddShelf(9))

	a.Reset()
	assert.Empty(t, a.Extract().Tray)
	assert.Len(t, a.Surface().Shelf, 3)
}

func clockRound(hours int) model.Round {
	return model.Round{
		Modality: model.Modality{Kind: model.ModalityClock, Hand: model.HandHours, Min: 1, Max: 12},
		Quantity: hours,
		Expected: model.Expected{Kind: model.ModalityClock, Quantity: hours, Clock: model.ClockTime{}.With(model.HandHours, hours)},
	}
}

func TestClockEquivalence(t *testing.T) {
	a := NewClock()
	round := clockRound(3)
	a.Render(round)
	a.Set(model.HandHours, 3)
	assert.True(t, a.Judge(round, a.Extract()).Correct)

	a.Set(model.HandMinutes, 5)
	v := a.Judge(round, a.Extract())
	assert.False(t, v.Correct)
	assert.Len(t, v.Reasons, 1)

	sel := model.Selection{Clock: model.ClockTime{Hours: 15}}
	assert.True(t, a.Judge(round, sel).Correct, "hours wrap modulo 12")
}

func TestClockTwelveIsZero(t *testing.T) {
	a := NewClock()
	round := clockRound(12)
	a.Render(round)
	assert.True(t, a.Judge(round, a.Extract()).Correct)
}

func TestClockStepAndAngle(t *testing.T) {
	a := NewClock()
	a.Render(clockRound(1))
	assert.Equal(t, model.HandHours, a.Selected())
	a.Step(-1)
	assert.Equal(t, 11, a.Extract().Clock.Hours)
	a.Step(2)
	assert.Equal(t, 1, a.Extract().Clock.Hours)
	assert.InDelta(t, 30.0, a.Angle(model.HandHours), 1e-9)

	a.SetAngle(model.HandMinutes, 93)
	assert.Equal(t, 16, a.Extract().Clock.Minutes)
	a.Reset()
	assert.Equal(t, model.ClockTime{}, a.Extract().Clock)
}

func TestAngleToStep(t *testing.T) {
	tests := []struct {
		deg   float64
		steps int
		want  int
	}{
		{0, 12, 0},
		{14.9, 12, 0},
		{15, 12, 1},
		{90, 12, 3},
		{359, 12, 0},
		{-30, 12, 11},
		{720 + 60, 12, 2},
		{6, 60, 1},
		{2.9, 60, 0},
		{180, 60, 30},
		{45, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AngleToStep(tt.deg, tt.steps), "AngleToStep(%v, %d)", tt.deg, tt.steps)
	}
}

func calendarRound(mode model.CalendarMode, count int) model.Round {
	return model.Round{
		Modality: model.Modality{Kind: model.ModalityCalendar, Mode: mode},
		Quantity: count,
		Expected: model.Expected{Kind: model.ModalityCalendar, Quantity: count, Calendar: model.CalendarSpan{Mode: mode, Count: count}},
	}
}

func TestCalendarEquivalence(t *testing.T) {
	a := NewCalendar()
	round := calendarRound(model.CalendarWeeks, 2)
	a.Render(round)

	a.SetMode(model.CalendarWeeks)
	a.SelectRange(1, 2)
	assert.True(t, a.Judge(round, a.Extract()).Correct)

	v := a.Judge(round, model.Selection{Calendar: model.CalendarSpan{Mode: model.CalendarDays, Count: 14}})
	assert.False(t, v.Correct)
	assert.True(t, v.ModeMismatch)
	assert.True(t, v.CountMismatch)
	assert.Len(t, v.Reasons, 2)

	v = a.Judge(round, model.Selection{Calendar: model.CalendarSpan{Mode: model.CalendarDays, Count: 2}})
	assert.True(t, v.ModeMismatch)
	assert.False(t, v.CountMismatch)
}

func TestCalendarRangeSelection(t *testing.T) {
	a := NewCalendar()
	a.Render(calendarRound(model.CalendarDays, 3))
	assert.Equal(t, 0, a.Extract().Calendar.Count)
	assert.Equal(t, -1, a.Surface().RangeFrom)

	a.SelectRange(5, 3)
	assert.Equal(t, 3, a.Extract().Calendar.Count)
	s := a.Surface()
	assert.Equal(t, 3, s.RangeFrom)
	assert.Equal(t, 5, s.RangeTo)

	a.SelectRange(0, 100)
	assert.Equal(t, 42, a.Extract().Calendar.Count)

	a.CycleMode()
	assert.Equal(t, model.CalendarWeeks, a.Mode())
	assert.Equal(t, 0, a.Extract().Calendar.Count)
	a.Extend(1)
	a.Extend(1)
	assert.Equal(t, 2, a.Extract().Calendar.Count)
	a.Extend(-1)
	assert.Equal(t, 1, a.Extract().Calendar.Count)

	a.CycleMode()
	a.CycleMode()
	a.CycleMode()
	assert.Equal(t, model.CalendarDays, a.Mode())
}

func TestCalendarShrinkFromEmptyAndToNothing(t *testing.T) {
	a := NewCalendar()
	a.Render(calendarRound(model.CalendarDays, 2))
	a.Extend(-1)
	assert.Equal(t, 0, a.Extract().Calendar.Count)
	assert.Equal(t, -1, a.Surface().RangeFrom)

	a.Extend(1)
	a.Extend(1)
	assert.Equal(t, 2, a.Extract().Calendar.Count)
	a.Extend(-1)
	a.Extend(-1)
	assert.Equal(t, 0, a.Extract().Calendar.Count)
	a.Extend(-1)
	assert.Equal(t, 0, a.Extract().Calendar.Count)
	a.Extend(1)
	assert.Equal(t, 1, a.Extract().Calendar.Count)
}

func TestCalendarGridGrowsForLargeCounts(t *testing.T) {
	a := NewCalendar()
	a.Render(calendarRound(model.CalendarWeeks, 9))
	a.SetMode(model.CalendarWeeks)
	assert.Equal(t, 9, a.Cells())
}

func houseRound(target model.HouseTarget, count int) model.Round {
	return model.Round{
		Modality: model.Modality{Kind: model.ModalityHouse, Target: target},
		Quantity: count,
		Expected: model.Expected{Kind: model.ModalityHouse, Quantity: count, House: model.HouseCount{Target: target, Count: count}},
	}
}

func regionsOf(s Surface, target model.HouseTarget) []int {
	var ids []int
	for _, r := range s.Regions {
		if r.Target == target {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

func TestHouseCountsOnlyTarget(t *testing.T) {
	a := NewHouse()
	round := houseRound(model.HouseRooms, 2)
	s := a.Render(round)
	rooms := regionsOf(s, model.HouseRooms)
	floors := regionsOf(s, model.HouseFloors)
	require.Len(t, rooms, 6)

	a.Toggle(rooms[4])
	a.Toggle(rooms[1])
	a.Toggle(floors[0])
	assert.True(t, a.Judge(round, a.Extract()).Correct)

	a.Toggle(rooms[1])
	v := a.Judge(round, a.Extract())
	assert.False(t, v.Correct)
	assert.NotEmpty(t, v.Reasons)
	assert.False(t, a.Toggle(-1))

	a.Reset()
	assert.Empty(t, a.Snapshot())
}

func TestHouseLayoutGrowsForTarget(t *testing.T) {
	a := NewHouse()
	s := a.Render(houseRound(model.HouseCars, 5))
	assert.Len(t, regionsOf(s, model.HouseCars), 5)
	s = a.Render(houseRound(model.HouseFloors, 1))
	assert.Len(t, regionsOf(s, model.HouseCars), 2)
}

func TestRegistryDispatchAndReset(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, model.ModalityItemTray, r.For(model.ModalityItemTray).Kind())
	assert.Equal(t, model.ModalityClock, r.For(model.ModalityClock).Kind())
	assert.Equal(t, model.ModalityCalendar, r.For(model.ModalityCalendar).Kind())
	assert.Equal(t, model.ModalityHouse, r.For(model.ModalityHouse).Kind())
	assert.Equal(t, model.ModalityItemTray, r.For("unknown").Kind())

	r.Tray().Render(trayRound(1))
	r.Tray().AddShelf(0)
	r.Clock().Set(model.HandSeconds, 10)
	r.Calendar().SelectRange(0, 2)
	r.House().Toggle(0)

	r.ResetAll()
	assert.Empty(t, r.Tray().Extract().Tray)
	assert.Equal(t, model.ClockTime{}, r.Clock().Extract().Clock)
	assert.Zero(t, r.Calendar().Extract().Calendar.Count)
	assert.Empty(t, r.House().Snapshot())
}
