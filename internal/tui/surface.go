package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/kazoe/internal/modality"
	"github.com/verte-zerg/kazoe/internal/model"
)

const (
	cellOn  = "■"
	cellOff = "□"
)

func renderSurface(s modality.Surface, cursor int) string {
	switch s.Kind {
	case model.ModalityClock:
		return renderClock(s)
	case model.ModalityCalendar:
		return renderCalendar(s)
	case model.ModalityHouse:
		return renderHouse(s, cursor)
	default:
		return renderTray(s)
	}
}

func renderTray(s modality.Surface) string {
	shelf := make([]string, 0, len(s.Shelf))
	for i, ref := range s.Shelf {
		label := ref.Item.English
		if label == "" {
			label = ref.Item.ID
		}
		shelf = append(shelf, fmt.Sprintf("%s %s", keyStyle.Render(fmt.Sprintf("%d", i+1)), label))
	}
	lines := []string{mutedStyle.Render("Shelf"), strings.Join(shelf, "   ")}

	total := 0
	placed := make([]string, 0, len(s.Tray))
	for _, entry := range s.Tray {
		total += entry.Count
		placed = append(placed, fmt.Sprintf("%s×%d", trayLabel(s.Shelf, entry), entry.Count))
	}
	tray := pendingStyle.Render("(empty)")
	if len(placed) > 0 {
		tray = strings.Join(placed, "  ")
	}
	lines = append(lines, "", mutedStyle.Render(fmt.Sprintf("Counter (%d)", total)), tray)
	return strings.Join(lines, "\n")
}

func trayLabel(shelf []model.ItemRef, entry model.TrayEntry) string {
	for _, ref := range shelf {
		if ref.Item.ID == entry.ItemID && ref.CounterKey == entry.CounterKey {
			if ref.Item.English != "" {
				return ref.Item.English
			}
			break
		}
	}
	return entry.ItemID
}

func renderClock(s modality.Surface) string {
	parts := make([]string, 0, len(model.Hands))
	for _, h := range model.Hands {
		value := fmt.Sprintf("%02d", s.Clock.Get(h))
		if h == s.Hand {
			value = selectedStyle.Render(value)
		}
		parts = append(parts, value)
	}
	face := clockFaceStyle.Render(strings.Join(parts, " : "))
	legend := mutedStyle.Render(fmt.Sprintf("moving the %s hand", s.Hand))
	return lipgloss.JoinVertical(lipgloss.Center, face, legend)
}

func calendarColumns(mode model.CalendarMode) int {
	switch mode {
	case model.CalendarDays:
		return 7
	case model.CalendarWeeks:
		return 1
	default:
		return 6
	}
}

func renderCalendar(s modality.Surface) string {
	modes := make([]string, 0, len(model.CalendarModes))
	for _, m := range model.CalendarModes {
		label := string(m)
		if m == s.Calendar.Mode {
			label = selectedStyle.Render(label)
		} else {
			label = pendingStyle.Render(label)
		}
		modes = append(modes, label)
	}
	cols := calendarColumns(s.Calendar.Mode)
	var grid strings.Builder
	for i := 0; i < s.CalendarGrid; i++ {
		if i > 0 && i%cols == 0 {
			grid.WriteByte('\n')
		} else if i > 0 {
			grid.WriteByte(' ')
		}
		if s.RangeFrom >= 0 && i >= s.RangeFrom && i <= s.RangeTo {
			grid.WriteString(selectedStyle.Render(cellOn))
		} else {
			grid.WriteString(pendingStyle.Render(cellOff))
		}
	}
	summary := mutedStyle.Render(fmt.Sprintf("%d %s selected", s.Calendar.Count, s.Calendar.Mode))
	return lipgloss.JoinVertical(lipgloss.Center, strings.Join(modes, "  "), "", grid.String(), "", summary)
}

func renderHouse(s modality.Surface, cursor int) string {
	byTarget := map[model.HouseTarget][]modality.Region{}
	for _, r := range s.Regions {
		byTarget[r.Target] = append(byTarget[r.Target], r)
	}
	width := 0
	for _, t := range model.HouseTargets {
		if len(t) > width {
			width = len(t)
		}
	}
	lines := make([]string, 0, len(model.HouseTargets))
	for _, t := range model.HouseTargets {
		regions := byTarget[t]
		if len(regions) == 0 {
			continue
		}
		cells := make([]string, 0, len(regions))
		for _, r := range regions {
			mark := cellOff
			style := pendingStyle
			if r.Selected {
				mark = cellOn
				style = selectedStyle
			}
			if r.ID == cursor {
				style = style.Underline(true).Bold(true)
				mark = "[" + mark + "]"
			} else {
				mark = " " + mark + " "
			}
			cells = append(cells, style.Render(mark))
		}
		label := mutedStyle.Render(fmt.Sprintf("%-*s", width, t))
		lines = append(lines, label+"  "+strings.Join(cells, ""))
	}
	return strings.Join(lines, "\n")
}
