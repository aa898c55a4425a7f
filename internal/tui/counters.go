package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/kazoe/internal/catalog"
	"github.com/verte-zerg/kazoe/internal/model"
	"github.com/verte-zerg/kazoe/internal/reading"
	"github.com/verte-zerg/kazoe/internal/settings"
	"github.com/verte-zerg/kazoe/internal/stats"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// counterPicker is the screen for enabling and disabling counters.
type counterPicker struct {
	cat      *catalog.Catalog
	settings *settings.Settings
	tracker  *stats.Tracker
	keys     keyMap
	help     help.Model
	table    table.Model
	errMsg   string

	width  int
	height int
}

func newCounterPicker(cat *catalog.Catalog, st *settings.Settings, tracker *stats.Tracker, keys keyMap) *counterPicker {
	p := &counterPicker{
		cat:      cat,
		settings: st,
		tracker:  tracker,
		keys:     keys,
		help:     help.New(),
	}
	p.table = table.New(
		table.WithColumns(counterColumns()),
		table.WithRows(p.rows()),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	p.table.SetStyles(counterTableStyles())
	return p
}

func counterColumns() []table.Column {
	return []table.Column{
		{Title: "On", Width: 3},
		{Title: "Counter", Width: 8},
		{Title: "Example", Width: 12},
		{Title: "Category", Width: 12},
		{Title: "Practice", Width: 9},
		{Title: "Accuracy", Width: 9},
		{Title: "Answers", Width: 8},
	}
}

func (p *counterPicker) rows() []table.Row {
	set := p.settings.Enabled()
	counters := p.cat.Counters()
	rows := make([]table.Row, 0, len(counters))
	for _, c := range counters {
		on := ""
		if p.cat.IsEnabled(set, c.Key) {
			on = "●"
		}
		s := p.tracker.Get(c.Key)
		rows = append(rows, table.Row{
			on,
			c.Key,
			reading.CounterReading(c, 1),
			c.Category,
			string(catalog.ModalityOf(c).Kind),
			stats.FormatAccuracy(s),
			fmt.Sprintf("%d", s.Total()),
		})
	}
	return rows
}

func (p *counterPicker) refresh() {
	p.table.SetRows(p.rows())
}

func (p *counterPicker) selectedKey() (string, bool) {
	row := p.table.SelectedRow()
	if len(row) < 2 {
		return "", false
	}
	return row[1], true
}

func (p *counterPicker) toggleSelected(ctx context.Context) error {
	ck, ok := p.selectedKey()
	if !ok {
		return nil
	}
	_, err := p.settings.Toggle(ctx, ck, p.cat.Keys())
	p.errMsg = ""
	if errors.Is(err, settings.ErrLastCounter) {
		p.errMsg = "At least one counter must stay enabled."
	}
	p.refresh()
	return err
}

func (p *counterPicker) enableAll(ctx context.Context) error {
	p.errMsg = ""
	err := p.settings.SetEnabled(ctx, model.AllEnabled())
	p.refresh()
	return err
}

func (p *counterPicker) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return cmd
}

func (p *counterPicker) setSize(width, height int) {
	p.width = width
	p.height = height
	p.help.Width = width
	if height > 6 {
		p.table.SetHeight(height - 5)
	}
}

func (p *counterPicker) View() string {
	active := len(p.cat.Active(p.settings.Enabled()))
	header := headerStyle.Render(fmt.Sprintf("Counters  %d of %d enabled", active, p.cat.Len()))
	parts := []string{header, "", p.table.View()}
	if p.errMsg != "" {
		parts = append(parts, errorStyle.Render(p.errMsg))
	}
	parts = append(parts, p.help.View(p.keys.counterHelp()))
	return strings.Join(parts, "\n")
}

func counterTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}
