package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/verte-zerg/kazoe/internal/model"
)

const sparkChars = " .:-=+*#%@"

var (
	goodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	weakStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// CounterRow is one line of the per-counter report.
type CounterRow struct {
	Counter model.Counter
	Stats   model.CounterStats
	Enabled bool
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline scaled to [lo, hi].
func Sparkline(values []float64, lo, hi float64) string {
	if len(values) == 0 {
		return ""
	}
	if math.Abs(hi-lo) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - lo) / (hi - lo)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// UseColor reports whether w is a terminal that should receive ANSI colors.
func UseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// FormatAccuracy renders an accuracy cell, "-" for counters without answers.
func FormatAccuracy(s model.CounterStats) string {
	pct, ok := Accuracy(s)
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%d%%", pct)
}

// SortRows orders rows by lowest accuracy, unanswered counters last.
func SortRows(rows []CounterRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		ai, iok := Accuracy(rows[i].Stats)
		aj, jok := Accuracy(rows[j].Stats)
		if iok != jok {
			return iok
		}
		if ai == aj {
			return rows[i].Counter.Key < rows[j].Counter.Key
		}
		return ai < aj
	})
}

// RenderCounterTable prints per-counter accuracy, weakest first.
func RenderCounterTable(w io.Writer, rows []CounterRow, useColor bool) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No counters found.")
		return err
	}
	sorted := make([]CounterRow, len(rows))
	copy(sorted, rows)
	SortRows(sorted)

	if _, err := fmt.Fprintln(w, "Per-Counter Accuracy"); err != nil {
		return err
	}
	headers := []string{"Counter", "Category", "On", "Accuracy", "Correct", "Incorrect"}
	tableRows := make([][]string, 0, len(sorted))
	for _, r := range sorted {
		on := ""
		if r.Enabled {
			on = "*"
		}
		tableRows = append(tableRows, []string{
			r.Counter.Key,
			r.Counter.Category,
			on,
			FormatAccuracy(r.Stats),
			fmt.Sprintf("%d", r.Stats.Correct),
			fmt.Sprintf("%d", r.Stats.Incorrect),
		})
	}
	rightAlign := map[int]bool{3: true, 4: true, 5: true}
	lines := formatTable(headers, tableRows, rightAlign)
	for i, line := range lines {
		if useColor && i > 0 {
			line = colorize(line, sorted[i-1].Stats)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

func colorize(line string, s model.CounterStats) string {
	pct, ok := Accuracy(s)
	switch {
	case !ok:
		return line
	case pct >= 80:
		return goodStyle.Render(line)
	case pct < 50:
		return weakStyle.Render(line)
	default:
		return line
	}
}

// RenderChallengeSummary prints challenge history with a score trend.
func RenderChallengeSummary(w io.Writer, records []model.ChallengeRecord, window int) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No challenges completed yet.")
		return err
	}
	scores := make([]float64, len(records))
	best := 0
	total := 0.0
	maxRounds := 0
	for i, r := range records {
		scores[i] = float64(r.Score)
		total += float64(r.Score)
		if r.Score > best {
			best = r.Score
		}
		if r.Rounds > maxRounds {
			maxRounds = r.Rounds
		}
	}
	last := records[len(records)-1]
	if _, err := fmt.Fprintln(w, "Challenges"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Completed: %d\n", len(records)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Last: %d/%d (%s)\n", last.Score, last.Rounds, last.EndedAt.Local().Format("2006-01-02 15:04")); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Best: %d/%d\n", best, maxRounds); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg: %.1f\n", total/float64(len(records))); err != nil {
		return err
	}
	trend := Sparkline(MovingAverage(scores, window), 0, float64(maxRounds))
	if _, err := fmt.Fprintf(w, "Trend: [%s]\n", trend); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}
