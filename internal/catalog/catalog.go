// Package catalog loads the counter vocabulary and resolves active counters.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/verte-zerg/kazoe/internal/model"
)

//go:embed data/counters.json
var defaultDataset []byte

// ErrEmptyCatalog is returned when a dataset holds no usable counters.
var ErrEmptyCatalog = errors.New("catalog has no counters")

// Catalog is a read-only view over the loaded counters.
type Catalog struct {
	counters []model.Counter
	index    map[string]int
}

type datasetJSON struct {
	Counters []counterJSON `json:"counters"`
}

type counterJSON struct {
	Counter   string            `json:"counter"`
	Reading   string            `json:"reading"`
	Category  string            `json:"category"`
	Irregular map[string]string `json:"irregular"`
	Items     []itemJSON        `json:"items"`
	Practice  *practiceJSON     `json:"practice"`
}

type itemJSON struct {
	ID      string `json:"id"`
	Image   string `json:"image"`
	English string `json:"english"`
}

type practiceJSON struct {
	Type   string `json:"type"`
	Hand   string `json:"hand"`
	Mode   string `json:"mode"`
	Target string `json:"target"`
	Min    int    `json:"min"`
	Max    int    `json:"max"`
}

// Default returns the catalog built from the embedded dataset.
func Default() (*Catalog, error) {
	return Parse(defaultDataset)
}

// Load reads a dataset file. An empty path loads the embedded dataset.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return Parse(data)
}

// Parse decodes a dataset document. Missing optional fields degrade to
// defaults. Counters without a key are skipped, and so are item-tray counters
// without usable items since no round for them can be answered.
func Parse(data []byte) (*Catalog, error) {
	var doc datasetJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	c := &Catalog{index: map[string]int{}}
	for _, raw := range doc.Counters {
		key := strings.TrimSpace(raw.Counter)
		if key == "" {
			continue
		}
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("duplicate counter %q", key)
		}
		counter := model.Counter{
			Key:       key,
			Reading:   raw.Reading,
			Category:  raw.Category,
			Irregular: parseIrregular(raw.Irregular),
			Items:     parseItems(raw.Items),
			Practice:  parsePractice(raw.Practice),
		}
		if ModalityOf(counter).Kind == model.ModalityItemTray && len(counter.Items) == 0 {
			continue
		}
		c.index[key] = len(c.counters)
		c.counters = append(c.counters, counter)
	}
	if len(c.counters) == 0 {
		return nil, ErrEmptyCatalog
	}
	return c, nil
}

func parseIrregular(raw map[string]string) model.Irregular {
	irr := model.Irregular{Exact: map[int]string{}}
	for k, v := range raw {
		if k == "default" {
			irr.Default = v
			continue
		}
		n, err := strconv.Atoi(k)
		if err != nil || n < 0 {
			continue
		}
		irr.Exact[n] = v
	}
	return irr
}

func parseItems(raw []itemJSON) []model.Item {
	seen := map[string]struct{}{}
	items := make([]model.Item, 0, len(raw))
	for _, it := range raw {
		if it.ID == "" {
			continue
		}
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		items = append(items, model.Item{ID: it.ID, Image: it.Image, English: it.English})
	}
	return items
}

func parsePractice(raw *practiceJSON) *model.Modality {
	if raw == nil {
		return nil
	}
	var m model.Modality
	switch model.ModalityKind(strings.ToLower(raw.Type)) {
	case model.ModalityClock:
		hand := model.Hand(raw.Hand)
		if hand != model.HandMinutes && hand != model.HandSeconds {
			hand = model.HandHours
		}
		m = model.Modality{Kind: model.ModalityClock, Hand: hand}
	case model.ModalityCalendar:
		mode := model.CalendarMode(raw.Mode)
		if !validCalendarMode(mode) {
			mode = model.CalendarDays
		}
		m = model.Modality{Kind: model.ModalityCalendar, Mode: mode}
	case model.ModalityHouse:
		target := model.HouseTarget(raw.Target)
		if !validHouseTarget(target) {
			return nil
		}
		m = model.Modality{Kind: model.ModalityHouse, Target: target}
	default:
		return nil
	}
	m.Min, m.Max = raw.Min, raw.Max
	applyBounds(&m)
	return &m
}

func applyBounds(m *model.Modality) {
	if m.Min <= 0 && m.Max <= 0 {
		m.Min, m.Max = 1, defaultMax(*m)
		return
	}
	if m.Min < 0 {
		m.Min = 0
	}
	if m.Max < m.Min {
		m.Max = m.Min
	}
}

func defaultMax(m model.Modality) int {
	switch m.Kind {
	case model.ModalityClock:
		return m.Hand.Modulus()
	case model.ModalityCalendar:
		switch m.Mode {
		case model.CalendarDays:
			return 10
		case model.CalendarWeeks:
			return 4
		case model.CalendarMonths:
			return 12
		default:
			return 10
		}
	default:
		return 5
	}
}

func validCalendarMode(mode model.CalendarMode) bool {
	for _, m := range model.CalendarModes {
		if m == mode {
			return true
		}
	}
	return false
}

func validHouseTarget(target model.HouseTarget) bool {
	for _, t := range model.HouseTargets {
		if t == target {
			return true
		}
	}
	return false
}

// Counters returns every counter in dataset order.
func (c *Catalog) Counters() []model.Counter {
	if c == nil {
		return nil
	}
	out := make([]model.Counter, len(c.counters))
	copy(out, c.counters)
	return out
}

// Len returns the number of counters.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.counters)
}

// Counter resolves a counter by key.
func (c *Catalog) Counter(key string) (model.Counter, bool) {
	if c == nil {
		return model.Counter{}, false
	}
	i, ok := c.index[key]
	if !ok {
		return model.Counter{}, false
	}
	return c.counters[i], true
}

// Item resolves an item of a counter.
func (c *Catalog) Item(counterKey, itemID string) (model.Item, bool) {
	counter, ok := c.Counter(counterKey)
	if !ok {
		return model.Item{}, false
	}
	for _, it := range counter.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return model.Item{}, false
}

// Keys returns the counter keys in dataset order.
func (c *Catalog) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, len(c.counters))
	for i, counter := range c.counters {
		keys[i] = counter.Key
	}
	return keys
}

// AllItems returns the cross-counter item pool.
func (c *Catalog) AllItems() []model.ItemRef {
	if c == nil {
		return nil
	}
	var refs []model.ItemRef
	for _, counter := range c.counters {
		for _, it := range counter.Items {
			refs = append(refs, model.ItemRef{CounterKey: counter.Key, Item: it})
		}
	}
	return refs
}

// ModalityOf returns the practice modality of a counter, ItemTray when the
// counter carries no descriptor.
func ModalityOf(counter model.Counter) model.Modality {
	if counter.Practice == nil {
		return model.ItemTray
	}
	return *counter.Practice
}
