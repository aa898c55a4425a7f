// Package generator builds practice rounds.
package generator

import (
	"errors"
	"math/rand"
	"time"

	"github.com/verte-zerg/kazoe/internal/catalog"
	"github.com/verte-zerg/kazoe/internal/model"
)

// ErrNoActiveCounters is returned when there is nothing to ask about.
var ErrNoActiveCounters = errors.New("select at least one counter")

const (
	defaultMaxQuantity = 5
	defaultDecoys      = 5
)

// Options bound the generated rounds.
type Options struct {
	MaxQuantity int
	Decoys      int
}

// Generator produces randomized rounds.
type Generator struct {
	rnd  *rand.Rand
	opts Options
}

// New returns a Generator seeded with the current time.
func New(opts Options) *Generator {
	return NewSeeded(opts, time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(opts Options, seed int64) *Generator {
	if opts.MaxQuantity <= 0 {
		opts.MaxQuantity = defaultMaxQuantity
	}
	if opts.Decoys < 0 {
		opts.Decoys = defaultDecoys
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed)), opts: opts}
}

// NextRound picks a counter uniformly from active and builds a round for it.
func (g *Generator) NextRound(cat *catalog.Catalog, active []model.Counter) (model.Round, error) {
	if len(active) == 0 {
		return model.Round{}, ErrNoActiveCounters
	}
	counter := active[g.rnd.Intn(len(active))]
	return g.build(cat, counter), nil
}

// NextRoundWeighted picks a counter with a bias toward weak counters. Each
// weak counter weighs 1+factor, others weigh 1.
func (g *Generator) NextRoundWeighted(cat *catalog.Catalog, active []model.Counter, weak map[string]struct{}, factor float64) (model.Round, error) {
	if len(active) == 0 {
		return model.Round{}, ErrNoActiveCounters
	}
	if len(weak) == 0 || factor <= 0 {
		return g.NextRound(cat, active)
	}
	weights := make([]float64, len(active))
	total := 0.0
	for i, counter := range active {
		w := 1.0
		if _, ok := weak[counter.Key]; ok {
			w += factor
		}
		weights[i] = w
		total += w
	}
	r := g.rnd.Float64() * total
	acc := 0.0
	idx := len(active) - 1
	for i, w := range weights {
		acc += w
		if r <= acc {
			idx = i
			break
		}
	}
	return g.build(cat, active[idx]), nil
}

func (g *Generator) build(cat *catalog.Catalog, counter model.Counter) model.Round {
	modality := catalog.ModalityOf(counter)
	round := model.Round{Counter: counter, Modality: modality}
	switch modality.Kind {
	case model.ModalityClock:
		value := g.between(modality.Min, modality.Max)
		round.Quantity = value
		round.Expected = model.Expected{
			Kind:     model.ModalityClock,
			Quantity: value,
			Clock:    model.ClockTime{}.With(modality.Hand, value),
		}
	case model.ModalityCalendar:
		value := g.between(modality.Min, modality.Max)
		round.Quantity = value
		round.Expected = model.Expected{
			Kind:     model.ModalityCalendar,
			Quantity: value,
			Calendar: model.CalendarSpan{Mode: modality.Mode, Count: value},
		}
	case model.ModalityHouse:
		value := g.between(modality.Min, modality.Max)
		round.Quantity = value
		round.Expected = model.Expected{
			Kind:     model.ModalityHouse,
			Quantity: value,
			House:    model.HouseCount{Target: modality.Target, Count: value},
		}
	default:
		quantity := g.between(1, g.opts.MaxQuantity)
		round.Quantity = quantity
		if len(counter.Items) > 0 {
			round.Target = counter.Items[g.rnd.Intn(len(counter.Items))]
		}
		round.Expected = model.Expected{
			Kind:       model.ModalityItemTray,
			Quantity:   quantity,
			CounterKey: counter.Key,
		}
		round.Decoys = g.decoys(cat, model.ItemRef{CounterKey: counter.Key, Item: round.Target})
	}
	return round
}

// decoys returns the target plus up to opts.Decoys other items drawn without
// replacement from the whole pool, shuffled. It stops early when the pool is
// exhausted.
func (g *Generator) decoys(cat *catalog.Catalog, target model.ItemRef) []model.ItemRef {
	pool := make([]model.ItemRef, 0)
	for _, ref := range cat.AllItems() {
		if ref.CounterKey == target.CounterKey && ref.Item.ID == target.Item.ID {
			continue
		}
		pool = append(pool, ref)
	}
	shelf := make([]model.ItemRef, 0, g.opts.Decoys+1)
	if target.Item.ID != "" {
		shelf = append(shelf, target)
	}
	for len(shelf) < g.opts.Decoys+1 && len(pool) > 0 {
		i := g.rnd.Intn(len(pool))
		shelf = append(shelf, pool[i])
		pool[i] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
	}
	shuffle(g.rnd, shelf)
	return shelf
}

func shuffle(rnd *rand.Rand, refs []model.ItemRef) {
	for i := len(refs) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		refs[i], refs[j] = refs[j], refs[i]
	}
}

func (g *Generator) between(lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return lo + g.rnd.Intn(hi-lo+1)
}
