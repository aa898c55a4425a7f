package catalog

import (
	"github.com/samber/lo"

	"github.com/verte-zerg/kazoe/internal/model"
)

// Reconcile drops keys that are not in the catalog. A selection that covers
// every counter collapses to the "all enabled" sentinel.
func (c *Catalog) Reconcile(keys []string) model.EnabledSet {
	known := lo.Uniq(lo.Filter(keys, func(k string, _ int) bool {
		_, ok := c.index[k]
		return ok
	}))
	if c.Len() > 0 && len(known) == c.Len() {
		return model.AllEnabled()
	}
	return model.EnabledSet{Keys: known}
}

// Active returns the counters eligible for rounds. It never returns an empty
// slice for a non-empty catalog: an empty selection falls back to the full
// catalog.
func (c *Catalog) Active(set model.EnabledSet) []model.Counter {
	if c.Len() == 0 {
		return nil
	}
	if set.All {
		return c.Counters()
	}
	reconciled := c.Reconcile(set.Keys)
	if reconciled.All {
		return c.Counters()
	}
	enabled := lo.SliceToMap(reconciled.Keys, func(k string) (string, struct{}) {
		return k, struct{}{}
	})
	active := lo.Filter(c.counters, func(counter model.Counter, _ int) bool {
		_, ok := enabled[counter.Key]
		return ok
	})
	if len(active) == 0 {
		return c.Counters()
	}
	return active
}

// IsEnabled reports whether a counter is part of the selection.
func (c *Catalog) IsEnabled(set model.EnabledSet, key string) bool {
	if set.All {
		_, ok := c.index[key]
		return ok
	}
	return lo.Contains(set.Keys, key)
}
