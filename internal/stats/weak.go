package stats

import (
	"sort"

	"github.com/verte-zerg/kazoe/internal/model"
)

// SelectWeakCounters selects the lowest-accuracy counters. Counters without
// answers count as fully accurate, so they are picked last.
func SelectWeakCounters(all map[string]model.CounterStats, top int) map[string]struct{} {
	weakSet := map[string]struct{}{}
	if len(all) == 0 {
		return weakSet
	}
	keys := make([]string, 0, len(all))
	for k, s := range all {
		if s.Total() == 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ai := ratio(all[keys[i]])
		aj := ratio(all[keys[j]])
		if ai == aj {
			return keys[i] < keys[j]
		}
		return ai < aj
	})
	if top <= 0 || top > len(keys) {
		top = len(keys)
	}
	for i := 0; i < top; i++ {
		weakSet[keys[i]] = struct{}{}
	}
	return weakSet
}

func ratio(s model.CounterStats) float64 {
	total := s.Total()
	if total == 0 {
		return 1.0
	}
	return float64(s.Correct) / float64(total)
}
