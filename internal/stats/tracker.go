// Package stats tracks per-counter accuracy and renders reports.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/kazoe/internal/model"
	"github.com/verte-zerg/kazoe/internal/store"
)

// BlobKey is the settings key holding the per-counter stats map.
const BlobKey = "counterStats"

// Blobs is the key-value persistence used by Tracker.
type Blobs interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Tracker keeps per-counter correct/incorrect counts and persists them on
// every mutation.
type Tracker struct {
	blobs Blobs
	log   logrus.FieldLogger
	stats map[string]model.CounterStats
}

// LoadTracker reads the persisted stats map. A corrupt blob is discarded.
func LoadTracker(ctx context.Context, blobs Blobs, log logrus.FieldLogger) *Tracker {
	t := &Tracker{blobs: blobs, log: log, stats: map[string]model.CounterStats{}}
	raw, err := blobs.Get(ctx, BlobKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		log.WithError(err).Warn("failed to read counter stats, starting empty")
	default:
		var parsed map[string]model.CounterStats
		if err := json.Unmarshal(raw, &parsed); err != nil {
			log.WithError(err).Warn("corrupt counter stats, starting empty")
			break
		}
		for k, v := range parsed {
			if v.Correct < 0 || v.Incorrect < 0 {
				continue
			}
			t.stats[k] = v
		}
	}
	return t
}

func (t *Tracker) save(ctx context.Context) error {
	data, err := json.Marshal(t.stats)
	if err != nil {
		return fmt.Errorf("failed to encode counter stats: %w", err)
	}
	if err := t.blobs.Put(ctx, BlobKey, data); err != nil {
		return fmt.Errorf("failed to save counter stats: %w", err)
	}
	return nil
}

// Record counts one answer for a counter, creating its entry when absent.
// The in-memory count is updated even when persisting fails.
func (t *Tracker) Record(ctx context.Context, key string, correct bool) error {
	entry := t.stats[key]
	if correct {
		entry.Correct++
	} else {
		entry.Incorrect++
	}
	t.stats[key] = entry
	return t.save(ctx)
}

// Get returns the stats of a counter, zero when nothing was recorded.
func (t *Tracker) Get(key string) model.CounterStats {
	return t.stats[key]
}

// Accuracy returns the rounded percentage of correct answers. ok is false
// when the counter has no answers.
func (t *Tracker) Accuracy(key string) (pct int, ok bool) {
	return Accuracy(t.stats[key])
}

// Accuracy returns the rounded percentage of correct answers in s.
func Accuracy(s model.CounterStats) (int, bool) {
	total := s.Total()
	if total == 0 {
		return 0, false
	}
	return int(math.Round(100 * float64(s.Correct) / float64(total))), true
}

// Reconcile drops entries for unknown counters and zero-fills missing ones.
func (t *Tracker) Reconcile(ctx context.Context, keys []string) error {
	next := make(map[string]model.CounterStats, len(keys))
	for _, k := range keys {
		next[k] = t.stats[k]
	}
	t.stats = next
	return t.save(ctx)
}

// Reset zeroes every entry.
func (t *Tracker) Reset(ctx context.Context) error {
	for k := range t.stats {
		t.stats[k] = model.CounterStats{}
	}
	return t.save(ctx)
}

// All returns a copy of the stats map.
func (t *Tracker) All() map[string]model.CounterStats {
	out := make(map[string]model.CounterStats, len(t.stats))
	for k, v := range t.stats {
		out[k] = v
	}
	return out
}

// Keys returns the tracked counter keys, sorted.
func (t *Tracker) Keys() []string {
	keys := make([]string, 0, len(t.stats))
	for k := range t.stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
