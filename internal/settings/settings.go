// Package settings persists display preferences and the enabled-counter set.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/kazoe/internal/model"
	"github.com/verte-zerg/kazoe/internal/store"
)

// Persisted keys.
const (
	KeyFurigana      = "showFurigana"
	KeyVoice         = "voiceEnabled"
	KeyFallbackVoice = "fallbackVoiceEnabled"
	KeyEnabled       = "enabledCounters"
)

const allSentinel = "all"

// ErrLastCounter is returned when a toggle would disable every counter.
var ErrLastCounter = errors.New("at least one counter must stay enabled")

// Blobs is the key-value persistence used by Settings.
type Blobs interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Settings caches persisted settings and writes every change through.
type Settings struct {
	blobs   Blobs
	log     logrus.FieldLogger
	prefs   model.Preferences
	enabled model.EnabledSet
	stored  map[string]bool
}

// Load reads every setting once. Missing or corrupt values fall back to
// defaults and are logged, never returned as errors.
func Load(ctx context.Context, blobs Blobs, log logrus.FieldLogger) *Settings {
	s := &Settings{blobs: blobs, log: log, prefs: model.DefaultPreferences(), enabled: model.AllEnabled(), stored: map[string]bool{}}
	s.prefs.Furigana = s.loadBool(ctx, KeyFurigana, s.prefs.Furigana)
	s.prefs.Voice = s.loadBool(ctx, KeyVoice, s.prefs.Voice)
	s.prefs.FallbackVoice = s.loadBool(ctx, KeyFallbackVoice, s.prefs.FallbackVoice)
	s.enabled = s.loadEnabled(ctx)
	return s
}

func (s *Settings) read(ctx context.Context, key string, dst any) bool {
	raw, err := s.blobs.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return false
	}
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("failed to read setting, using default")
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("corrupt setting, using default")
		return false
	}
	s.stored[key] = true
	return true
}

// Has reports whether key held a valid stored value at load time.
func (s *Settings) Has(key string) bool {
	return s.stored[key]
}

func (s *Settings) loadBool(ctx context.Context, key string, def bool) bool {
	var v bool
	if !s.read(ctx, key, &v) {
		return def
	}
	return v
}

func (s *Settings) loadEnabled(ctx context.Context) model.EnabledSet {
	var raw json.RawMessage
	if !s.read(ctx, KeyEnabled, &raw) {
		return model.AllEnabled()
	}
	set, err := decodeEnabled(raw)
	if err != nil {
		s.log.WithError(err).WithField("key", KeyEnabled).Warn("corrupt setting, using default")
		return model.AllEnabled()
	}
	return set
}

func decodeEnabled(raw []byte) (model.EnabledSet, error) {
	var sentinel string
	if err := json.Unmarshal(raw, &sentinel); err == nil {
		if sentinel == allSentinel {
			return model.AllEnabled(), nil
		}
		return model.EnabledSet{}, fmt.Errorf("unknown enabled sentinel %q", sentinel)
	}
	var keys []string
	if err := json.Unmarshal(raw, &keys); err != nil {
		return model.EnabledSet{}, err
	}
	return model.EnabledSet{Keys: keys}, nil
}

func encodeEnabled(set model.EnabledSet) ([]byte, error) {
	if set.All {
		return json.Marshal(allSentinel)
	}
	keys := set.Keys
	if keys == nil {
		keys = []string{}
	}
	return json.Marshal(keys)
}

func (s *Settings) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.blobs.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Preferences returns the cached preferences.
func (s *Settings) Preferences() model.Preferences {
	return s.prefs
}

// SetPreferences updates and persists the preferences.
func (s *Settings) SetPreferences(ctx context.Context, p model.Preferences) error {
	s.prefs = p
	if err := s.write(ctx, KeyFurigana, p.Furigana); err != nil {
		return err
	}
	if err := s.write(ctx, KeyVoice, p.Voice); err != nil {
		return err
	}
	return s.write(ctx, KeyFallbackVoice, p.FallbackVoice)
}

// Enabled returns the cached enabled-counter set.
func (s *Settings) Enabled() model.EnabledSet {
	return s.enabled
}

// SetEnabled updates and persists the enabled-counter set.
func (s *Settings) SetEnabled(ctx context.Context, set model.EnabledSet) error {
	s.enabled = set
	data, err := encodeEnabled(set)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", KeyEnabled, err)
	}
	if err := s.blobs.Put(ctx, KeyEnabled, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", KeyEnabled, err)
	}
	return nil
}

// Toggle flips one counter in the enabled set. universe lists every catalog
// key so the "all" sentinel can be expanded and re-collapsed.
func (s *Settings) Toggle(ctx context.Context, key string, universe []string) (model.EnabledSet, error) {
	var keys []string
	if s.enabled.All {
		keys = append(keys, universe...)
	} else {
		keys = append(keys, s.enabled.Keys...)
	}
	found := false
	next := keys[:0]
	for _, k := range keys {
		if k == key {
			found = true
			continue
		}
		next = append(next, k)
	}
	if !found {
		next = append(next, key)
	}
	if len(next) == 0 {
		return s.enabled, ErrLastCounter
	}
	set := model.EnabledSet{Keys: next}
	if len(universe) > 0 && len(next) == len(universe) && containsAll(next, universe) {
		set = model.AllEnabled()
	}
	return set, s.SetEnabled(ctx, set)
}

func containsAll(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, k := range have {
		set[k] = struct{}{}
	}
	for _, k := range want {
		if _, ok := set[k]; !ok {
			return false
		}
	}
	return true
}
