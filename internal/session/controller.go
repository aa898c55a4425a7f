// Package session drives the practice and challenge round lifecycle.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/kazoe/internal/catalog"
	"github.com/verte-zerg/kazoe/internal/generator"
	"github.com/verte-zerg/kazoe/internal/modality"
	"github.com/verte-zerg/kazoe/internal/model"
	"github.com/verte-zerg/kazoe/internal/reading"
	"github.com/verte-zerg/kazoe/internal/stats"
)

const (
	defaultChallengeRounds = 10
	defaultAdvanceDelay    = 800 * time.Millisecond
	defaultSummaryDelay    = 500 * time.Millisecond
	defaultWeakFactor      = 2.0

	// IdleNoCounters is shown when the dataset could not be loaded.
	IdleNoCounters = "No counters loaded. Check the dataset path."
)

// Kind identifies a scheduled continuation.
type Kind int

const (
	// KindAdvance starts the next round.
	KindAdvance Kind = iota + 1
	// KindSummary finishes a challenge.
	KindSummary
)

// Continuation is a delayed step. The caller waits Delay and passes it back
// to Fire; continuations from a superseded session are discarded.
type Continuation struct {
	Epoch uint64
	Kind  Kind
	Delay time.Duration
}

// StatsRecorder persists per-counter verdicts.
type StatsRecorder interface {
	Record(ctx context.Context, key string, correct bool) error
	All() map[string]model.CounterStats
}

// Preferences exposes the persisted user choices the controller reads.
type Preferences interface {
	Preferences() model.Preferences
	Enabled() model.EnabledSet
}

// History stores completed challenges.
type History interface {
	InsertChallenge(ctx context.Context, rec model.ChallengeRecord) error
}

// Deps bundles the controller collaborators. History and Voice are optional.
type Deps struct {
	Catalog   *catalog.Catalog
	Generator *generator.Generator
	Registry  *modality.Registry
	Stats     StatsRecorder
	Settings  Preferences
	History   History
	Voice     Voice
	Port      Port
	Log       logrus.FieldLogger
	Config    model.Config
	Now       func() time.Time
}

// Controller owns the session state and the current round.
type Controller struct {
	deps  Deps
	cfg   model.Config
	state model.SessionState
	epoch uint64

	round    *model.Round
	resolved bool

	challengeID string
	startedAt   time.Time
	completed   bool
}

// New returns an idle controller.
func New(deps Deps) *Controller {
	cfg := deps.Config
	if cfg.ChallengeRounds <= 0 {
		cfg.ChallengeRounds = defaultChallengeRounds
	}
	if cfg.AdvanceDelay <= 0 {
		cfg.AdvanceDelay = defaultAdvanceDelay
	}
	if cfg.SummaryDelay <= 0 {
		cfg.SummaryDelay = defaultSummaryDelay
	}
	if cfg.WeakFactor <= 0 {
		cfg.WeakFactor = defaultWeakFactor
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		log := logrus.New()
		log.SetOutput(io.Discard)
		deps.Log = log
	}
	return &Controller{
		deps:  deps,
		cfg:   cfg,
		state: model.SessionState{Mode: model.ModePractice},
	}
}

// State returns a snapshot of the session counters.
func (c *Controller) State() model.SessionState {
	return c.state
}

// Round returns the active round, false when there is none.
func (c *Controller) Round() (model.Round, bool) {
	if c.round == nil {
		return model.Round{}, false
	}
	return *c.round, true
}

// Adapter returns the input adapter of the active round, nil when idle.
func (c *Controller) Adapter() modality.Adapter {
	if c.round == nil {
		return nil
	}
	return c.deps.Registry.For(c.round.Modality.Kind)
}

// Resolved reports whether the active round was answered and is waiting for
// its continuation.
func (c *Controller) Resolved() bool {
	return c.resolved
}

// ChallengeRounds returns the configured challenge length.
func (c *Controller) ChallengeRounds() int {
	return c.cfg.ChallengeRounds
}

// StartPractice resets the session and starts an untimed practice.
func (c *Controller) StartPractice() {
	c.start(model.ModePractice)
}

// StartChallenge resets the session and starts a scored challenge.
func (c *Controller) StartChallenge() {
	c.start(model.ModeChallenge)
}

// Stop abandons the session. Pending continuations become stale.
func (c *Controller) Stop() {
	c.epoch++
	c.round = nil
	c.resolved = false
	c.deps.Registry.ResetAll()
	c.state = model.SessionState{Mode: model.ModePractice}
	c.deps.Port.OnSessionStatus(c.state)
}

func (c *Controller) start(mode model.Mode) {
	c.epoch++
	c.state = model.SessionState{Mode: mode, Active: true}
	c.completed = false
	c.challengeID = ""
	if mode == model.ModeChallenge {
		c.challengeID = uuid.NewString()
		c.startedAt = c.deps.Now()
	}
	c.deps.Registry.ResetAll()
	c.deps.Log.WithFields(logrus.Fields{"mode": mode, "epoch": c.epoch}).Debug("session started")
	c.next()
}

func (c *Controller) next() {
	c.round = nil
	c.resolved = false
	if c.deps.Catalog == nil || c.deps.Catalog.Len() == 0 {
		c.idle(IdleNoCounters)
		return
	}
	active := c.deps.Catalog.Active(c.deps.Settings.Enabled())
	var (
		round model.Round
		err   error
	)
	if c.cfg.FocusWeak {
		weak := stats.SelectWeakCounters(c.deps.Stats.All(), c.cfg.WeakTop)
		round, err = c.deps.Generator.NextRoundWeighted(c.deps.Catalog, active, weak, c.cfg.WeakFactor)
	} else {
		round, err = c.deps.Generator.NextRound(c.deps.Catalog, active)
	}
	if err != nil {
		if errors.Is(err, generator.ErrNoActiveCounters) {
			c.idle(err.Error())
			return
		}
		c.deps.Log.WithError(err).Error("failed to generate round")
		c.idle(err.Error())
		return
	}
	c.round = &round
	surface := c.deps.Registry.For(round.Modality.Kind).Render(round)

	prefs := c.deps.Settings.Preferences()
	written, spoken := reading.Furigana(round.Counter, round.Quantity)
	c.deps.Port.OnRoundStart(RoundView{
		Prompt:   fmt.Sprintf("「%sください。」", written),
		Written:  written,
		Reading:  spoken,
		Furigana: prefs.Furigana,
		Hint:     hint(round),
		Surface:  surface,
	})
	c.deps.Port.OnSessionStatus(c.state)
	c.speak(prefs)
}

func (c *Controller) idle(message string) {
	c.round = nil
	c.resolved = false
	c.state.Active = false
	c.deps.Log.WithField("reason", message).Info("session idle")
	c.deps.Port.OnIdle(message)
	c.deps.Port.OnSessionStatus(c.state)
}

func hint(round model.Round) string {
	switch round.Modality.Kind {
	case model.ModalityClock:
		return fmt.Sprintf("set the %s hand", round.Modality.Hand)
	case model.ModalityCalendar:
		return "select a span on the calendar"
	case model.ModalityHouse:
		return fmt.Sprintf("select the %s", round.Modality.Target)
	default:
		if round.Target.English != "" {
			return fmt.Sprintf("%s (%s)", round.Target.English, round.Counter.Category)
		}
		return round.Counter.Category
	}
}

// Replay speaks the current prompt again.
func (c *Controller) Replay() {
	if c.round == nil {
		return
	}
	c.speak(c.deps.Settings.Preferences())
}

func (c *Controller) speak(prefs model.Preferences) {
	if c.deps.Voice == nil || !prefs.Voice || c.round == nil {
		return
	}
	c.deps.Voice.Say(reading.CounterReading(c.round.Counter, c.round.Quantity)+"ください。", prefs.FallbackVoice)
}

// Submit judges the learner's current selection. It returns false when there
// is no round waiting for an answer; otherwise the returned continuation must
// be passed to Fire after its delay.
func (c *Controller) Submit(ctx context.Context) (Continuation, bool) {
	if c.round == nil || c.resolved {
		return Continuation{}, false
	}
	round := *c.round
	adapter := c.deps.Registry.For(round.Modality.Kind)
	verdict := adapter.Judge(round, adapter.Extract())
	c.resolved = true

	if verdict.Correct {
		c.state.Streak++
		if c.state.Mode == model.ModeChallenge {
			c.state.Score++
		}
	} else {
		c.state.Streak = 0
		adapter.Reset()
	}
	if err := c.deps.Stats.Record(ctx, round.Counter.Key, verdict.Correct); err != nil {
		c.deps.Log.WithError(err).WithField("counter", round.Counter.Key).Warn("failed to persist counter stats")
	}
	c.state.RoundIndex++

	c.deps.Port.OnRoundResolved(verdict.Correct, feedback(round, verdict))
	c.deps.Port.OnSessionStatus(c.state)

	if c.state.Mode == model.ModeChallenge && c.state.RoundIndex >= c.cfg.ChallengeRounds {
		return Continuation{Epoch: c.epoch, Kind: KindSummary, Delay: c.cfg.SummaryDelay}, true
	}
	return Continuation{Epoch: c.epoch, Kind: KindAdvance, Delay: c.cfg.AdvanceDelay}, true
}

func feedback(round model.Round, v modality.Verdict) string {
	if v.Correct {
		return "正解！"
	}
	written, spoken := reading.Furigana(round.Counter, round.Quantity)
	msg := fmt.Sprintf("Not quite: %s is %s", written, spoken)
	if len(v.Reasons) > 0 {
		msg += " (" + strings.Join(v.Reasons, "; ") + ")"
	}
	return msg
}

// Fire runs a continuation returned by Submit. It reports false when the
// continuation was stale and discarded.
func (c *Controller) Fire(ctx context.Context, k Continuation) bool {
	if k.Epoch != c.epoch {
		c.deps.Log.WithFields(logrus.Fields{"epoch": k.Epoch, "current": c.epoch}).Debug("discarding stale continuation")
		return false
	}
	switch k.Kind {
	case KindAdvance:
		c.next()
		return true
	case KindSummary:
		return c.finishChallenge(ctx)
	default:
		return false
	}
}

func (c *Controller) finishChallenge(ctx context.Context) bool {
	if c.completed || c.state.Mode != model.ModeChallenge {
		return false
	}
	c.completed = true
	score, rounds := c.state.Score, c.state.RoundIndex

	if c.deps.History != nil {
		rec := model.ChallengeRecord{
			ID:        c.challengeID,
			StartedAt: c.startedAt,
			EndedAt:   c.deps.Now(),
			Score:     score,
			Rounds:    rounds,
		}
		if err := c.deps.History.InsertChallenge(ctx, rec); err != nil {
			c.deps.Log.WithError(err).Warn("failed to save challenge")
		}
	}
	c.deps.Log.WithFields(logrus.Fields{"score": score, "rounds": rounds}).Info("challenge complete")

	c.epoch++
	c.round = nil
	c.resolved = false
	c.deps.Registry.ResetAll()
	c.state = model.SessionState{Mode: model.ModePractice}
	c.deps.Port.OnChallengeComplete(score, rounds)
	c.deps.Port.OnSessionStatus(c.state)
	return true
}
