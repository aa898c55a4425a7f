package session

import (
	"github.com/verte-zerg/kazoe/internal/modality"
	"github.com/verte-zerg/kazoe/internal/model"
)

// RoundView is everything the presentation layer needs to show a round.
type RoundView struct {
	// Prompt is the customer line, e.g. 「3個ください。」.
	Prompt string
	// Written and Reading are the furigana pair for the requested amount.
	Written string
	Reading string
	// Furigana reports whether the reading should be shown above Written.
	Furigana bool
	Hint     string
	Surface  modality.Surface
}

// Port receives the events emitted by the controller.
type Port interface {
	OnRoundStart(view RoundView)
	OnRoundResolved(correct bool, feedback string)
	OnSessionStatus(state model.SessionState)
	OnChallengeComplete(score, rounds int)
	OnIdle(message string)
}

// Voice speaks prompts. Implementations must not block and must not read
// session or settings state from other goroutines; fallback carries the
// fallback-voice preference at the time of the call.
type Voice interface {
	Say(text string, fallback bool)
}
