package modality

import (
	"fmt"
	"math"

	"github.com/verte-zerg/kazoe/internal/model"
)

// Clock is a three-hand clock face.
type Clock struct {
	hand model.Hand
	time model.ClockTime
}

// NewClock returns a clock with all hands at 0.
func NewClock() *Clock {
	return &Clock{hand: model.HandHours}
}

// Kind implements Adapter.
func (a *Clock) Kind() model.ModalityKind { return model.ModalityClock }

// Render implements Adapter.
func (a *Clock) Render(round model.Round) Surface {
	a.time = model.ClockTime{}
	a.hand = round.Modality.Hand
	if a.hand == "" {
		a.hand = model.HandHours
	}
	return a.Surface()
}

// Surface implements Adapter.
func (a *Clock) Surface() Surface {
	return Surface{Kind: model.ModalityClock, Hand: a.hand, Clock: a.time}
}

// Reset implements Adapter.
func (a *Clock) Reset() {
	a.time = model.ClockTime{}
}

// Select makes hand the one moved by Step.
func (a *Clock) Select(hand model.Hand) {
	a.hand = hand
}

// Selected returns the hand moved by Step.
func (a *Clock) Selected() model.Hand {
	return a.hand
}

// Set places a hand at a discrete position.
func (a *Clock) Set(hand model.Hand, value int) {
	a.time = a.time.With(hand, value)
}

// Step moves the selected hand by delta positions.
func (a *Clock) Step(delta int) {
	a.Set(a.hand, a.time.Get(a.hand)+delta)
}

// SetAngle places a hand from a dial angle in degrees, clockwise from 12.
func (a *Clock) SetAngle(hand model.Hand, degrees float64) {
	a.Set(hand, AngleToStep(degrees, hand.Modulus()))
}

// Angle returns the dial angle of a hand in degrees.
func (a *Clock) Angle(hand model.Hand) float64 {
	return float64(a.time.Get(hand)) * 360 / float64(hand.Modulus())
}

// AngleToStep quantizes a dial angle to the nearest of steps positions.
func AngleToStep(degrees float64, steps int) int {
	if steps <= 0 {
		return 0
	}
	deg := math.Mod(degrees, 360)
	if deg < 0 {
		deg += 360
	}
	step := int(math.Round(deg / (360 / float64(steps))))
	return model.Wrap(step, steps)
}

// Extract implements Adapter.
func (a *Clock) Extract() model.Selection {
	return model.Selection{Kind: model.ModalityClock, Clock: a.time}
}

// Judge implements Adapter. Every hand must match, so a non-target hand left
// away from 0 fails the round.
func (a *Clock) Judge(round model.Round, sel model.Selection) Verdict {
	v := Verdict{Correct: true}
	for _, hand := range model.Hands {
		got := model.Wrap(sel.Clock.Get(hand), hand.Modulus())
		want := round.Expected.Clock.Get(hand)
		if got != want {
			v.Correct = false
			v.Reasons = append(v.Reasons, fmt.Sprintf("%s hand at %d, expected %d", hand, got, want))
		}
	}
	return v
}
