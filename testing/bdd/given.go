package bdd

import (
	"time"

	"github.com/AshkanYarmoradi/minkspec"
)

// GivenState builds the history a scenario replays before its When operation.
type GivenState struct {
	scenario *Scenario
}

// Given is a readability no-op: Given().Command(a).Given().Command(b).
func (g *GivenState) Given() *GivenState {
	g.scenario.require("Given", StateGiven)
	return g
}

// Command adds a command executed by handler to the history.
func (g *GivenState) Command(handler mink.MessageHandler, command interface{}) *GivenState {
	g.scenario.require("Command", StateGiven)
	g.scenario.appendGiven(GivenCommand(handler, command))
	return g
}

// Event adds an event handled by handler to the history.
func (g *GivenState) Event(handler mink.MessageHandler, event interface{}) *GivenState {
	g.scenario.require("Event", StateGiven)
	g.scenario.appendGiven(GivenEvent(handler, event))
	return g
}

// Messages adds every message of sequence to the history.
func (g *GivenState) Messages(sequence *MessageSequence) *GivenState {
	g.scenario.require("Messages", StateGiven)
	if sequence == nil {
		panic(&ArgumentError{Name: "sequence", Reason: "must not be nil"})
	}
	if sequence.IsEmpty() {
		return g
	}

	s := g.scenario
	s.mu.Lock()
	s.given = s.given.Then(sequence)
	s.committed = true
	s.mu.Unlock()
	return g
}

// Scenario adds a prepared scenario to the history. Its Given messages and
// When operation are replayed against this scenario's processor and clock,
// and its event stream is recorded in the shared TestContext.
func (g *GivenState) Scenario(run Runnable) *GivenState {
	g.scenario.require("Scenario", StateGiven)
	if run == nil {
		panic(&ArgumentError{Name: "run", Reason: "must not be nil"})
	}
	g.scenario.appendGiven(&scenarioMessage{run: run})
	return g
}

// TimePassed moves the clock forward by d before the following messages.
// A zero duration is a no-op; a negative one panics.
func (g *GivenState) TimePassed(d time.Duration) *GivenState {
	g.scenario.require("TimePassed", StateGiven)
	if d < 0 {
		panic(&ArgumentOutOfRangeError{Name: "duration", Value: d, Reason: "must not be negative"})
	}
	if d == 0 {
		return g
	}
	g.scenario.appendGiven(&timePassed{d: d})
	return g
}

// TimeIs sets the clock to t when the history is replayed. It must come
// before any message or time shift, and t must be after the clock's current
// time. A nested replay applies t to the hosting scenario's clock.
func (g *GivenState) TimeIs(t time.Time) *GivenState {
	s := g.scenario
	s.require("TimeIs", StateGiven)

	s.mu.Lock()
	committed, floor := s.committed, s.timeFloor
	s.mu.Unlock()
	if committed {
		panic(&InvalidOperationError{
			Operation: "TimeIs",
			Current:   StateGiven.String(),
			Attempted: StateGiven.String(),
			Reason:    "the time can only be set before any message or time shift",
		})
	}

	if err := s.clock.checkFuture(t, floor); err != nil {
		panic(err)
	}

	s.mu.Lock()
	s.timeFloor = t
	s.given = s.given.Append(&timeIs{t: t})
	s.mu.Unlock()
	return g
}

// When ends the Given phase.
func (g *GivenState) When() *WhenState {
	g.scenario.transition("When", StateWhen, StateGiven)
	return &WhenState{scenario: g.scenario}
}
