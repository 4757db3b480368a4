package bdd

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/AshkanYarmoradi/minkspec"
)

// TB is an alias for testing.TB interface to allow mocking in tests
type TB = testing.TB

// State is the position of a scenario in its Given/When/Then lifecycle.
type State int

const (
	StateInitialized State = iota
	StateGiven
	StateWhen
	StateReadyToRun
	StateThen
	StateVerified
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInitialized:
		return "Initialized"
	case StateGiven:
		return "Given"
	case StateWhen:
		return "When"
	case StateReadyToRun:
		return "ReadyToRun"
	case StateThen:
		return "Then"
	case StateVerified:
		return "Verified"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type scenarioConfig struct {
	name      string
	seed      time.Time
	source    TimeSource
	logger    mink.Logger
	observers []Observer
}

// Option configures a Scenario.
type Option func(*scenarioConfig)

// WithName overrides the scenario name, which defaults to tb.Name().
func WithName(name string) Option {
	return func(c *scenarioConfig) {
		c.name = name
	}
}

// WithClockSeed sets the instant the scenario clock starts at.
func WithClockSeed(seed time.Time) Option {
	return func(c *scenarioConfig) {
		c.seed = seed
	}
}

// WithFrozenClock makes the scenario clock move only when time is shifted
// in the Given phase.
func WithFrozenClock() Option {
	return func(c *scenarioConfig) {
		c.source = FrozenTime()
	}
}

// WithScenarioTimeSource sets the source the scenario clock measures elapsed time with.
func WithScenarioTimeSource(source TimeSource) Option {
	return func(c *scenarioConfig) {
		c.source = source
	}
}

// WithLogger sets the logger used for phase transitions and outcomes.
func WithLogger(logger mink.Logger) Option {
	return func(c *scenarioConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers observers notified around every run.
func WithObserver(observers ...Observer) Option {
	return func(c *scenarioConfig) {
		for _, o := range observers {
			if o != nil {
				c.observers = append(c.observers, o)
			}
		}
	}
}

// Scenario is one Given/When/Then test against a processor.
//
//	scenario := bdd.NewScenario(t, processor)
//	scenario.Given().
//	    Command(openAccount, OpenAccount{ID: "A"}).
//	    When().
//	    IsExecutedBy(withdraw, Withdraw{ID: "A", Amount: 100}).
//	    ExpectError().
//	    Run(ctx)
//
// Every method checks the scenario state and panics with an
// *InvalidOperationError when called out of order.
type Scenario struct {
	tb        TB
	id        uuid.UUID
	name      string
	processor MessageProcessor
	clock     *Clock
	logger    mink.Logger
	observers []Observer

	mu        sync.Mutex
	state     State
	given     *MessageSequence
	committed bool
	timeFloor time.Time
}

// NewScenario creates a scenario driving p.
func NewScenario(tb TB, p MessageProcessor, opts ...Option) *Scenario {
	tb.Helper()

	if p == nil {
		panic(&ArgumentError{Name: "processor", Reason: "must not be nil"})
	}

	cfg := scenarioConfig{
		name:   tb.Name(),
		logger: mink.NopLogger(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var clockOpts []ClockOption
	if cfg.source != nil {
		clockOpts = append(clockOpts, WithTimeSource(cfg.source))
	}

	return &Scenario{
		tb:        tb,
		id:        uuid.New(),
		name:      cfg.name,
		processor: p,
		clock:     NewClock(cfg.seed, clockOpts...),
		logger:    cfg.logger,
		observers: cfg.observers,
		state:     StateInitialized,
		given:     EmptySequence(),
	}
}

// ID returns the unique scenario identity.
func (s *Scenario) ID() uuid.UUID {
	return s.id
}

// Name returns the scenario name.
func (s *Scenario) Name() string {
	return s.name
}

// TestID implements Test.
func (s *Scenario) TestID() uuid.UUID {
	return s.id
}

// TestName implements Test.
func (s *Scenario) TestName() string {
	return s.name
}

// State returns the current state.
func (s *Scenario) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Clock returns the scenario clock.
func (s *Scenario) Clock() *Clock {
	return s.clock
}

// Processor returns the processor under test.
func (s *Scenario) Processor() MessageProcessor {
	return s.processor
}

// Given enters the Given phase.
func (s *Scenario) Given() *GivenState {
	s.transition("Given", StateGiven, StateInitialized)
	return &GivenState{scenario: s}
}

// transition moves to `to` if the current state is one of `from`, and panics
// with an *InvalidOperationError otherwise.
func (s *Scenario) transition(op string, to State, from ...State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range from {
		if s.state == f {
			if s.state != to {
				s.logger.Debug("Scenario state changed",
					"scenario", s.name,
					"from", s.state.String(),
					"to", to.String(),
				)
			}
			s.state = to
			return
		}
	}
	panic(&InvalidOperationError{Operation: op, Current: s.state.String(), Attempted: to.String()})
}

// require panics unless the scenario is in state.
func (s *Scenario) require(op string, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != state {
		panic(&InvalidOperationError{Operation: op, Current: s.state.String(), Attempted: state.String()})
	}
}

func (s *Scenario) appendGiven(m GivenMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.given = s.given.Append(m)
	s.committed = true
}

func (s *Scenario) givenSequence() *MessageSequence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.given
}
