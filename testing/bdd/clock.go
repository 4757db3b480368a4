package bdd

import (
	"strconv"
	"sync"
	"time"
)

// TimeSource supplies the readings a Clock measures elapsed time with.
type TimeSource func() time.Time

// FrozenTime returns a TimeSource that never advances. A Clock using it only
// moves when the Given phase shifts time, so every timestamp is deterministic.
func FrozenTime() TimeSource {
	instant := time.Unix(0, 0)
	return func() time.Time { return instant }
}

// ClockOption configures a Clock.
type ClockOption func(*Clock)

// WithTimeSource replaces the wall clock as the elapsed-time source.
func WithTimeSource(source TimeSource) ClockOption {
	return func(c *Clock) {
		if source != nil {
			c.source = source
		}
	}
}

// Clock is the controllable clock a scenario hands to its processor.
//
// Every reading is offset + elapsed, where offset is the seed shifted by the
// Given phase and elapsed is the stopwatch time accumulated while the clock
// was running. Readings never decrease and every one is kept in a request log.
//
// Clock implements mink.Clock.
type Clock struct {
	mu sync.Mutex

	offset  time.Time
	source  TimeSource
	elapsed time.Duration

	started   bool
	running   bool
	startedAt time.Time

	last     time.Time
	requests []time.Time
}

// NewClock creates a stopped clock seeded with seed. A zero seed uses the
// current UTC time.
func NewClock(seed time.Time, opts ...ClockOption) *Clock {
	if seed.IsZero() {
		seed = time.Now().UTC()
	}
	c := &Clock{
		offset: seed,
		source: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Seed replaces the seed instant. Only legal before the first Start.
func (c *Clock) Seed(seed time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		panic(&InvalidOperationError{
			Operation: "Seed",
			Current:   c.stateLocked(),
			Reason:    "the clock can only be seeded before it is first started",
		})
	}
	c.offset = seed
}

// Start resumes the stopwatch. Starting a running clock is a no-op.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}
	c.started = true
	c.running = true
	c.startedAt = c.source()
}

// Stop pauses the stopwatch, keeping the elapsed time accumulated so far.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	c.elapsed += c.sinceStartLocked()
	c.running = false
}

// Running reports whether the stopwatch is running.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Now returns offset + elapsed and appends it to the request log.
// It panics with *InvalidOperationError if the clock was never started.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		panic(&InvalidOperationError{
			Operation: "Now",
			Current:   c.stateLocked(),
			Reason:    "the clock has not been started",
		})
	}

	now := c.currentLocked()
	if now.Before(c.last) {
		now = c.last
	}
	c.last = now
	c.requests = append(c.requests, now)
	return now
}

// Current returns the value Now would return, without logging it.
func (c *Clock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.currentLocked()
	if now.Before(c.last) {
		return c.last
	}
	return now
}

// Elapsed returns the stopwatch time accumulated so far.
func (c *Clock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed + c.sinceStartLocked()
}

// RequestAt returns the i-th value Now has returned.
func (c *Clock) RequestAt(i int) (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= len(c.requests) {
		return time.Time{}, &ArgumentOutOfRangeError{
			Name:   "index",
			Value:  i,
			Reason: rangeReason(len(c.requests)),
		}
	}
	return c.requests[i], nil
}

// Requests returns a copy of the request log.
func (c *Clock) Requests() []time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]time.Time, len(c.requests))
	copy(out, c.requests)
	return out
}

// RequestCount returns the number of values Now has returned.
func (c *Clock) RequestCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// AssertRequest checks that actual equals the i-th value Now returned.
// Handlers stamping events with the clock can be verified this way.
func (c *Clock) AssertRequest(i int, actual time.Time) error {
	expected, err := c.RequestAt(i)
	if err != nil {
		return err
	}
	if !expected.Equal(actual) {
		return &TimestampMismatchError{Expected: expected, Actual: actual}
	}
	return nil
}

// advance shifts the clock forward by d.
func (c *Clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = c.offset.Add(d)
}

// setCurrent moves the clock so that it reads t. t must be strictly after
// the current reading.
func (c *Clock) setCurrent(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkFutureLocked(t, time.Time{}); err != nil {
		return err
	}
	c.offset = t.Add(-(c.elapsed + c.sinceStartLocked()))
	return nil
}

// checkFuture returns an *ArgumentOutOfRangeError unless t is strictly after
// both the current reading and floor.
func (c *Clock) checkFuture(t, floor time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkFutureLocked(t, floor)
}

func (c *Clock) checkFutureLocked(t, floor time.Time) error {
	current := c.currentLocked()
	if current.Before(c.last) {
		current = c.last
	}
	if current.Before(floor) {
		current = floor
	}
	if !t.After(current) {
		return &ArgumentOutOfRangeError{
			Name:   "time",
			Value:  t.Format(time.RFC3339Nano),
			Reason: "must be after the current time " + current.Format(time.RFC3339Nano),
		}
	}
	return nil
}

func (c *Clock) currentLocked() time.Time {
	return c.offset.Add(c.elapsed + c.sinceStartLocked())
}

func (c *Clock) sinceStartLocked() time.Duration {
	if !c.running {
		return 0
	}
	d := c.source().Sub(c.startedAt)
	if d < 0 {
		return 0
	}
	return d
}

func (c *Clock) stateLocked() string {
	switch {
	case c.running:
		return "running"
	case c.started:
		return "stopped"
	default:
		return "unstarted"
	}
}

func rangeReason(count int) string {
	if count == 0 {
		return "no time has been requested"
	}
	return "must be between 0 and " + strconv.Itoa(count-1)
}
