package testutil

import (
	"fmt"
	"runtime"
	"sync"
	"testing"
)

// MockT is a mock testing.TB that captures test failures for testing.
// It is used to test functions that call testing.T methods like Fatal, Error, etc.
type MockT struct {
	testing.TB // embed to satisfy unexported methods

	mu       sync.Mutex
	name     string
	Failed_  bool
	Fatal_   bool
	Message  string
	Messages []string
	Errs     []error
	Logs     []string
	cleanups []func()
}

// NewMockT creates a new MockT instance.
func NewMockT() *MockT {
	return &MockT{name: "MockT", Logs: make([]string, 0)}
}

// NewNamedMockT creates a MockT reporting name from Name().
func NewNamedMockT(name string) *MockT {
	m := NewMockT()
	m.name = name
	return m
}

// Helper implements testing.TB.
func (m *MockT) Helper() {}

// Name implements testing.TB.
func (m *MockT) Name() string { return m.name }

// Log implements testing.TB.
func (m *MockT) Log(args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, fmt.Sprint(args...))
}

// Logf implements testing.TB.
func (m *MockT) Logf(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, fmt.Sprintf(format, args...))
}

// Error implements testing.TB.
func (m *MockT) Error(args ...any) {
	m.record(false, fmt.Sprint(args...), args...)
}

// Errorf implements testing.TB.
func (m *MockT) Errorf(format string, args ...any) {
	m.record(false, fmt.Sprintf(format, args...), args...)
}

// Fail implements testing.TB.
func (m *MockT) Fail() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failed_ = true
}

// FailNow implements testing.TB.
func (m *MockT) FailNow() {
	m.Fail()
	runtime.Goexit()
}

// Failed implements testing.TB.
func (m *MockT) Failed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Failed_
}

// Fatal implements testing.TB.
func (m *MockT) Fatal(args ...any) {
	m.record(true, fmt.Sprint(args...), args...)
	runtime.Goexit()
}

// Fatalf implements testing.TB.
func (m *MockT) Fatalf(format string, args ...any) {
	m.record(true, fmt.Sprintf(format, args...), args...)
	runtime.Goexit()
}

// Cleanup implements testing.TB. Registered functions run on RunCleanups.
func (m *MockT) Cleanup(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanups = append(m.cleanups, fn)
}

// RunCleanups runs the registered cleanup functions in reverse order.
func (m *MockT) RunCleanups() {
	m.mu.Lock()
	cleanups := m.cleanups
	m.cleanups = nil
	m.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

// Err returns the first error value passed to Error or Fatal.
func (m *MockT) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Errs) == 0 {
		return nil
	}
	return m.Errs[0]
}

func (m *MockT) record(fatal bool, msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Failed_ = true
	if fatal {
		m.Fatal_ = true
	}
	if m.Message == "" {
		m.Message = msg
	}
	m.Messages = append(m.Messages, msg)
	if len(args) > 0 {
		if err, ok := args[0].(error); ok {
			m.Errs = append(m.Errs, err)
		}
	}
}

// RunWithMockT runs a function with a MockT and waits for completion.
// This handles runtime.Goexit() calls from Fatal/FailNow.
// Cleanup functions registered by fn run after it returns.
func RunWithMockT(fn func(m *MockT)) *MockT {
	mt := NewMockT()
	RunMockT(mt, fn)
	return mt
}

// RunMockT runs fn with mt on its own goroutine, then runs its cleanups.
func RunMockT(mt *MockT, fn func(m *MockT)) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(mt)
	}()
	<-done

	cleanupDone := make(chan struct{})
	go func() {
		defer close(cleanupDone)
		mt.RunCleanups()
	}()
	<-cleanupDone
}
