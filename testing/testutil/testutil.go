// Package testutil provides test utilities and fixtures for testing minkspec
// processors and scenarios.
package testutil

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/AshkanYarmoradi/minkspec"
)

// Epoch is the default seed for deterministic scenario clocks.
var Epoch = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

// DefaultTimeout bounds test contexts unless MINKSPEC_TEST_TIMEOUT overrides it.
const DefaultTimeout = 10 * time.Second

// Context returns a context cancelled when the test ends or the timeout
// from MINKSPEC_TEST_TIMEOUT (default DefaultTimeout) expires.
func Context(tb testing.TB) context.Context {
	tb.Helper()

	timeout := DefaultTimeout
	if v := os.Getenv("MINKSPEC_TEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			timeout = d
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	tb.Cleanup(cancel)
	return ctx
}

// NewProcessor creates a processor with recovery and validation middleware,
// closed when the test ends.
func NewProcessor(tb testing.TB, opts ...mink.ProcessorOption) *mink.Processor {
	tb.Helper()

	base := []mink.ProcessorOption{
		mink.WithMiddleware(mink.RecoveryMiddleware(), mink.ValidationMiddleware()),
	}
	p := mink.NewProcessor(append(base, opts...)...)
	tb.Cleanup(func() { _ = p.Close() })
	return p
}

// UniqueName returns prefix followed by a short random suffix.
func UniqueName(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	if prefix == "" {
		return suffix
	}
	return prefix + "_" + suffix
}
