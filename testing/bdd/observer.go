package bdd

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AshkanYarmoradi/minkspec"
)

// Outcome classifies how a run ended.
type Outcome int

const (
	// OutcomeSuccess means the When operation succeeded.
	OutcomeSuccess Outcome = iota
	// OutcomeFailure means the When operation returned an expected error.
	OutcomeFailure
	// OutcomeError means the run itself failed.
	OutcomeError
)

// String returns the outcome name used in metric labels.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// RunInfo describes a top-level run.
type RunInfo struct {
	ID          uuid.UUID
	Name        string
	Operation   string
	Kind        mink.MessageKind
	MessageType string
	StartedAt   time.Time
}

// Observer is notified around every top-level run. The context returned by
// RunStarted is used for the run, which lets tracing observers attach spans.
type Observer interface {
	RunStarted(ctx context.Context, info RunInfo) context.Context
	RunFinished(ctx context.Context, info RunInfo, outcome Outcome, err error)
}

// ObserverFuncs adapts a pair of functions to Observer. Either may be nil.
type ObserverFuncs struct {
	Started  func(ctx context.Context, info RunInfo) context.Context
	Finished func(ctx context.Context, info RunInfo, outcome Outcome, err error)
}

// RunStarted implements Observer.
func (o ObserverFuncs) RunStarted(ctx context.Context, info RunInfo) context.Context {
	if o.Started == nil {
		return ctx
	}
	return o.Started(ctx, info)
}

// RunFinished implements Observer.
func (o ObserverFuncs) RunFinished(ctx context.Context, info RunInfo, outcome Outcome, err error) {
	if o.Finished != nil {
		o.Finished(ctx, info, outcome, err)
	}
}
