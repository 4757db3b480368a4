package bdd

import (
	"context"

	"github.com/AshkanYarmoradi/minkspec"
)

// WhenState selects the single operation a scenario puts under test.
type WhenState struct {
	scenario *Scenario
}

// CommandRun is a prepared command or event run; its payload is the event
// stream the operation published.
type CommandRun = Run[*EventStream]

// QueryRun is a prepared query run; its payload is the query response.
type QueryRun = Run[interface{}]

// IsExecutedBy puts the execution of command by handler under test.
// The command may be a MessageFactory.
func (w *WhenState) IsExecutedBy(handler mink.MessageHandler, command interface{}) *CommandRun {
	if handler == nil {
		panic(&ArgumentError{Name: "handler", Reason: "must not be nil"})
	}
	if command == nil {
		panic(&ArgumentError{Name: "command", Reason: "must not be nil"})
	}
	w.scenario.transition("IsExecutedBy", StateReadyToRun, StateWhen)

	return newRun(w.scenario, operation[*EventStream]{
		name:    "IsExecutedBy",
		kind:    mink.KindCommand,
		message: command,
		invoke: func(ctx context.Context, p MessageProcessor, message interface{}) (interface{}, error) {
			return p.ExecuteCommand(ctx, handler, message)
		},
		payload: streamPayload,
	})
}

// IsHandledBy puts the handling of event by handler under test.
// The event may be a MessageFactory.
func (w *WhenState) IsHandledBy(handler mink.MessageHandler, event interface{}) *CommandRun {
	if handler == nil {
		panic(&ArgumentError{Name: "handler", Reason: "must not be nil"})
	}
	if event == nil {
		panic(&ArgumentError{Name: "event", Reason: "must not be nil"})
	}
	w.scenario.transition("IsHandledBy", StateReadyToRun, StateWhen)

	return newRun(w.scenario, operation[*EventStream]{
		name:    "IsHandledBy",
		kind:    mink.KindEvent,
		message: event,
		invoke: func(ctx context.Context, p MessageProcessor, message interface{}) (interface{}, error) {
			return p.HandleEvent(ctx, handler, message)
		},
		payload: streamPayload,
	})
}

// IsExecutedByQuery puts the execution of request by query under test.
// A nil request lets the query name itself, as parameterless queries do.
func (w *WhenState) IsExecutedByQuery(query mink.QueryHandler, request interface{}) *QueryRun {
	if query == nil {
		panic(&ArgumentError{Name: "query", Reason: "must not be nil"})
	}
	w.scenario.transition("IsExecutedByQuery", StateReadyToRun, StateWhen)

	return newRun(w.scenario, operation[interface{}]{
		name:    "IsExecutedByQuery",
		kind:    mink.KindQuery,
		message: request,
		invoke: func(ctx context.Context, p MessageProcessor, message interface{}) (interface{}, error) {
			return p.ExecuteQuery(ctx, query, message)
		},
		payload: func(response interface{}, _ *EventStream) interface{} {
			return response
		},
	})
}

func streamPayload(_ interface{}, stream *EventStream) *EventStream {
	return stream
}
