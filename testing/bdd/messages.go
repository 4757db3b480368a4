package bdd

import (
	"context"
	"time"

	"github.com/AshkanYarmoradi/minkspec"
)

// MessageFactory builds a message when the scenario runs, so that it can
// depend on streams recorded earlier in the same run.
type MessageFactory func(tc *TestContext) (interface{}, error)

// FromTestContext returns a MessageFactory building a message from the event
// stream recorded for test.
func FromTestContext(test Test, build func(stream *EventStream) (interface{}, error)) MessageFactory {
	return func(tc *TestContext) (interface{}, error) {
		stream, err := tc.EventStream(test)
		if err != nil {
			return nil, err
		}
		return build(stream)
	}
}

func resolveMessage(tc *TestContext, message interface{}) (interface{}, error) {
	if factory, ok := message.(MessageFactory); ok {
		return factory(tc)
	}
	return message, nil
}

type givenCommand struct {
	handler mink.MessageHandler
	message interface{}
}

// GivenCommand returns a Given message executing command with handler.
// The command may be a MessageFactory.
func GivenCommand(handler mink.MessageHandler, command interface{}) GivenMessage {
	if handler == nil {
		panic(&ArgumentError{Name: "handler", Reason: "must not be nil"})
	}
	if command == nil {
		panic(&ArgumentError{Name: "command", Reason: "must not be nil"})
	}
	return &givenCommand{handler: handler, message: command}
}

func (m *givenCommand) HandleWith(ctx context.Context, gc *GivenContext) error {
	command, err := resolveMessage(gc.Tests, m.message)
	if err != nil {
		return err
	}
	gc.Logger.Debug("Replaying command", "type", mink.MessageType(command))
	return gc.Execute(ctx, func(ctx context.Context) error {
		_, err := gc.Processor.ExecuteCommand(ctx, m.handler, command)
		return err
	})
}

type givenEvent struct {
	handler mink.MessageHandler
	message interface{}
}

// GivenEvent returns a Given message handling event with handler.
// The event may be a MessageFactory.
func GivenEvent(handler mink.MessageHandler, event interface{}) GivenMessage {
	if handler == nil {
		panic(&ArgumentError{Name: "handler", Reason: "must not be nil"})
	}
	if event == nil {
		panic(&ArgumentError{Name: "event", Reason: "must not be nil"})
	}
	return &givenEvent{handler: handler, message: event}
}

func (m *givenEvent) HandleWith(ctx context.Context, gc *GivenContext) error {
	event, err := resolveMessage(gc.Tests, m.message)
	if err != nil {
		return err
	}
	gc.Logger.Debug("Replaying event", "type", mink.MessageType(event))
	return gc.Execute(ctx, func(ctx context.Context) error {
		_, err := gc.Processor.HandleEvent(ctx, m.handler, event)
		return err
	})
}

type timePassed struct {
	d time.Duration
}

func (m *timePassed) HandleWith(_ context.Context, gc *GivenContext) error {
	gc.Clock.advance(m.d)
	return nil
}

type timeIs struct {
	t time.Time
}

func (m *timeIs) HandleWith(_ context.Context, gc *GivenContext) error {
	return gc.Clock.setCurrent(m.t)
}

type scenarioMessage struct {
	run Runnable
}

func (m *scenarioMessage) HandleWith(ctx context.Context, gc *GivenContext) error {
	gc.Logger.Debug("Replaying scenario", "scenario", m.run.TestName())
	return m.run.runNested(ctx, gc)
}
