package bdd

import (
	"context"
)

// GivenMessage is one step of a scenario's history.
type GivenMessage interface {
	HandleWith(ctx context.Context, gc *GivenContext) error
}

// GivenMessageFunc adapts a function to GivenMessage.
type GivenMessageFunc func(ctx context.Context, gc *GivenContext) error

// HandleWith calls f.
func (f GivenMessageFunc) HandleWith(ctx context.Context, gc *GivenContext) error {
	return f(ctx, gc)
}

type sequenceKind int

const (
	sequenceEmpty sequenceKind = iota
	sequenceSingle
	sequencePair
)

// MessageSequence is an immutable ordered collection of Given messages.
// Sequences are built from EmptySequence, Single and Concat and are replayed
// left to right.
type MessageSequence struct {
	kind    sequenceKind
	message GivenMessage
	left    *MessageSequence
	right   *MessageSequence
	length  int
}

var emptySequence = &MessageSequence{kind: sequenceEmpty}

// EmptySequence returns the sequence containing no messages.
func EmptySequence() *MessageSequence {
	return emptySequence
}

// Single returns a sequence containing message.
func Single(message GivenMessage) *MessageSequence {
	if message == nil {
		panic(&ArgumentError{Name: "message", Reason: "must not be nil"})
	}
	return &MessageSequence{kind: sequenceSingle, message: message, length: 1}
}

// Concat returns the sequence of left's messages followed by right's.
func Concat(left, right *MessageSequence) *MessageSequence {
	if left == nil {
		panic(&ArgumentError{Name: "left", Reason: "must not be nil"})
	}
	if right == nil {
		panic(&ArgumentError{Name: "right", Reason: "must not be nil"})
	}
	switch {
	case left.IsEmpty():
		return right
	case right.IsEmpty():
		return left
	}
	return &MessageSequence{
		kind:   sequencePair,
		left:   left,
		right:  right,
		length: left.length + right.length,
	}
}

// Then returns the sequence of s's messages followed by next's.
func (s *MessageSequence) Then(next *MessageSequence) *MessageSequence {
	return Concat(s, next)
}

// Append returns s followed by message.
func (s *MessageSequence) Append(message GivenMessage) *MessageSequence {
	return Concat(s, Single(message))
}

// Len returns the number of messages in the sequence.
func (s *MessageSequence) Len() int {
	return s.length
}

// IsEmpty reports whether the sequence has no messages.
func (s *MessageSequence) IsEmpty() bool {
	return s.length == 0
}

// Messages returns the messages in replay order.
func (s *MessageSequence) Messages() []GivenMessage {
	out := make([]GivenMessage, 0, s.length)
	s.each(func(m GivenMessage) bool {
		out = append(out, m)
		return true
	})
	return out
}

// HandleWith replays every message in order. The first error stops the
// replay and is returned unchanged.
func (s *MessageSequence) HandleWith(ctx context.Context, gc *GivenContext) error {
	var err error
	s.each(func(m GivenMessage) bool {
		err = m.HandleWith(ctx, gc)
		return err == nil
	})
	return err
}

// each walks the tree depth first, left to right, until fn returns false.
func (s *MessageSequence) each(fn func(GivenMessage) bool) {
	stack := []*MessageSequence{s}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.kind {
		case sequenceSingle:
			if !fn(n.message) {
				return
			}
		case sequencePair:
			stack = append(stack, n.right, n.left)
		}
	}
}
