// Package msgpack provides a MessagePack implementation of mink.Serializer.
//
// MessagePack produces smaller payloads than JSON while keeping the same
// struct-tag driven flexibility. Plugged into a processor it checks that every
// published event survives a binary round trip:
//
//	serializer := msgpack.NewSerializer()
//	serializer.RegisterAll(AccountOpened{}, MoneyDeposited{})
//
//	processor := mink.NewProcessor(mink.WithSerializer(serializer))
package msgpack

import (
	"errors"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/AshkanYarmoradi/minkspec"
)

var _ mink.Serializer = (*Serializer)(nil)

var (
	errNilMessage = errors.New("message cannot be nil")
	errEmptyData  = errors.New("data cannot be empty")
)

// Serializer encodes messages as MessagePack.
type Serializer struct {
	registry *mink.MessageRegistry
}

// SerializerOption configures a Serializer.
type SerializerOption func(*Serializer)

// WithRegistry shares an existing registry, e.g. one also used by a
// mink.JSONSerializer.
func WithRegistry(registry *mink.MessageRegistry) SerializerOption {
	return func(s *Serializer) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// NewSerializer creates a new MessagePack Serializer.
func NewSerializer(opts ...SerializerOption) *Serializer {
	s := &Serializer{registry: mink.NewMessageRegistry()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a mapping from messageType to the Go type of the example.
func (s *Serializer) Register(messageType string, example interface{}) {
	s.registry.Register(messageType, example)
}

// RegisterAll registers examples under their message type names.
func (s *Serializer) RegisterAll(examples ...interface{}) {
	s.registry.RegisterAll(examples...)
}

// Registry returns the underlying registry.
func (s *Serializer) Registry() *mink.MessageRegistry {
	return s.registry
}

// Serialize converts a message to MessagePack bytes.
func (s *Serializer) Serialize(message interface{}) ([]byte, error) {
	if message == nil {
		return nil, mink.NewSerializationError("nil", "serialize", errNilMessage)
	}

	data, err := msgpack.Marshal(message)
	if err != nil {
		return nil, mink.NewSerializationError(mink.MessageType(message), "serialize", err)
	}
	return data, nil
}

// Deserialize converts MessagePack bytes back to a message. Registered types
// come back as values of that type; anything else as a map[string]interface{}.
func (s *Serializer) Deserialize(data []byte, messageType string) (interface{}, error) {
	if len(data) == 0 {
		return nil, mink.NewSerializationError(messageType, "deserialize", errEmptyData)
	}

	t, ok := s.registry.Lookup(messageType)
	if !ok {
		var result map[string]interface{}
		if err := msgpack.Unmarshal(data, &result); err != nil {
			return nil, mink.NewSerializationError(messageType, "deserialize", err)
		}
		return result, nil
	}

	ptr := reflect.New(t)
	if err := msgpack.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, mink.NewSerializationError(messageType, "deserialize", err)
	}
	return ptr.Elem().Interface(), nil
}
