// Package protobuf provides a Protocol Buffers implementation of mink.Serializer.
//
// Only types implementing proto.Message can be registered or serialized.
// Deserialize always returns the registered message as a pointer, the way
// generated protobuf code is meant to be used:
//
//	s := protobuf.NewSerializer()
//	s.MustRegisterAll(&pb.AccountOpened{}, &pb.MoneyDeposited{})
//
//	processor := mink.NewProcessor(mink.WithSerializer(s))
//
// For plain Go structs use mink.JSONSerializer or the msgpack serializer.
package protobuf

import (
	"errors"
	"reflect"

	"google.golang.org/protobuf/proto"

	"github.com/AshkanYarmoradi/minkspec"
)

var _ mink.Serializer = (*Serializer)(nil)

var (
	// ErrNilMessage indicates an attempt to serialize a nil message.
	ErrNilMessage = errors.New("mink/protobuf: cannot serialize nil message")

	// ErrEmptyData indicates an attempt to deserialize nil data.
	ErrEmptyData = errors.New("mink/protobuf: cannot deserialize nil data")

	// ErrNotProtoMessage indicates the message does not implement proto.Message.
	ErrNotProtoMessage = errors.New("mink/protobuf: message must implement proto.Message")

	// ErrTypeNotRegistered indicates the message type is not registered.
	ErrTypeNotRegistered = errors.New("mink/protobuf: message type not registered")
)

var protoMessageType = reflect.TypeOf((*proto.Message)(nil)).Elem()

// SerializerOption configures the Serializer.
type SerializerOption func(*Serializer)

// WithRegistry shares an existing registry. Types already in it that do not
// implement proto.Message fail at Deserialize with ErrNotProtoMessage.
func WithRegistry(registry *mink.MessageRegistry) SerializerOption {
	return func(s *Serializer) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// Serializer encodes proto.Message values in the protobuf binary format.
type Serializer struct {
	registry *mink.MessageRegistry
}

// NewSerializer creates a new Protocol Buffers serializer.
func NewSerializer(opts ...SerializerOption) *Serializer {
	s := &Serializer{registry: mink.NewMessageRegistry()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the underlying registry.
func (s *Serializer) Registry() *mink.MessageRegistry {
	return s.registry
}

// Register adds a message type to the registry. The example, or a pointer to
// it, must implement proto.Message.
func (s *Serializer) Register(messageType string, example interface{}) error {
	if example == nil || !isProtoType(reflect.TypeOf(example)) {
		return mink.NewSerializationError(messageType, "register", ErrNotProtoMessage)
	}
	s.registry.Register(messageType, example)
	return nil
}

// RegisterAll registers examples under their message type names.
func (s *Serializer) RegisterAll(examples ...interface{}) error {
	for _, example := range examples {
		if err := s.Register(mink.MessageType(example), example); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister registers a message type and panics on error.
func (s *Serializer) MustRegister(messageType string, example interface{}) {
	if err := s.Register(messageType, example); err != nil {
		panic(err)
	}
}

// MustRegisterAll registers message types and panics on error.
func (s *Serializer) MustRegisterAll(examples ...interface{}) {
	if err := s.RegisterAll(examples...); err != nil {
		panic(err)
	}
}

// Serialize converts a message to protobuf binary format.
func (s *Serializer) Serialize(message interface{}) ([]byte, error) {
	if message == nil {
		return nil, mink.NewSerializationError("nil", "serialize", ErrNilMessage)
	}

	msg, ok := message.(proto.Message)
	if !ok {
		return nil, mink.NewSerializationError(mink.MessageType(message), "serialize", ErrNotProtoMessage)
	}

	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, mink.NewSerializationError(mink.MessageType(message), "serialize", err)
	}
	return data, nil
}

// Deserialize converts protobuf binary data back to a registered message.
// An empty slice is valid and decodes to the zero message.
func (s *Serializer) Deserialize(data []byte, messageType string) (interface{}, error) {
	if data == nil {
		return nil, mink.NewSerializationError(messageType, "deserialize", ErrEmptyData)
	}

	typ, ok := s.registry.Lookup(messageType)
	if !ok {
		return nil, mink.NewSerializationError(messageType, "deserialize", ErrTypeNotRegistered)
	}

	msg, ok := reflect.New(typ).Interface().(proto.Message)
	if !ok {
		return nil, mink.NewSerializationError(messageType, "deserialize", ErrNotProtoMessage)
	}

	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, mink.NewSerializationError(messageType, "deserialize", err)
	}
	return msg, nil
}

func isProtoType(t reflect.Type) bool {
	if t.Implements(protoMessageType) {
		return true
	}
	return t.Kind() != reflect.Ptr && reflect.PointerTo(t).Implements(protoMessageType)
}
