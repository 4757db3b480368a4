package mink

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// Serializer converts messages to bytes and back.
// A Processor configured with WithSerializer round-trips every published
// event through it before the unit of work commits.
type Serializer interface {
	// Serialize converts a message to bytes.
	Serialize(message interface{}) ([]byte, error)

	// Deserialize converts bytes back to a message.
	// The messageType is used to determine the target type.
	Deserialize(data []byte, messageType string) (interface{}, error)
}

// MessageRegistry maps message type names to Go types.
type MessageRegistry struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewMessageRegistry creates a new empty MessageRegistry.
func NewMessageRegistry() *MessageRegistry {
	return &MessageRegistry{
		types: make(map[string]reflect.Type),
	}
}

// Register adds a mapping from messageType to the Go type of the example.
func (r *MessageRegistry) Register(messageType string, example interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[messageType] = elemType(example)
}

// RegisterAll registers multiple messages under their MessageType names.
func (r *MessageRegistry) RegisterAll(examples ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, example := range examples {
		r.types[MessageType(example)] = elemType(example)
	}
}

// Lookup returns the Go type for the given message type name.
func (r *MessageRegistry) Lookup(messageType string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[messageType]
	return t, ok
}

// RegisteredTypes returns all registered message type names.
func (r *MessageRegistry) RegisteredTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.types))
	for t := range r.types {
		types = append(types, t)
	}
	return types
}

// Count returns the number of registered message types.
func (r *MessageRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

func elemType(example interface{}) reflect.Type {
	t := reflect.TypeOf(example)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// JSONSerializer is the default Serializer implementation using JSON encoding.
type JSONSerializer struct {
	registry *MessageRegistry
}

// NewJSONSerializer creates a new JSONSerializer with an empty registry.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{
		registry: NewMessageRegistry(),
	}
}

// NewJSONSerializerWithRegistry creates a new JSONSerializer sharing the given registry.
func NewJSONSerializerWithRegistry(registry *MessageRegistry) *JSONSerializer {
	if registry == nil {
		registry = NewMessageRegistry()
	}
	return &JSONSerializer{
		registry: registry,
	}
}

// Register adds a message type to the serializer's registry.
func (s *JSONSerializer) Register(messageType string, example interface{}) {
	s.registry.Register(messageType, example)
}

// RegisterAll registers multiple messages under their type names.
func (s *JSONSerializer) RegisterAll(examples ...interface{}) {
	s.registry.RegisterAll(examples...)
}

// Registry returns the underlying MessageRegistry.
func (s *JSONSerializer) Registry() *MessageRegistry {
	return s.registry
}

// Serialize converts a message to JSON bytes.
func (s *JSONSerializer) Serialize(message interface{}) ([]byte, error) {
	if message == nil {
		return nil, NewSerializationError("nil", "serialize", fmt.Errorf("message cannot be nil"))
	}

	data, err := json.Marshal(message)
	if err != nil {
		return nil, NewSerializationError(MessageType(message), "serialize", err)
	}

	return data, nil
}

// Deserialize converts JSON bytes back to a message.
// Unregistered types decode into a map[string]interface{}.
func (s *JSONSerializer) Deserialize(data []byte, messageType string) (interface{}, error) {
	if len(data) == 0 {
		return nil, NewSerializationError(messageType, "deserialize", fmt.Errorf("data cannot be empty"))
	}

	t, ok := s.registry.Lookup(messageType)
	if !ok {
		var result map[string]interface{}
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, NewSerializationError(messageType, "deserialize", err)
		}
		return result, nil
	}

	ptr := reflect.New(t)
	if err := json.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, NewSerializationError(messageType, "deserialize", err)
	}

	return ptr.Elem().Interface(), nil
}

// RoundTrip serializes a message and deserializes it again under its type name.
// It reports whether the message survives its data contract.
func RoundTrip(serializer Serializer, message interface{}) (interface{}, error) {
	messageType := MessageType(message)
	if messageType == "" {
		return nil, NewSerializationError("", "serialize", fmt.Errorf("cannot determine message type"))
	}

	data, err := serializer.Serialize(message)
	if err != nil {
		return nil, asSerializationError(messageType, "serialize", err)
	}

	decoded, err := serializer.Deserialize(data, messageType)
	if err != nil {
		return nil, asSerializationError(messageType, "deserialize", err)
	}
	return decoded, nil
}

func asSerializationError(messageType, operation string, err error) error {
	if _, ok := err.(*SerializationError); ok {
		return err
	}
	return NewSerializationError(messageType, operation, err)
}
