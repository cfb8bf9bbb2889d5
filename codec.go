package catga

import (
	"encoding/json"
	"fmt"
)

// EventCodec defines how events are encoded/decoded for persistence.
// Each event type should register its codec in the EventStore.
type EventCodec interface {
	Encode(v any) ([]byte, error)
	Decode(b []byte) (any, error)
}

// JSONCodec is a generic implementation of EventCodec for JSON-based encoding.
func JSONCodec[T any]() EventCodec {
	return jsonCodec[T]{}
}

type jsonCodec[T any] struct{}

func (jsonCodec[T]) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec[T]) Decode(b []byte) (any, error) {
	var v T
	err := json.Unmarshal(b, &v)
	if err != nil {
		return nil, fmt.Errorf("catga: failed to decode json: %w", err)
	}
	return v, err
}

// Serializer is the narrow encode/decode contract consumed by the outbox
// and snapshot stores for arbitrary payloads. It is intentionally
// separate from EventCodec, which is keyed by event type name; a
// Serializer is keyed by an explicit type tag supplied by the caller.
type Serializer interface {
	Serialize(value any, typeTag string) ([]byte, error)
	Deserialize(data []byte, typeTag string) (any, error)
}

// JSONSerializer is the default Serializer, used unless an application
// supplies its own (e.g. protobuf, msgpack).
type JSONSerializer struct{}

func (JSONSerializer) Serialize(value any, _ string) ([]byte, error) {
	return json.Marshal(value)
}

func (JSONSerializer) Deserialize(data []byte, _ string) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("catga: failed to deserialize: %w", err)
	}
	return v, nil
}
