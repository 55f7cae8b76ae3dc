// Package snapshot defines the codec used to serialize aggregate snapshots
// into event payloads. The format only has to be lossless for the aggregate's
// own fields; it is never interpreted by the stores.
package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Serializer encodes and decodes aggregate snapshots.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	// Format names the wire format, e.g. "json".
	Format() string
}

// JSON serializes snapshots as JSON. It is the default codec.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("marshaling snapshot: nil value")
	}
	return json.Marshal(v)
}

func (JSON) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("unmarshaling snapshot: empty payload")
	}
	return json.Unmarshal(data, v)
}

func (JSON) Format() string { return "json" }

// Msgpack serializes snapshots as MessagePack, trading readability for
// smaller payloads.
type Msgpack struct{}

func (Msgpack) Marshal(v any) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("marshaling snapshot: nil value")
	}
	return msgpack.Marshal(v)
}

func (Msgpack) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("unmarshaling snapshot: empty payload")
	}
	return msgpack.Unmarshal(data, v)
}

func (Msgpack) Format() string { return "msgpack" }

// ForFormat returns the serializer for a configured format name.
func ForFormat(format string) (Serializer, error) {
	switch format {
	case "", "json":
		return JSON{}, nil
	case "msgpack":
		return Msgpack{}, nil
	default:
		return nil, fmt.Errorf("unknown snapshot format %q", format)
	}
}
