package server

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// jsonCodec encodes ScriptService messages as plain JSON. The messages are
// ordinary Go structs rather than generated protobuf types, so the codec
// Connect registers for "json" by default (protojson) cannot handle them.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}
