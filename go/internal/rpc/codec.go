// Package rpc holds the Connect plumbing shared by every console service: the
// JSON codec used in place of generated protobuf messages, the service router,
// client construction and the mapping from domain errors to Connect codes.
package rpc

import (
	"encoding/json"
)

// JSONCodec marshals plain Go structs with encoding/json. It is registered under
// the "json" name so it replaces Connect's protojson codec.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
