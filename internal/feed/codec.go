package feed

import (
	"encoding/json"
	"fmt"

	"github.com/openmohaa/overlay-engine/internal/models"
)

// Envelope is the wire frame in both directions.
type Envelope struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode frames a request for the remote service.
func Encode(req models.Request) ([]byte, error) {
	if req.Method == "" {
		return nil, fmt.Errorf("encode: empty request type")
	}
	env := Envelope{Type: string(req.Method), ID: req.ID}
	if req.Args != nil {
		data, err := json.Marshal(req.Args)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", req.Method, err)
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// DecodeEnvelope parses one wire frame.
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("decode: empty frame")
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("decode: frame without type")
	}
	return env, nil
}

// DecodePayload decodes the envelope data into T.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.Data) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.Type)
	}
	err := json.Unmarshal(env.Data, &out)
	return out, err
}

// DecodeEvent turns a frame into a typed, validated feed event.
func DecodeEvent(env Envelope) (models.Event, error) {
	return models.DecodeEvent(models.EventType(env.Type), env.ID, env.Data)
}
