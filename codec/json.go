package codec

import (
	"bytes"
	"encoding/json"
)

type jsonEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JSON is the default text codec.
type JSON struct{}

func (JSON) Name() string   { return "json" }
func (JSON) FrameType() int { return TextFrame }

func (JSON) Encode(event string, data any) ([]byte, error) {
	if event == "" {
		return nil, ErrMissingEvent
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jsonEnvelope{Event: event, Data: raw})
}

func (JSON) Decode(b []byte) (string, []byte, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return "", nil, ErrEmptyEnvelope
	}
	var env jsonEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return "", nil, err
	}
	if env.Event == "" {
		return "", nil, ErrMissingEvent
	}
	return env.Event, env.Data, nil
}

func (JSON) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		data = []byte("null")
	}
	return json.Unmarshal(data, v)
}
