package codec

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

type msgpackEnvelope struct {
	Event string             `msgpack:"event"`
	Data  msgpack.RawMessage `msgpack:"data"`
}

// MsgPack is a binary codec. Struct fields use their json tags so the same
// payload types serve both codecs.
type MsgPack struct{}

func (MsgPack) Name() string   { return "msgpack" }
func (MsgPack) FrameType() int { return BinaryFrame }

func (MsgPack) Encode(event string, data any) ([]byte, error) {
	if event == "" {
		return nil, ErrMissingEvent
	}
	raw, err := marshalMsgPack(data)
	if err != nil {
		return nil, err
	}
	return marshalMsgPack(msgpackEnvelope{Event: event, Data: raw})
}

func (MsgPack) Decode(b []byte) (string, []byte, error) {
	if len(b) == 0 {
		return "", nil, ErrEmptyEnvelope
	}
	var env msgpackEnvelope
	if err := msgpack.Unmarshal(b, &env); err != nil {
		return "", nil, err
	}
	if env.Event == "" {
		return "", nil, ErrMissingEvent
	}
	return env.Event, env.Data, nil
}

func (MsgPack) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

func marshalMsgPack(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.UseCompactInts(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
