package codec

import (
	"encoding/json"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Protobuf carries the envelope as a google.protobuf.Struct with "event" and
// "data" fields, so any client with the well-known types can read it.
type Protobuf struct{}

func (Protobuf) Name() string   { return "protobuf" }
func (Protobuf) FrameType() int { return BinaryFrame }

func (Protobuf) Encode(event string, data any) ([]byte, error) {
	if event == "" {
		return nil, ErrMissingEvent
	}
	value, err := ToValue(data)
	if err != nil {
		return nil, err
	}
	env := &structpb.Struct{Fields: map[string]*structpb.Value{
		"event": structpb.NewStringValue(event),
		"data":  value,
	}}
	return proto.Marshal(env)
}

func (Protobuf) Decode(b []byte) (string, []byte, error) {
	if len(b) == 0 {
		return "", nil, ErrEmptyEnvelope
	}
	var env structpb.Struct
	if err := proto.Unmarshal(b, &env); err != nil {
		return "", nil, err
	}
	event := env.GetFields()["event"].GetStringValue()
	if event == "" {
		return "", nil, ErrMissingEvent
	}
	data, ok := env.GetFields()["data"]
	if !ok {
		return event, nil, nil
	}
	raw, err := protojson.Marshal(data)
	if err != nil {
		return "", nil, err
	}
	return event, raw, nil
}

func (Protobuf) Unmarshal(data []byte, v any) error {
	return JSON{}.Unmarshal(data, v)
}

// ToValue converts any JSON-encodable value into a structpb.Value by way of
// its JSON form, so struct tags are honoured.
func ToValue(v any) (*structpb.Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var value structpb.Value
	if err := protojson.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	return &value, nil
}

// ToStruct is ToValue for values that encode as JSON objects.
func ToStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var s structpb.Struct
	if err := protojson.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
