// Package codec encodes the {event, data} envelopes exchanged with clients.
package codec

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Codec errors.
var (
	ErrUnknownCodec  = errors.New("unknown codec")
	ErrMissingEvent  = errors.New("envelope has no event")
	ErrEmptyEnvelope = errors.New("empty envelope")
)

// Frame kinds, numerically equal to the websocket text and binary opcodes.
const (
	TextFrame   = 1
	BinaryFrame = 2
)

// Codec converts envelopes to and from wire bytes.
type Codec interface {
	// Name is the value clients pass in ?codec=.
	Name() string
	// FrameType reports whether encoded envelopes are text or binary.
	FrameType() int
	// Encode builds an envelope for event carrying data.
	Encode(event string, data any) ([]byte, error)
	// Decode splits an envelope into its event and still-encoded data.
	Decode(b []byte) (event string, data []byte, err error)
	// Unmarshal decodes data returned by Decode into v.
	Unmarshal(data []byte, v any) error
}

// Registry resolves codecs by name.
type Registry struct {
	codecs   map[string]Codec
	fallback Codec
}

// NewRegistry returns a registry whose first codec is the default.
func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{codecs: make(map[string]Codec, len(codecs))}
	for _, c := range codecs {
		r.codecs[c.Name()] = c
		if r.fallback == nil {
			r.fallback = c
		}
	}
	return r
}

// DefaultRegistry holds every codec with JSON as the default.
func DefaultRegistry() *Registry {
	return NewRegistry(JSON{}, MsgPack{}, Protobuf{})
}

// Lookup returns the named codec, or the default when name is empty.
func (r *Registry) Lookup(name string) (Codec, error) {
	if name == "" {
		if r.fallback == nil {
			return nil, ErrUnknownCodec
		}
		return r.fallback, nil
	}
	c, ok := r.codecs[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownCodec)
	}
	return c, nil
}

// Names lists the registered codec names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.codecs))
	for name := range r.codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
