package i

import "github.com/google/uuid"

// ClientRequestHandler receives one decoded envelope. decode unmarshals the
// envelope data with the client's codec.
type ClientRequestHandler func(connID uuid.UUID, event string, decode func(v any) error)

// DisconnectHandler is called once after a client connection closes.
type DisconnectHandler func(connID uuid.UUID)

// ServerSocketManager is the connection layer the arena broadcasts through.
type ServerSocketManager interface {
	// SetClientRequestHandler registers the handler for inbound events.
	SetClientRequestHandler(ClientRequestHandler)

	// SetDisconnectHandler registers the handler for closed connections.
	SetDisconnectHandler(DisconnectHandler)

	// Broadcast sends event to every connected client.
	Broadcast(event string, data any)

	// BroadcastExcept sends event to every client but one.
	BroadcastExcept(except uuid.UUID, event string, data any)

	// Send sends event to a single client.
	Send(connID uuid.UUID, event string, data any) error

	// Stop closes every connection.
	Stop()
}
