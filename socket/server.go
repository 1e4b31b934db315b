// Package socket serves arena clients over websockets.
package socket

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-arena-server/codec"
	"github.com/beka-birhanu/vinom-arena-server/service/i"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	defaultSendBuffer          = 256
	defaultReadLimit           = 64 << 10
	defaultHeartbeatExpiration = 60 * time.Second
	defaultWriteTimeout        = 10 * time.Second
)

var (
	ErrUnknownConnection = errors.New("unknown connection")
	ErrServerStopped     = errors.New("socket server stopped")
)

// ServerConfig holds the required settings of a ServerSocketManager.
type ServerConfig struct {
	Codecs *codec.Registry
	Logger i.Logger
	// AllowedOrigins restricts the Origin header of upgrade requests. Empty
	// or containing "*" allows every origin.
	AllowedOrigins []string
	ReadLimit      int64
}

// ServerOption customises a ServerSocketManager.
type ServerOption func(*ServerSocketManager)

// ServerWithSendBuffer sets how many outgoing frames a client may have queued
// before it is dropped as too slow.
func ServerWithSendBuffer(n int) ServerOption {
	return func(s *ServerSocketManager) {
		if n > 0 {
			s.sendBuffer = n
		}
	}
}

// ServerWithHeartbeatExpiration sets how long a client may stay silent,
// pongs included, before it is disconnected. Pings go out at 9/10 of it.
func ServerWithHeartbeatExpiration(d time.Duration) ServerOption {
	return func(s *ServerSocketManager) {
		if d > 0 {
			s.heartbeatExpiration = d
		}
	}
}

// ServerWithWriteTimeout bounds every frame write.
func ServerWithWriteTimeout(d time.Duration) ServerOption {
	return func(s *ServerSocketManager) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// ServerSocketManager tracks websocket clients and fans events out to them.
// Each client picks its codec with the codec query parameter on connect.
type ServerSocketManager struct {
	codecs              *codec.Registry
	logger              i.Logger
	upgrader            websocket.Upgrader
	readLimit           int64
	sendBuffer          int
	heartbeatExpiration time.Duration
	writeTimeout        time.Duration

	mu           sync.RWMutex
	clients      map[uuid.UUID]*client
	onRequest    i.ClientRequestHandler
	onDisconnect i.DisconnectHandler
	stopped      bool
}

// NewServerSocketManager creates a manager ready to be mounted as an
// http.Handler.
func NewServerSocketManager(c ServerConfig, options ...ServerOption) (*ServerSocketManager, error) {
	if c.Codecs == nil {
		return nil, errors.New("socket server: codec registry is required")
	}
	if c.Logger == nil {
		return nil, errors.New("socket server: logger is required")
	}

	s := &ServerSocketManager{
		codecs:              c.Codecs,
		logger:              c.Logger,
		readLimit:           c.ReadLimit,
		sendBuffer:          defaultSendBuffer,
		heartbeatExpiration: defaultHeartbeatExpiration,
		writeTimeout:        defaultWriteTimeout,
		clients:             make(map[uuid.UUID]*client),
	}
	if s.readLimit <= 0 {
		s.readLimit = defaultReadLimit
	}
	for _, opt := range options {
		opt(s)
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(c.AllowedOrigins),
	}
	return s, nil
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

func (s *ServerSocketManager) SetClientRequestHandler(h i.ClientRequestHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRequest = h
}

func (s *ServerSocketManager) SetDisconnectHandler(h i.DisconnectHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDisconnect = h
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
func (s *ServerSocketManager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := s.codecs.Lookup(r.URL.Query().Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	stopped := s.stopped
	s.mu.RUnlock()
	if stopped {
		http.Error(w, ErrServerStopped.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		s.logger.Warning(fmt.Sprintf("upgrading connection from %s: %s", r.RemoteAddr, err))
		return
	}
	conn.SetReadLimit(s.readLimit)

	cl := newClient(conn, c, s.sendBuffer)
	if !s.register(cl) {
		cl.close()
		_ = conn.Close()
		return
	}
	s.logger.Info(fmt.Sprintf("client %s connected from %s using %s", cl.id, r.RemoteAddr, c.Name()))

	go cl.writePump(s.heartbeatExpiration*9/10, s.writeTimeout, s.logger)
	go cl.readPump(s)
}

func (s *ServerSocketManager) register(cl *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.clients[cl.id] = cl
	return true
}

// unregister forgets cl and reports the disconnect exactly once.
func (s *ServerSocketManager) unregister(cl *client) {
	s.mu.Lock()
	current, ok := s.clients[cl.id]
	if ok && current == cl {
		delete(s.clients, cl.id)
	}
	handler := s.onDisconnect
	s.mu.Unlock()

	cl.close()
	if ok && handler != nil {
		handler(cl.id)
	}
	s.logger.Info(fmt.Sprintf("client %s disconnected", cl.id))
}

func (s *ServerSocketManager) handleFrame(cl *client, frame []byte) {
	event, data, err := cl.codec.Decode(frame)
	if err != nil {
		s.logger.Warning(fmt.Sprintf("decoding frame from %s: %s", cl.id, err))
		return
	}

	s.mu.RLock()
	handler := s.onRequest
	s.mu.RUnlock()
	if handler == nil {
		return
	}
	handler(cl.id, event, func(v any) error { return cl.codec.Unmarshal(data, v) })
}

// Broadcast sends event to every client.
func (s *ServerSocketManager) Broadcast(event string, data any) {
	s.BroadcastExcept(uuid.Nil, event, data)
}

// BroadcastExcept sends event to every client except the one with id except.
// Each codec encodes the envelope once.
func (s *ServerSocketManager) BroadcastExcept(except uuid.UUID, event string, data any) {
	s.mu.RLock()
	targets := make([]*client, 0, len(s.clients))
	for id, cl := range s.clients {
		if id != except {
			targets = append(targets, cl)
		}
	}
	s.mu.RUnlock()

	frames := make(map[string][]byte)
	for _, cl := range targets {
		name := cl.codec.Name()
		frame, ok := frames[name]
		if !ok {
			var err error
			frame, err = cl.codec.Encode(event, data)
			if err != nil {
				s.logger.Error(fmt.Sprintf("encoding %s with %s: %s", event, name, err))
			}
			frames[name] = frame
		}
		if frame != nil {
			s.deliver(cl, frame)
		}
	}
}

// Send sends event to a single client.
func (s *ServerSocketManager) Send(connID uuid.UUID, event string, data any) error {
	s.mu.RLock()
	cl, ok := s.clients[connID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%s: %w", connID, ErrUnknownConnection)
	}

	frame, err := cl.codec.Encode(event, data)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", event, err)
	}
	s.deliver(cl, frame)
	return nil
}

func (s *ServerSocketManager) deliver(cl *client, frame []byte) {
	if !cl.enqueue(frame) {
		s.logger.Warning(fmt.Sprintf("client %s is not keeping up, dropping it", cl.id))
		cl.close()
	}
}

// ConnectionCount returns the number of connected clients.
func (s *ServerSocketManager) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Stop refuses new connections and closes every open one.
func (s *ServerSocketManager) Stop() {
	s.mu.Lock()
	s.stopped = true
	clients := make([]*client, 0, len(s.clients))
	for _, cl := range s.clients {
		clients = append(clients, cl)
	}
	s.mu.Unlock()

	for _, cl := range clients {
		cl.close()
	}
}
