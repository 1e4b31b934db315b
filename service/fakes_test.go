package service

import (
	"encoding/json"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-arena-server/game"
	"github.com/beka-birhanu/vinom-arena-server/service/i"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	to     uuid.UUID // uuid.Nil for broadcasts
	except uuid.UUID
	event  string
	data   any
}

type fakeSocket struct {
	mu           sync.Mutex
	sent         []sentMessage
	onRequest    i.ClientRequestHandler
	onDisconnect i.DisconnectHandler
	stopped      bool
}

func (s *fakeSocket) SetClientRequestHandler(h i.ClientRequestHandler) { s.onRequest = h }
func (s *fakeSocket) SetDisconnectHandler(h i.DisconnectHandler)       { s.onDisconnect = h }

func (s *fakeSocket) Broadcast(event string, data any) {
	s.record(sentMessage{event: event, data: data})
}

func (s *fakeSocket) BroadcastExcept(except uuid.UUID, event string, data any) {
	s.record(sentMessage{except: except, event: event, data: data})
}

func (s *fakeSocket) Send(connID uuid.UUID, event string, data any) error {
	s.record(sentMessage{to: connID, event: event, data: data})
	return nil
}

func (s *fakeSocket) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

func (s *fakeSocket) record(m sentMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, m)
}

func (s *fakeSocket) messages(event string) []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sentMessage
	for _, m := range s.sent {
		if m.event == event {
			out = append(out, m)
		}
	}
	return out
}

func (s *fakeSocket) events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sent))
	for _, m := range s.sent {
		out = append(out, m.event)
	}
	return out
}

// deliver feeds payload to the registered handler as if a client sent it.
func (s *fakeSocket) deliver(t *testing.T, connID uuid.UUID, event string, payload any) {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	s.onRequest(connID, event, func(v any) error { return json.Unmarshal(b, v) })
}

type scheduled struct {
	delay     time.Duration
	f         func()
	cancelled bool
}

// fakeTimers captures scheduled callbacks so tests decide when they fire.
type fakeTimers struct {
	mu     sync.Mutex
	timers []*scheduled
}

func (ft *fakeTimers) AfterFunc(d time.Duration, f func()) func() bool {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	s := &scheduled{delay: d, f: f}
	ft.timers = append(ft.timers, s)
	return func() bool {
		ft.mu.Lock()
		defer ft.mu.Unlock()
		was := !s.cancelled
		s.cancelled = true
		return was
	}
}

func (ft *fakeTimers) all() []*scheduled {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return append([]*scheduled(nil), ft.timers...)
}

// fire runs timer n unless it was cancelled.
func (ft *fakeTimers) fire(n int) {
	ft.mu.Lock()
	s := ft.timers[n]
	cancelled := s.cancelled
	ft.mu.Unlock()
	if !cancelled {
		s.f()
	}
}

type logLine struct {
	level string
	msg   string
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []logLine
}

func (l *recordingLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, logLine{level, msg})
}

func (l *recordingLogger) Debug(msg string)   { l.log("debug", msg) }
func (l *recordingLogger) Info(msg string)    { l.log("info", msg) }
func (l *recordingLogger) Warning(msg string) { l.log("warning", msg) }
func (l *recordingLogger) Error(msg string)   { l.log("error", msg) }

func (l *recordingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, line := range l.lines {
		if line.level == level {
			n++
		}
	}
	return n
}

func newTestState(t *testing.T) *game.State {
	t.Helper()
	s, err := game.NewState(game.Config{
		MazeWidth:   game.DefaultMazeWidth,
		MazeHeight:  game.DefaultMazeHeight,
		MazeDensity: game.DefaultMazeDensity,
		Rand:        rand.New(rand.NewPCG(3, 4)),
	})
	require.NoError(t, err)
	return s
}
