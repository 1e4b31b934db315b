package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-arena-server/game"
	"github.com/beka-birhanu/vinom-arena-server/service/i"
	"github.com/google/uuid"
)

const defaultBroadcastInterval = 500 * time.Millisecond

// Events sent by clients.
const (
	EventJoin            = "c_on_new_user_arrive"
	EventMove            = "c_on_tank_move"
	EventExplode         = "c_on_tank_explode"
	EventSpawnProjectile = "c_spawn_projectile"
)

// Events sent by the server.
const (
	EventJoined            = "s_on_new_user_arrive"
	EventMoved             = "s_on_tank_move"
	EventExploded          = "s_on_tank_explode"
	EventProjectileSpawned = "s_spawn_projectile"
	EventLeft              = "s_on_user_leave"
	EventBroadcast         = "s_broadcast"
	EventNewRound          = "s_start_new_game"
	EventError             = "s_error"
)

var (
	ErrUnknownEvent     = errors.New("unknown event")
	ErrMalformedPayload = errors.New("malformed payload")
)

// JoinRequest is the payload of EventJoin. Col is accepted for older clients.
type JoinRequest struct {
	Name   string `json:"name"`
	Colour string `json:"colour,omitempty"`
	Col    string `json:"col,omitempty"`
}

// MoveRequest is the payload of EventMove and EventMoved.
type MoveRequest struct {
	Tag      string          `json:"tag"`
	NewState game.TankUpdate `json:"newState"`
}

// ExplodeRequest is the payload of EventExplode and EventExploded.
type ExplodeRequest struct {
	TankTag       string `json:"tankTag"`
	ProjectileTag string `json:"projectileTag"`
}

// SpawnProjectileRequest is the payload of EventSpawnProjectile and EventProjectileSpawned.
type SpawnProjectileRequest struct {
	ID         string         `json:"id"`
	Projectile map[string]any `json:"projectile"`
}

// ErrorNotice is sent to a single client whose request was rejected.
type ErrorNotice struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

// ArenaManager binds the shared arena state to the socket layer.
type ArenaManager struct {
	socket            i.ServerSocketManager
	state             *game.State
	rounds            *RoundController
	logger            i.Logger
	broadcastInterval time.Duration
	stop              chan struct{}
	stopOnce          sync.Once
}

type Config struct {
	Socket               i.ServerSocketManager
	State                *game.State
	Logger               i.Logger
	BroadcastInterval    time.Duration
	LastTankRestartDelay time.Duration
	DrawRestartDelay     time.Duration
	AfterFunc            AfterFunc // Defaults to time.AfterFunc.
}

// NewArenaManager wires the arena to the socket and registers its handlers.
func NewArenaManager(c *Config) (*ArenaManager, error) {
	if c.Socket == nil || c.State == nil || c.Logger == nil {
		return nil, fmt.Errorf("arena manager: %w", ErrMissingDependency)
	}

	am := &ArenaManager{
		socket:            c.Socket,
		state:             c.State,
		logger:            c.Logger,
		broadcastInterval: c.BroadcastInterval,
		stop:              make(chan struct{}),
	}
	if am.broadcastInterval <= 0 {
		am.broadcastInterval = defaultBroadcastInterval
	}

	rounds, err := NewRoundController(RoundConfig{
		State:         c.State,
		Logger:        c.Logger,
		LastTankDelay: c.LastTankRestartDelay,
		DrawDelay:     c.DrawRestartDelay,
		AfterFunc:     c.AfterFunc,
		OnRestart:     am.broadcastNewRound,
	})
	if err != nil {
		return nil, err
	}
	am.rounds = rounds

	c.Socket.SetClientRequestHandler(am.handleClientRequest)
	c.Socket.SetDisconnectHandler(am.handleDisconnect)
	return am, nil
}

// Join adds or rejoins name and tells every client about the new state.
func (a *ArenaManager) Join(colour, name string, connID uuid.UUID) (game.FullSnapshot, error) {
	var (
		snapshot game.FullSnapshot
		err      error
	)
	// Ordered with round restarts so no client sees a join snapshot from a
	// round that has already been replaced.
	a.rounds.serialize(func() {
		snapshot, err = a.state.Join(colour, name, connID)
		if err == nil {
			a.socket.Broadcast(EventJoined, snapshot)
		}
	})
	if err != nil {
		return game.FullSnapshot{}, err
	}

	a.logger.Info(fmt.Sprintf("tank %q joined from %s", name, connID))
	return snapshot, nil
}

// Move merges update into the tank and relays it to every other client.
func (a *ArenaManager) Move(connID uuid.UUID, tag string, update game.TankUpdate) error {
	return a.move(connID, tag, update, MoveRequest{Tag: tag, NewState: update})
}

// move relays payload as received so fields the server does not model reach
// the other clients.
func (a *ArenaManager) move(connID uuid.UUID, tag string, update game.TankUpdate, payload any) error {
	if err := a.state.UpdateTank(tag, update); err != nil {
		return err
	}

	a.socket.BroadcastExcept(connID, EventMoved, payload)
	return nil
}

// Explode relays the explosion, then applies it. A round left with at most
// one tank alive is scheduled for restart.
func (a *ArenaManager) Explode(tankTag, projectileTag string) {
	a.socket.Broadcast(EventExploded, ExplodeRequest{TankTag: tankTag, ProjectileTag: projectileTag})

	explosion := a.state.ExplodeTank(tankTag, projectileTag)
	a.logger.Debug(fmt.Sprintf("tank %q hit by %q, %d alive", tankTag, projectileTag, explosion.Alive))
	a.rounds.HandleExplosion(explosion)
}

// SpawnProjectile relays the projectile to every client, then stores it.
func (a *ArenaManager) SpawnProjectile(id string, payload map[string]any) error {
	if id == "" {
		return game.ErrEmptyID
	}

	a.socket.Broadcast(EventProjectileSpawned, SpawnProjectileRequest{ID: id, Projectile: payload})
	return a.state.AddProjectile(id, payload)
}

// Leave releases every tank claimed by connID.
func (a *ArenaManager) Leave(connID uuid.UUID) []string {
	removed := a.state.OnDisconnect(connID)
	if len(removed) > 0 {
		a.socket.Broadcast(EventLeft, removed)
		a.logger.Info(fmt.Sprintf("connection %s left, removed %v", connID, removed))
	}
	return removed
}

func (a *ArenaManager) Tick() map[string]game.TankState {
	return a.state.TanksSnapshot()
}

func (a *ArenaManager) Scoreboard() map[string]int {
	return a.state.Scoreboard()
}

func (a *ArenaManager) Snapshot() game.FullSnapshot {
	return a.state.FullSnapshot()
}

// Phase reports the lifecycle phase of the current round.
func (a *ArenaManager) Phase() RoundPhase {
	return a.rounds.Phase()
}

// Kick removes tag regardless of how many connections claim it.
func (a *ArenaManager) Kick(tag string) bool {
	if !a.state.RemoveTank(tag) {
		return false
	}

	a.socket.Broadcast(EventLeft, []string{tag})
	a.logger.Info(fmt.Sprintf("kicked tank %q", tag))
	return true
}

// RestartRound ends the current round immediately.
func (a *ArenaManager) RestartRound() (int64, bool) {
	result, ok := a.rounds.ForceRestart()
	return result.Generation, ok
}

// Run broadcasts the tank positions every interval until ctx is done or
// StopAll is called.
func (a *ArenaManager) Run(ctx context.Context) {
	ticker := time.NewTicker(a.broadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.stop:
			return
		case <-ticker.C:
			a.socket.Broadcast(EventBroadcast, a.Tick())
		}
	}
}

// StopAll stops the broadcast loop and cancels pending round restarts.
func (a *ArenaManager) StopAll() {
	a.stopOnce.Do(func() {
		close(a.stop)
		a.rounds.Stop()
	})
}

func (a *ArenaManager) broadcastNewRound(result game.RoundResult) {
	a.socket.Broadcast(EventNewRound, result.Snapshot)
}

func (a *ArenaManager) handleClientRequest(connID uuid.UUID, event string, decode func(v any) error) {
	if err := a.dispatch(connID, event, decode); err != nil {
		a.logger.Warning(fmt.Sprintf("dropping %s from %s: %s", event, connID, err))
	}
}

func (a *ArenaManager) dispatch(connID uuid.UUID, event string, decode func(v any) error) error {
	switch event {
	case EventJoin:
		var req JoinRequest
		if err := decode(&req); err != nil {
			return fmt.Errorf("%w: %s", ErrMalformedPayload, err)
		}
		colour := req.Colour
		if colour == "" {
			colour = req.Col
		}
		if _, err := a.Join(colour, req.Name, connID); err != nil {
			a.notify(connID, event, err)
			return err
		}
		return nil

	case EventMove:
		var req MoveRequest
		if err := decode(&req); err != nil {
			return fmt.Errorf("%w: %s", ErrMalformedPayload, err)
		}
		var payload map[string]any
		if err := decode(&payload); err != nil {
			return fmt.Errorf("%w: %s", ErrMalformedPayload, err)
		}
		return a.move(connID, req.Tag, req.NewState, payload)

	case EventExplode:
		var req ExplodeRequest
		if err := decode(&req); err != nil {
			return fmt.Errorf("%w: %s", ErrMalformedPayload, err)
		}
		a.Explode(req.TankTag, req.ProjectileTag)
		return nil

	case EventSpawnProjectile:
		var req SpawnProjectileRequest
		if err := decode(&req); err != nil {
			return fmt.Errorf("%w: %s", ErrMalformedPayload, err)
		}
		return a.SpawnProjectile(req.ID, req.Projectile)

	default:
		return ErrUnknownEvent
	}
}

func (a *ArenaManager) notify(connID uuid.UUID, event string, cause error) {
	notice := ErrorNotice{Event: event, Message: cause.Error()}
	if err := a.socket.Send(connID, EventError, notice); err != nil {
		a.logger.Debug(fmt.Sprintf("sending error to %s: %s", connID, err))
	}
}

func (a *ArenaManager) handleDisconnect(connID uuid.UUID) {
	a.Leave(connID)
}
