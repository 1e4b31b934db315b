package i

import (
	"github.com/beka-birhanu/vinom-arena-server/game"
	"github.com/google/uuid"
)

// ArenaManager translates client events into arena state changes and fans
// the results out to every connection.
type ArenaManager interface {
	// Join adds or rejoins the tank for name and returns the full state.
	Join(colour, name string, connID uuid.UUID) (game.FullSnapshot, error)

	// Move merges a client-reported pose into the tank.
	Move(connID uuid.UUID, tag string, update game.TankUpdate) error

	// Explode destroys a tank and schedules a restart when the round is over.
	Explode(tankTag, projectileTag string)

	// SpawnProjectile stores a projectile fired by a client.
	SpawnProjectile(id string, payload map[string]any) error

	// Leave releases a connection and returns the tags of removed tanks.
	Leave(connID uuid.UUID) []string

	// Tick returns the tanks-only snapshot broadcast on every interval.
	Tick() map[string]game.TankState

	// Scoreboard returns every tag's win count.
	Scoreboard() map[string]int

	// Snapshot returns the full arena state.
	Snapshot() game.FullSnapshot

	// Kick removes a tank regardless of its logins.
	Kick(tag string) bool

	// RestartRound ends the current round now and returns the new generation.
	RestartRound() (int64, bool)

	StopAll()
}
