package api

import (
	"sync"

	"github.com/beka-birhanu/vinom-arena-server/game"
	"github.com/google/uuid"
)

type fakeArena struct {
	mu         sync.Mutex
	scoreboard map[string]int
	snapshot   game.FullSnapshot
	tanks      map[string]bool
	generation int64
	restartOK  bool
	stopped    bool
}

func newFakeArena() *fakeArena {
	return &fakeArena{
		scoreboard: map[string]int{"ace": 2, "bolt": 0},
		snapshot: game.FullSnapshot{
			Width:  10,
			Height: 5,
			Tanks:  map[string]game.TankState{"ace": {X: 0.5, Y: 1.5, Colour: "red", IsAlive: true}},
			Round:  3,
		},
		tanks:      map[string]bool{"ace": true},
		generation: 3,
		restartOK:  true,
	}
}

func (f *fakeArena) Join(string, string, uuid.UUID) (game.FullSnapshot, error) {
	return f.snapshot, nil
}
func (f *fakeArena) Move(uuid.UUID, string, game.TankUpdate) error { return nil }
func (f *fakeArena) Explode(string, string)                        {}
func (f *fakeArena) SpawnProjectile(string, map[string]any) error  { return nil }
func (f *fakeArena) Leave(uuid.UUID) []string                      { return nil }
func (f *fakeArena) Tick() map[string]game.TankState               { return f.snapshot.Tanks }
func (f *fakeArena) Scoreboard() map[string]int                    { return f.scoreboard }
func (f *fakeArena) Snapshot() game.FullSnapshot                   { return f.snapshot }

func (f *fakeArena) Kick(tag string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.tanks[tag] {
		return false
	}
	delete(f.tanks, tag)
	return true
}

func (f *fakeArena) RestartRound() (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.restartOK {
		return 0, false
	}
	f.generation++
	return f.generation, true
}

func (f *fakeArena) StopAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}
