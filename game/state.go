// Package game holds the authoritative arena state: tanks, projectiles, the
// scoreboard and the live maze. Every operation on State is safe for
// concurrent use; all of them serialize on one lock.
package game

import (
	"fmt"
	"maps"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-arena-server/maze"
	"github.com/google/uuid"
)

// Arena dimensions used by the server when the environment does not set them.
// NewState itself requires explicit dimensions.
const (
	DefaultMazeWidth   = 10
	DefaultMazeHeight  = 5
	DefaultMazeDensity = 0.9
)

// Config configures a State.
type Config struct {
	MazeWidth     int
	MazeHeight    int
	MazeDensity   float64
	ProjectileTTL time.Duration

	MazeFactory maze.Factory     // Defaults to maze.Generate.
	Rand        *rand.Rand       // Defaults to a randomly seeded PCG source.
	Clock       func() time.Time // Defaults to time.Now.
}

// State is the arena store. The zero value is not usable; build one with
// NewState.
type State struct {
	mu sync.RWMutex

	tanks       map[string]*Tank
	claims      map[uuid.UUID]map[string]int // connection -> tag -> logins
	scoreboard  map[string]int
	projectiles map[string]Projectile
	generation  int64

	grid  maze.Grid
	walls []maze.Wall

	width, height int
	density       float64
	ttl           time.Duration
	mazeFactory   maze.Factory
	rng           *rand.Rand
	now           func() time.Time
}

// NewState builds a store and generates the first maze.
func NewState(c Config) (*State, error) {
	if c.MazeWidth <= 0 || c.MazeHeight <= 0 {
		return nil, fmt.Errorf("maze %dx%d: %w", c.MazeWidth, c.MazeHeight, ErrInvalidDimension)
	}

	s := &State{
		tanks:       make(map[string]*Tank),
		claims:      make(map[uuid.UUID]map[string]int),
		scoreboard:  make(map[string]int),
		projectiles: make(map[string]Projectile),
		width:       c.MazeWidth,
		height:      c.MazeHeight,
		density:     c.MazeDensity,
		ttl:         c.ProjectileTTL,
		mazeFactory: c.MazeFactory,
		rng:         c.Rand,
		now:         c.Clock,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultProjectileTTL
	}
	if s.mazeFactory == nil {
		s.mazeFactory = maze.Generate
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.startNewRoundLocked()
	return s, nil
}

// Capacity is the number of spawn cells, and so the maximum number of tanks.
func (s *State) Capacity() int {
	return s.width * s.height
}

// Join adds or rejoins a tank and returns the full state with the tag echoed
// back in NewUserTag.
func (s *State) Join(colour, tag string, connID uuid.UUID) (FullSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.addOrRejoinLocked(colour, tag, connID); err != nil {
		return FullSnapshot{}, err
	}
	snapshot := s.fullSnapshotLocked()
	snapshot.NewUserTag = tag
	return snapshot, nil
}

// AddOrRejoinTank creates a tank for an unknown tag at a random cell centre,
// or adds a login to an existing one and takes the new colour.
func (s *State) AddOrRejoinTank(colour, tag string, connID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addOrRejoinLocked(colour, tag, connID)
}

func (s *State) addOrRejoinLocked(colour, tag string, connID uuid.UUID) error {
	if tag == "" {
		return ErrEmptyTag
	}

	if t, ok := s.tanks[tag]; ok {
		t.LoginCount++
		t.Colour = colour
		t.ConnectionID = connID
		s.claimLocked(connID, tag)
		return nil
	}

	if len(s.tanks) >= s.Capacity() {
		return fmt.Errorf("join %q with %d tanks: %w", tag, len(s.tanks), ErrCapacityExceeded)
	}

	centre := s.shuffledCentresLocked()[0]
	s.tanks[tag] = NewTank(tag, colour, connID, centre[0], centre[1], s.headingLocked())
	if _, ok := s.scoreboard[tag]; !ok {
		s.scoreboard[tag] = 0
	}
	s.claimLocked(connID, tag)
	return nil
}

func (s *State) claimLocked(connID uuid.UUID, tag string) {
	tags, ok := s.claims[connID]
	if !ok {
		tags = make(map[string]int)
		s.claims[connID] = tags
	}
	tags[tag]++
}

// UpdateTank merges a client-reported partial state into the tank.
func (s *State) UpdateTank(tag string, u TankUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tanks[tag]
	if !ok {
		return fmt.Errorf("update tank %q: %w", tag, ErrNotFound)
	}
	t.Merge(u)
	return nil
}

// ExplodeTank kills the tank, drops the projectile that hit it and sweeps
// expired projectiles. Unknown tags and projectiles are ignored. The returned
// Explosion is observed under the same lock.
func (s *State) ExplodeTank(tag, projectileID string) Explosion {
	s.mu.Lock()
	defer s.mu.Unlock()

	killed := false
	if t, ok := s.tanks[tag]; ok && t.IsAlive {
		t.Explode()
		killed = true
	}
	delete(s.projectiles, projectileID)
	s.sweepLocked()

	return Explosion{Killed: killed, Alive: len(s.aliveLocked()), Generation: s.generation}
}

// RemoveTank deletes a tank regardless of its logins. The score is kept.
func (s *State) RemoveTank(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tanks[tag]; !ok {
		return false
	}
	delete(s.tanks, tag)
	for connID, tags := range s.claims {
		delete(tags, tag)
		if len(tags) == 0 {
			delete(s.claims, connID)
		}
	}
	return true
}

// OnDisconnect releases every login held by connID and returns the tags whose
// tanks were removed because no connection claims them any more.
func (s *State) OnDisconnect(connID uuid.UUID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags := s.claims[connID]
	delete(s.claims, connID)

	removed := make([]string, 0, len(tags))
	for tag, logins := range tags {
		t, ok := s.tanks[tag]
		if !ok {
			continue
		}
		t.LoginCount = max(t.LoginCount-logins, 0)
		if t.LoginCount == 0 {
			delete(s.tanks, tag)
			removed = append(removed, tag)
		}
	}
	slices.Sort(removed)
	return removed
}

// AddProjectile stores or replaces a projectile and sweeps expired ones.
func (s *State) AddProjectile(id string, payload map[string]any) error {
	if id == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.projectiles[id] = NewProjectile(id, payload, s.now())
	s.sweepLocked()
	return nil
}

// RemoveProjectile drops a projectile if present and sweeps expired ones.
func (s *State) RemoveProjectile(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.projectiles, id)
	s.sweepLocked()
}

func (s *State) sweepLocked() {
	now := s.now()
	for id, p := range s.projectiles {
		if p.Expired(now, s.ttl) {
			delete(s.projectiles, id)
		}
	}
}

// TanksAlive returns the tags of living tanks, sorted.
func (s *State) TanksAlive() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aliveLocked()
}

func (s *State) aliveLocked() []string {
	alive := make([]string, 0, len(s.tanks))
	for tag, t := range s.tanks {
		if t.IsAlive {
			alive = append(alive, tag)
		}
	}
	slices.Sort(alive)
	return alive
}

// StartNewRound replaces the maze, clears projectiles and respawns every tank
// on its own cell.
func (s *State) StartNewRound() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startNewRoundLocked()
}

func (s *State) startNewRoundLocked() {
	s.grid = s.mazeFactory(s.width, s.height, s.density, s.rng)
	s.walls = s.grid.Walls()
	s.projectiles = make(map[string]Projectile)

	centres := s.shuffledCentresLocked()
	for i, tag := range slices.Sorted(maps.Keys(s.tanks)) {
		// Only reachable if the tank count outgrew the maze; cells are reused.
		if i > 0 && i%len(centres) == 0 {
			centres = s.shuffledCentresLocked()
		}
		c := centres[i%len(centres)]
		s.tanks[tag].Respawn(c[0], c[1], s.headingLocked())
	}
}

func (s *State) shuffledCentresLocked() [][2]float64 {
	centres := s.grid.CellCentres()
	if len(centres) == 0 {
		centres = [][2]float64{{0.5, 0.5}}
	}
	s.rng.Shuffle(len(centres), func(i, j int) { centres[i], centres[j] = centres[j], centres[i] })
	return centres
}

func (s *State) headingLocked() float64 {
	return s.rng.Float64() * 2 * math.Pi
}

// RecordRoundResult scores a finished round: one survivor gains a point, no
// survivors is a draw. More than one survivor means the round has not ended
// and ErrInvariantViolation is returned without touching the scoreboard.
func (s *State) RecordRoundResult() (winner string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordRoundResultLocked()
}

func (s *State) recordRoundResultLocked() (string, error) {
	alive := s.aliveLocked()
	switch len(alive) {
	case 0:
		return "", nil
	case 1:
		s.scoreboard[alive[0]]++
		return alive[0], nil
	default:
		return "", fmt.Errorf("record round result with %d tanks alive: %w", len(alive), ErrInvariantViolation)
	}
}

// RestartRound ends the round identified by generation and starts the next
// one. It reports false without changing anything when generation is no
// longer current, which is how duplicate restart triggers are absorbed.
func (s *State) RestartRound(generation int64) (RoundResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return RoundResult{}, false
	}
	s.generation++

	winner, err := s.recordRoundResultLocked()
	s.startNewRoundLocked()

	return RoundResult{
		Generation: s.generation,
		Winner:     winner,
		Draw:       err == nil && winner == "",
		ScoreErr:   err,
		Snapshot:   s.fullSnapshotLocked(),
	}, true
}

// Generation returns the current round number.
func (s *State) Generation() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Tank returns a copy of the tank registered under tag.
func (s *State) Tank(tag string) (Tank, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tanks[tag]
	if !ok {
		return Tank{}, false
	}
	return *t, true
}

// Grid returns the live maze.
func (s *State) Grid() maze.Grid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid
}

// Scoreboard returns a copy of every tag's win count, including tags whose
// tanks have left.
func (s *State) Scoreboard() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.scoreboard)
}

// TanksSnapshot exports only the tanks, for the periodic broadcast.
func (s *State) TanksSnapshot() map[string]TankState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tanksLocked()
}

func (s *State) tanksLocked() map[string]TankState {
	out := make(map[string]TankState, len(s.tanks))
	for tag, t := range s.tanks {
		out[tag] = t.TankState
	}
	return out
}

// FullSnapshot exports the maze, tanks and projectiles.
func (s *State) FullSnapshot() FullSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fullSnapshotLocked()
}

func (s *State) fullSnapshotLocked() FullSnapshot {
	projectiles := make(map[string]map[string]any, len(s.projectiles))
	for id, p := range s.projectiles {
		projectiles[id] = p.Payload
	}
	return FullSnapshot{
		Width:  s.grid.Width,
		Height: s.grid.Height,
		Maze: MazeSnapshot{
			Width:  s.grid.Width,
			Height: s.grid.Height,
			Walls:  slices.Clone(s.walls),
		},
		Tanks:       s.tanksLocked(),
		Projectiles: projectiles,
		Round:       s.generation,
	}
}
