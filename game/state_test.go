package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-arena-server/maze"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestState(t *testing.T) (*State, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
	s, err := NewState(Config{
		MazeWidth:   DefaultMazeWidth,
		MazeHeight:  DefaultMazeHeight,
		MazeDensity: DefaultMazeDensity,
		Rand:        rand.New(rand.NewPCG(1, 2)),
		Clock:       clock.Now,
	})
	require.NoError(t, err)
	return s, clock
}

func isCellCentre(v float64) bool {
	return v-math.Floor(v) == 0.5
}

func TestNewStateRejectsBadDimensions(t *testing.T) {
	_, err := NewState(Config{MazeWidth: 0, MazeHeight: 5})
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

func TestNewStateUsesMazeFactory(t *testing.T) {
	calls := 0
	s, err := NewState(Config{
		MazeWidth:  3,
		MazeHeight: 2,
		MazeFactory: func(w, h int, density float64, rng *rand.Rand) maze.Grid {
			calls++
			return maze.Generate(w, h, 0, rng)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	s.StartNewRound()
	assert.Equal(t, 2, calls)
	assert.Len(t, s.FullSnapshot().Maze.Walls, 4)
}

func TestJoinCreatesTank(t *testing.T) {
	s, _ := newTestState(t)
	conn := uuid.New()

	snapshot, err := s.Join("blue", "ace", conn)
	require.NoError(t, err)

	assert.Equal(t, "ace", snapshot.NewUserTag)
	assert.Equal(t, DefaultMazeWidth, snapshot.Width)
	assert.Equal(t, DefaultMazeHeight, snapshot.Maze.Height)
	assert.NotEmpty(t, snapshot.Maze.Walls)
	require.Contains(t, snapshot.Tanks, "ace")

	tank := snapshot.Tanks["ace"]
	assert.True(t, tank.IsAlive)
	assert.Equal(t, "blue", tank.Colour)
	assert.True(t, isCellCentre(tank.X) && isCellCentre(tank.Y))
	assert.GreaterOrEqual(t, tank.R, 0.0)
	assert.Less(t, tank.R, 2*math.Pi)

	assert.Equal(t, map[string]int{"ace": 0}, s.Scoreboard())
}

func TestJoinRejectsEmptyTag(t *testing.T) {
	s, _ := newTestState(t)
	_, err := s.Join("blue", "", uuid.New())
	assert.ErrorIs(t, err, ErrEmptyTag)
}

func TestRejoinIncrementsLoginCount(t *testing.T) {
	s, _ := newTestState(t)
	first, second := uuid.New(), uuid.New()

	require.NoError(t, s.AddOrRejoinTank("blue", "ace", first))
	before, _ := s.Tank("ace")
	require.NoError(t, s.AddOrRejoinTank("red", "ace", second))

	tank, ok := s.Tank("ace")
	require.True(t, ok)
	assert.Equal(t, 2, tank.LoginCount)
	assert.Equal(t, "red", tank.Colour)
	assert.Equal(t, second, tank.ConnectionID)
	assert.Equal(t, before.X, tank.X)
	assert.Equal(t, before.Y, tank.Y)
}

func TestDisconnectRemovesTankButKeepsScore(t *testing.T) {
	s, _ := newTestState(t)
	conn := uuid.New()
	require.NoError(t, s.AddOrRejoinTank("blue", "ace", conn))

	winner, err := s.RecordRoundResult()
	require.NoError(t, err)
	require.Equal(t, "ace", winner)

	removed := s.OnDisconnect(conn)

	assert.Equal(t, []string{"ace"}, removed)
	_, ok := s.Tank("ace")
	assert.False(t, ok)
	assert.Empty(t, s.TanksAlive())
	assert.Equal(t, map[string]int{"ace": 1}, s.Scoreboard())

	// Coming back under the same tag resumes the score.
	require.NoError(t, s.AddOrRejoinTank("blue", "ace", uuid.New()))
	assert.Equal(t, map[string]int{"ace": 1}, s.Scoreboard())
}

func TestSharedTagSurvivesSingleDisconnect(t *testing.T) {
	s, _ := newTestState(t)
	laptop, phone := uuid.New(), uuid.New()
	require.NoError(t, s.AddOrRejoinTank("blue", "ace", laptop))
	require.NoError(t, s.AddOrRejoinTank("blue", "ace", phone))

	assert.Empty(t, s.OnDisconnect(laptop))
	tank, ok := s.Tank("ace")
	require.True(t, ok)
	assert.Equal(t, 1, tank.LoginCount)

	assert.Equal(t, []string{"ace"}, s.OnDisconnect(phone))
	assert.Empty(t, s.OnDisconnect(phone))
}

func TestDisconnectReleasesEveryClaimOfConnection(t *testing.T) {
	s, _ := newTestState(t)
	conn, other := uuid.New(), uuid.New()
	require.NoError(t, s.AddOrRejoinTank("blue", "ace", conn))
	require.NoError(t, s.AddOrRejoinTank("blue", "ace", conn))
	require.NoError(t, s.AddOrRejoinTank("red", "bolt", conn))
	require.NoError(t, s.AddOrRejoinTank("lime", "cog", other))

	assert.Equal(t, []string{"ace", "bolt"}, s.OnDisconnect(conn))
	assert.Equal(t, []string{"cog"}, s.TanksAlive())
}

func TestUpdateTank(t *testing.T) {
	s, _ := newTestState(t)
	require.NoError(t, s.AddOrRejoinTank("blue", "ace", uuid.New()))

	x, fwd := 3.25, 1.0
	require.NoError(t, s.UpdateTank("ace", TankUpdate{X: &x, ForwardVelocity: &fwd}))

	tank, _ := s.Tank("ace")
	assert.Equal(t, 3.25, tank.X)
	assert.Equal(t, 1.0, tank.ForwardVelocity)

	err := s.UpdateTank("ghost", TankUpdate{X: &x})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExplodeTank(t *testing.T) {
	s, clock := newTestState(t)
	require.NoError(t, s.AddOrRejoinTank("blue", "ace", uuid.New()))
	require.NoError(t, s.AddOrRejoinTank("red", "bolt", uuid.New()))

	nowMs := float64(clock.Now().UnixMilli())
	require.NoError(t, s.AddProjectile("shot-1", map[string]any{"spawnTime": nowMs}))
	require.NoError(t, s.AddProjectile("shot-2", map[string]any{"spawnTime": nowMs - 4000}))

	clock.Advance(2 * time.Second)
	e := s.ExplodeTank("ace", "shot-1")

	assert.Equal(t, Explosion{Killed: true, Alive: 1, Generation: 0}, e)
	assert.Equal(t, []string{"bolt"}, s.TanksAlive())
	// shot-1 was the cause, shot-2 is now 6s old.
	assert.Empty(t, s.FullSnapshot().Projectiles)

	// Already dead, projectile already gone, unknown tank: all no-ops.
	assert.Equal(t, Explosion{Killed: false, Alive: 1}, s.ExplodeTank("ace", "shot-1"))
	assert.Equal(t, Explosion{Killed: false, Alive: 1}, s.ExplodeTank("ghost", "nope"))
	assert.Equal(t, []string{"bolt"}, s.TanksAlive())
}

func TestProjectileSweep(t *testing.T) {
	s, clock := newTestState(t)
	nowMs := float64(clock.Now().UnixMilli())

	require.NoError(t, s.AddProjectile("stale", map[string]any{"spawnTime": nowMs - 6000}))
	assert.NotContains(t, s.FullSnapshot().Projectiles, "stale")

	require.NoError(t, s.AddProjectile("fresh", map[string]any{"spawnTime": nowMs, "x": 1.5}))
	snapshot := s.FullSnapshot()
	require.Contains(t, snapshot.Projectiles, "fresh")
	assert.Equal(t, 1.5, snapshot.Projectiles["fresh"]["x"])

	clock.Advance(6 * time.Second)
	s.RemoveProjectile("unrelated")
	assert.Empty(t, s.FullSnapshot().Projectiles)

	assert.ErrorIs(t, s.AddProjectile("", nil), ErrEmptyID)
}

func TestStartNewRoundSpawnsOnDistinctCells(t *testing.T) {
	s, _ := newTestState(t)
	n := s.Capacity()
	for i := 0; i < n; i++ {
		require.NoError(t, s.AddOrRejoinTank("blue", fmt.Sprintf("tank-%02d", i), uuid.New()))
		if i%2 == 0 {
			s.ExplodeTank(fmt.Sprintf("tank-%02d", i), "")
		}
	}
	require.NoError(t, s.AddProjectile("shot", map[string]any{"x": 1.0}))

	s.StartNewRound()

	snapshot := s.FullSnapshot()
	require.Len(t, snapshot.Tanks, n)
	assert.Empty(t, snapshot.Projectiles)

	cells := make(map[[2]float64]string, n)
	for tag, tank := range snapshot.Tanks {
		assert.True(t, tank.IsAlive, tag)
		assert.True(t, isCellCentre(tank.X) && isCellCentre(tank.Y), tag)
		cell := [2]float64{tank.X, tank.Y}
		other, taken := cells[cell]
		assert.False(t, taken, "%s and %s share %v", tag, other, cell)
		cells[cell] = tag
	}
}

func TestJoinBeyondCapacity(t *testing.T) {
	s, err := NewState(Config{MazeWidth: 2, MazeHeight: 1})
	require.NoError(t, err)

	require.NoError(t, s.AddOrRejoinTank("blue", "ace", uuid.New()))
	require.NoError(t, s.AddOrRejoinTank("red", "bolt", uuid.New()))

	err = s.AddOrRejoinTank("lime", "cog", uuid.New())
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.NotContains(t, s.Scoreboard(), "cog")

	// Rejoining is never limited.
	assert.NoError(t, s.AddOrRejoinTank("red", "bolt", uuid.New()))
}

func TestStartNewRoundReusesCellsOnOverflow(t *testing.T) {
	s, err := NewState(Config{MazeWidth: 2, MazeHeight: 1, Rand: rand.New(rand.NewPCG(3, 4))})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		tag := fmt.Sprintf("t%d", i)
		s.tanks[tag] = NewTank(tag, "blue", uuid.New(), 0, 0, 0)
		s.tanks[tag].Explode()
	}

	s.StartNewRound()

	for tag, tank := range s.TanksSnapshot() {
		assert.True(t, tank.IsAlive, tag)
		assert.Contains(t, []float64{0.5, 1.5}, tank.X, tag)
		assert.Equal(t, 0.5, tank.Y, tag)
	}
}

func TestRecordRoundResult(t *testing.T) {
	s, _ := newTestState(t)
	for _, tag := range []string{"ace", "bolt", "cog"} {
		require.NoError(t, s.AddOrRejoinTank("blue", tag, uuid.New()))
	}

	_, err := s.RecordRoundResult()
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.Equal(t, map[string]int{"ace": 0, "bolt": 0, "cog": 0}, s.Scoreboard())

	s.ExplodeTank("ace", "")
	s.ExplodeTank("cog", "")
	winner, err := s.RecordRoundResult()
	require.NoError(t, err)
	assert.Equal(t, "bolt", winner)
	assert.Equal(t, map[string]int{"ace": 0, "bolt": 1, "cog": 0}, s.Scoreboard())

	s.ExplodeTank("bolt", "")
	winner, err = s.RecordRoundResult()
	require.NoError(t, err)
	assert.Empty(t, winner)
	assert.Equal(t, map[string]int{"ace": 0, "bolt": 1, "cog": 0}, s.Scoreboard())
}

func TestRestartRoundIsFencedByGeneration(t *testing.T) {
	s, _ := newTestState(t)
	require.NoError(t, s.AddOrRejoinTank("blue", "ace", uuid.New()))
	require.NoError(t, s.AddOrRejoinTank("red", "bolt", uuid.New()))
	e := s.ExplodeTank("ace", "")

	result, ok := s.RestartRound(e.Generation)
	require.True(t, ok)
	assert.Equal(t, int64(1), result.Generation)
	assert.Equal(t, "bolt", result.Winner)
	assert.False(t, result.Draw)
	assert.NoError(t, result.ScoreErr)
	assert.Equal(t, int64(1), result.Snapshot.Round)
	assert.Len(t, s.TanksAlive(), 2)

	_, ok = s.RestartRound(e.Generation)
	assert.False(t, ok)
	assert.Equal(t, int64(1), s.Generation())
	assert.Equal(t, map[string]int{"ace": 0, "bolt": 1}, s.Scoreboard())
}

func TestRestartRoundStartsEvenWhenScoringFails(t *testing.T) {
	s, _ := newTestState(t)
	require.NoError(t, s.AddOrRejoinTank("blue", "ace", uuid.New()))
	require.NoError(t, s.AddOrRejoinTank("red", "bolt", uuid.New()))

	result, ok := s.RestartRound(0)
	require.True(t, ok)
	assert.True(t, errors.Is(result.ScoreErr, ErrInvariantViolation))
	assert.False(t, result.Draw)
	assert.Equal(t, int64(1), s.Generation())
}

func TestStateConcurrentAccess(t *testing.T) {
	s, clock := newTestState(t)
	const players = 16

	var wg sync.WaitGroup
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn := uuid.New()
			tag := fmt.Sprintf("p%d", i%8)
			if err := s.AddOrRejoinTank("blue", tag, conn); err != nil {
				t.Errorf("join %s: %v", tag, err)
				return
			}
			for j := 0; j < 50; j++ {
				x := float64(j)
				_ = s.UpdateTank(tag, TankUpdate{X: &x})
				id := fmt.Sprintf("%d-%d", i, j)
				_ = s.AddProjectile(id, map[string]any{"spawnTime": float64(clock.Now().UnixMilli())})
				_ = s.TanksSnapshot()
				_ = s.FullSnapshot()
				if j%10 == 0 {
					e := s.ExplodeTank(tag, id)
					s.RestartRound(e.Generation)
				}
			}
			s.OnDisconnect(conn)
		}(i)
	}
	wg.Wait()

	assert.Empty(t, s.TanksSnapshot())
	assert.Len(t, s.Scoreboard(), 8)
}
