package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-arena-server/game"
	"github.com/beka-birhanu/vinom-arena-server/service/i"
)

// Restart delays used when the configuration leaves them unset.
const (
	defaultLastTankRestartDelay = 5 * time.Second
	defaultDrawRestartDelay     = time.Second
)

// ErrMissingDependency is returned by constructors given an incomplete config.
var ErrMissingDependency = errors.New("missing dependency")

// RoundPhase is the lifecycle state of the current round.
type RoundPhase int

const (
	RoundInProgress RoundPhase = iota
	RoundEndPendingRestart
)

func (p RoundPhase) String() string {
	switch p {
	case RoundInProgress:
		return "InProgress"
	case RoundEndPendingRestart:
		return "RoundEndPendingRestart"
	default:
		return fmt.Sprintf("n/a:%d", int(p))
	}
}

// AfterFunc runs f after d and returns a function that cancels it, like
// time.AfterFunc(d, f).Stop.
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func timeAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// RoundConfig configures a RoundController.
type RoundConfig struct {
	State         *game.State
	Logger        i.Logger
	LastTankDelay time.Duration
	DrawDelay     time.Duration
	AfterFunc     AfterFunc               // Defaults to time.AfterFunc.
	OnRestart     func(game.RoundResult) // Called after every successful restart, outside any lock.
}

type pendingRestart struct {
	generation int64
	stop       func() bool
}

// RoundController ends rounds. Every explosion that leaves at most one tank
// alive schedules a restart tagged with the round's generation; the first one
// to fire wins and the rest find the generation moved on and do nothing.
type RoundController struct {
	state         *game.State
	logger        i.Logger
	lastTankDelay time.Duration
	drawDelay     time.Duration
	afterFunc     AfterFunc
	onRestart     func(game.RoundResult)

	// restartMu orders restarts and their broadcasts.
	restartMu sync.Mutex

	mu      sync.Mutex
	pending map[uint64]pendingRestart
	nextID  uint64
	stopped bool
}

// NewRoundController creates a controller for the given state.
func NewRoundController(c RoundConfig) (*RoundController, error) {
	if c.State == nil || c.Logger == nil {
		return nil, fmt.Errorf("round controller: %w", ErrMissingDependency)
	}

	rc := &RoundController{
		state:         c.State,
		logger:        c.Logger,
		lastTankDelay: c.LastTankDelay,
		drawDelay:     c.DrawDelay,
		afterFunc:     c.AfterFunc,
		onRestart:     c.OnRestart,
		pending:       make(map[uint64]pendingRestart),
	}
	if rc.lastTankDelay <= 0 {
		rc.lastTankDelay = defaultLastTankRestartDelay
	}
	if rc.drawDelay <= 0 {
		rc.drawDelay = defaultDrawRestartDelay
	}
	if rc.afterFunc == nil {
		rc.afterFunc = timeAfterFunc
	}
	return rc, nil
}

// HandleExplosion schedules a restart when the explosion ended the round.
// Reports that killed nothing never end a round.
func (rc *RoundController) HandleExplosion(e game.Explosion) {
	if !e.Killed {
		return
	}
	switch e.Alive {
	case 1:
		rc.logger.Info(fmt.Sprintf("one tank remaining in round %d", e.Generation))
		rc.schedule(rc.lastTankDelay, e.Generation)
	case 0:
		rc.logger.Info(fmt.Sprintf("no tanks remaining in round %d", e.Generation))
		rc.schedule(rc.drawDelay, e.Generation)
	}
}

func (rc *RoundController) schedule(d time.Duration, generation int64) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.stopped {
		return
	}

	id := rc.nextID
	rc.nextID++
	stop := rc.afterFunc(d, func() { rc.fire(id, generation) })
	rc.pending[id] = pendingRestart{generation: generation, stop: stop}
}

func (rc *RoundController) fire(id uint64, generation int64) {
	rc.mu.Lock()
	delete(rc.pending, id)
	stopped := rc.stopped
	rc.mu.Unlock()

	if stopped {
		return
	}
	rc.Restart(generation)
}

// Restart ends the round identified by generation and starts the next one.
// It reports false when that round has already been restarted. OnRestart
// calls happen in generation order.
func (rc *RoundController) Restart(generation int64) (game.RoundResult, bool) {
	rc.restartMu.Lock()
	defer rc.restartMu.Unlock()

	result, ok := rc.state.RestartRound(generation)
	if !ok {
		rc.logger.Debug(fmt.Sprintf("round %d already restarted", generation))
		return game.RoundResult{}, false
	}

	switch {
	case result.ScoreErr != nil:
		rc.logger.Warning(fmt.Sprintf("round %d not scored: %s", generation, result.ScoreErr))
	case result.Draw:
		rc.logger.Info(fmt.Sprintf("round %d was a draw", generation))
	default:
		rc.logger.Info(fmt.Sprintf("round %d won by %q", generation, result.Winner))
	}
	rc.logger.Info(fmt.Sprintf("starting round %d", result.Generation))
	rc.logger.Debug("new maze:\n" + rc.state.Grid().String())

	if rc.onRestart != nil {
		rc.onRestart(result)
	}
	return result, true
}

// ForceRestart restarts the current round immediately.
func (rc *RoundController) ForceRestart() (game.RoundResult, bool) {
	return rc.Restart(rc.state.Generation())
}

// serialize runs f between restarts, never during one.
func (rc *RoundController) serialize(f func()) {
	rc.restartMu.Lock()
	defer rc.restartMu.Unlock()
	f()
}

// Phase reports whether a restart is pending for the current round.
func (rc *RoundController) Phase() RoundPhase {
	generation := rc.state.Generation()

	rc.mu.Lock()
	defer rc.mu.Unlock()
	for _, p := range rc.pending {
		if p.generation == generation {
			return RoundEndPendingRestart
		}
	}
	return RoundInProgress
}

// Stop cancels pending restarts and ignores later explosions.
func (rc *RoundController) Stop() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.stopped = true
	for id, p := range rc.pending {
		p.stop()
		delete(rc.pending, id)
	}
}
