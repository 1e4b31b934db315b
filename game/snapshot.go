package game

import "github.com/beka-birhanu/vinom-arena-server/maze"

// MazeSnapshot is the wall geometry of the live maze.
type MazeSnapshot struct {
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Walls  []maze.Wall `json:"walls"`
}

// FullSnapshot is sent on join and at round start.
type FullSnapshot struct {
	Width       int                       `json:"width"`
	Height      int                       `json:"height"`
	Maze        MazeSnapshot              `json:"maze"`
	Tanks       map[string]TankState      `json:"tanks"`
	Projectiles map[string]map[string]any `json:"projectiles"`
	Round       int64                     `json:"round"`
	NewUserTag  string                    `json:"newUserTag,omitempty"`
}

// RoundResult describes a completed fenced restart.
type RoundResult struct {
	// Generation is the round that has just started.
	Generation int64
	// Winner is the surviving tag, empty on a draw.
	Winner string
	Draw   bool
	// ScoreErr is set when the finished round could not be scored.
	ScoreErr error
	Snapshot FullSnapshot
}

// Explosion is the state observed right after an explode report.
type Explosion struct {
	// Killed is false when the report changed nothing: the tank was
	// unknown or already dead.
	Killed     bool
	Alive      int
	Generation int64
}
