package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewProjectileSpawnTime(t *testing.T) {
	received := time.UnixMilli(1_700_000_010_000)

	cases := []struct {
		name    string
		payload map[string]any
		want    time.Time
	}{
		{"json float", map[string]any{"spawnTime": 1_700_000_000_000.0}, time.UnixMilli(1_700_000_000_000)},
		{"msgpack uint", map[string]any{"spawnTime": uint64(1_700_000_000_000)}, time.UnixMilli(1_700_000_000_000)},
		{"msgpack int", map[string]any{"spawnTime": int64(1_700_000_000_000)}, time.UnixMilli(1_700_000_000_000)},
		{"json number", map[string]any{"spawnTime": json.Number("1700000000000")}, time.UnixMilli(1_700_000_000_000)},
		{"missing", map[string]any{"x": 1.0}, received},
		{"not a number", map[string]any{"spawnTime": "soon"}, received},
		{"nil payload", nil, received},
		{"too large", map[string]any{"spawnTime": 1e300}, received},
		{"too small", map[string]any{"spawnTime": -1e300}, received},
		{"just past int64", map[string]any{"spawnTime": 9.223372036854775808e18}, received},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewProjectile("p1", tc.payload, received)
			assert.True(t, tc.want.Equal(p.SpawnTime), "got %v", p.SpawnTime)
		})
	}
}

func TestProjectileExpired(t *testing.T) {
	spawn := time.UnixMilli(1_700_000_000_000)
	p := Projectile{ID: "p1", SpawnTime: spawn}

	assert.False(t, p.Expired(spawn.Add(4*time.Second), DefaultProjectileTTL))
	assert.False(t, p.Expired(spawn.Add(5*time.Second), DefaultProjectileTTL))
	assert.True(t, p.Expired(spawn.Add(5*time.Second+time.Millisecond), DefaultProjectileTTL))
}
