package game

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// DefaultProjectileTTL is how long a projectile lives after it was fired.
const DefaultProjectileTTL = 5 * time.Second

// maxInt64Float is 2^63, the first float64 above math.MaxInt64.
const maxInt64Float = float64(1 << 63)

// spawnTimeKey is the payload field carrying the firing time in epoch millis.
const spawnTimeKey = "spawnTime"

// Projectile is a shot in flight. The payload is stored and re-broadcast
// verbatim; only the spawn time is interpreted.
type Projectile struct {
	ID        string
	Payload   map[string]any
	SpawnTime time.Time
}

// NewProjectile reads the spawn time from the payload. A payload without a
// usable spawnTime, including one outside the int64 millisecond range, is
// stamped with received.
func NewProjectile(id string, payload map[string]any, received time.Time) Projectile {
	spawn := received
	if ms, ok := toFloat(payload[spawnTimeKey]); ok && ms >= math.MinInt64 && ms < maxInt64Float {
		spawn = time.UnixMilli(int64(ms))
	}
	return Projectile{ID: id, Payload: payload, SpawnTime: spawn}
}

// Expired reports whether the projectile has outlived ttl at now.
func (p Projectile) Expired(now time.Time, ttl time.Duration) bool {
	return p.SpawnTime.Add(ttl).Before(now)
}

// toFloat accepts the numeric shapes produced by the JSON, MessagePack and
// Protobuf decoders.
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
