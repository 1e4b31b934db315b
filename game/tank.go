package game

import "github.com/google/uuid"

// TankState is the client-visible part of a tank. Clients own the physics, so
// every field except the pose set on respawn is whatever they last reported.
type TankState struct {
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	R               float64 `json:"r"`
	Colour          string  `json:"col"`
	AngularVelocity float64 `json:"angularVelocity"`
	ForwardVelocity float64 `json:"forwardVelocity"`
	IsAlive         bool    `json:"isAlive"`
	DestructionTime float64 `json:"destructionTime"`
}

// TankUpdate is a partial TankState. Nil fields are left untouched by Merge.
type TankUpdate struct {
	X               *float64 `json:"x,omitempty"`
	Y               *float64 `json:"y,omitempty"`
	R               *float64 `json:"r,omitempty"`
	Colour          *string  `json:"col,omitempty"`
	AngularVelocity *float64 `json:"angularVelocity,omitempty"`
	ForwardVelocity *float64 `json:"forwardVelocity,omitempty"`
	IsAlive         *bool    `json:"isAlive,omitempty"`
	DestructionTime *float64 `json:"destructionTime,omitempty"`
}

// Tank is one player's vehicle, keyed by the player-chosen tag.
type Tank struct {
	TankState
	Tag string

	// LoginCount is the number of live connections claiming Tag.
	LoginCount int
	// ConnectionID is the most recent connection to claim Tag.
	ConnectionID uuid.UUID
}

// NewTank returns a live tank with a single login.
func NewTank(tag, colour string, connID uuid.UUID, x, y, r float64) *Tank {
	return &Tank{
		TankState: TankState{
			X:       x,
			Y:       y,
			R:       r,
			Colour:  colour,
			IsAlive: true,
		},
		Tag:          tag,
		LoginCount:   1,
		ConnectionID: connID,
	}
}

// Respawn brings the tank back to life at the given pose.
func (t *Tank) Respawn(x, y, r float64) {
	t.IsAlive = true
	t.X = x
	t.Y = y
	t.R = r
}

// Explode marks the tank dead. Exploding a dead tank does nothing.
func (t *Tank) Explode() {
	t.IsAlive = false
}

// Merge overwrites the fields present in u.
func (t *Tank) Merge(u TankUpdate) {
	if u.X != nil {
		t.X = *u.X
	}
	if u.Y != nil {
		t.Y = *u.Y
	}
	if u.R != nil {
		t.R = *u.R
	}
	if u.Colour != nil {
		t.Colour = *u.Colour
	}
	if u.AngularVelocity != nil {
		t.AngularVelocity = *u.AngularVelocity
	}
	if u.ForwardVelocity != nil {
		t.ForwardVelocity = *u.ForwardVelocity
	}
	if u.IsAlive != nil {
		t.IsAlive = *u.IsAlive
	}
	if u.DestructionTime != nil {
		t.DestructionTime = *u.DestructionTime
	}
}
