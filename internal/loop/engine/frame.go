package engine

import (
	"time"

	"github.com/tomz197/glitchhunter/internal/catalog"
	"github.com/tomz197/glitchhunter/internal/object"
	"github.com/tomz197/glitchhunter/internal/stats"
)

// EventKind identifies a player input.
type EventKind int

const (
	MoveLeft EventKind = iota
	MoveRight
	MoveUp
	MoveDown
	Fire
	Aim // center the shooter on (X, Y)
)

// Event is a queued player input.
type Event struct {
	Kind EventKind
	X, Y float64 // Aim only
}

// Signal is the edge-triggered outcome of a tick.
type Signal int

const (
	SignalNone Signal = iota
	SignalLevelComplete
	SignalGameOver
)

func (s Signal) String() string {
	switch s {
	case SignalLevelComplete:
		return "level complete"
	case SignalGameOver:
		return "game over"
	}
	return "none"
}

// Outcome says why a level ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeTimeUp
	OutcomeQuotaMet
	OutcomeMissedPrimary
	OutcomeMistakes
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTimeUp:
		return "time up"
	case OutcomeQuotaMet:
		return "quota met"
	case OutcomeMissedPrimary:
		return "missed a primary target"
	case OutcomeMistakes:
		return "too many mistakes"
	}
	return "none"
}

// Entities is a read-only copy of everything on the field.
type Entities struct {
	Shooter     object.Shooter
	Projectiles []object.Projectile
	Targets     []object.Target
	Particles   []object.Particle
}

// Frame is what the host renders after a tick. Its Entities slices are
// reused by the tick after next.
type Frame struct {
	Entities      Entities
	Stats         stats.Snapshot // session totals
	LevelStats    stats.Snapshot // since the level started
	TimeRemaining time.Duration
	Level         catalog.Level
	Combo         int // current multiplier, 0 when no combo is running
	Mistakes      int // this level
	MistakeLimit  int
	Signal        Signal
	Outcome       Outcome
	ended         bool
}

// Ended reports whether the level is over. It stays true on every frame
// after the one carrying the signal.
func (f Frame) Ended() bool { return f.ended }
