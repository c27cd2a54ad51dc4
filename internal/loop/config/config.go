// Package config centralizes all tunable game parameters.
package config

import "time"

// Playfield in logical units.
const (
	FieldWidth  = 800
	FieldHeight = 600
)

// Spawning
const (
	SpawnInterval      = 2 * time.Second
	PrimaryProbability = 0.15
)

// Target motion, units per second. Speed is
// TargetBaseSpeed + level*TargetSpeedPerLevel + jitter in [0, TargetSpeedJitter).
const (
	TargetBaseSpeed     = 60.0
	TargetSpeedPerLevel = 24.0
	TargetSpeedJitter   = 60.0
	TargetDriftRange    = 45.0 // max absolute drift before tier scaling
)

// Corruption tier spawn weights (low, moderate, critical).
var TierWeights = [3]float64{0.6, 0.3, 0.1}

// Drift multiplier per corruption tier.
var TierDrift = [3]float64{1, 1.5, 2}

// Shooter and projectiles
const (
	ShooterStep     = 20.0  // units per move event
	ProjectileSpeed = 480.0 // units per second
)

// Scoring, multiplied by the level number.
const (
	ScoreLow      = 100
	ScoreModerate = 250
	ScoreCritical = 500
	ComboMax      = 5
)

// Rules
const (
	MistakeLimit = 5 // per level
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Player names
const (
	MaxUsernameLength = 16
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS

	// Max render area in terminal cells; 4:3 with half-block rows.
	MaxTermWidth  = 120
	MaxTermHeight = 45
)

// Messages
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
	WarningDisplaySeconds  = 6.0  // Seconds a persistence warning stays on screen
)

// Audio
const (
	AudioBuffer  = 16                     // pending cues before new ones are dropped
	BellInterval = 150 * time.Millisecond // minimum gap between terminal bells
)

// Persistence
const (
	SaveQueueSize   = 8
	SaveTimeout     = 5 * time.Second
	LeaderboardSize = 10
)
