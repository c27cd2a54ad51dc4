package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomz197/glitchhunter/internal/loop/config"
	"github.com/tomz197/glitchhunter/internal/object"
)

// Scoring selects how primary kills are valued.
type Scoring int

const (
	// ScoringTiered values kills by corruption tier: 100/250/500 x level.
	ScoringTiered Scoring = iota
	// ScoringFlat values every kill at 100 x level.
	ScoringFlat
)

// ParseScoring accepts "tiered" or "flat".
func ParseScoring(s string) (Scoring, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tiered":
		return ScoringTiered, nil
	case "flat":
		return ScoringFlat, nil
	}
	return ScoringTiered, fmt.Errorf("engine: unknown scoring mode %q", s)
}

func (s Scoring) String() string {
	if s == ScoringFlat {
		return "flat"
	}
	return "tiered"
}

// Config holds the rules of the simulation. Speeds are in units per second.
type Config struct {
	Field              object.Playfield
	SpawnInterval      time.Duration
	PrimaryProbability float64
	MistakeLimit       int

	BaseSpeed     float64
	SpeedPerLevel float64
	SpeedJitter   float64
	DriftRange    float64
	TierWeights   [3]float64 // spawn weight per corruption tier
	TierDrift     [3]float64 // drift multiplier per corruption tier

	ShooterStep     float64
	ProjectileSpeed float64

	Scoring Scoring
	// ComboWindow is the longest gap between kills that keeps a combo
	// going. Zero disables combos.
	ComboWindow time.Duration
	// CompleteOnQuota ends the level as soon as the bot quota is met.
	CompleteOnQuota bool

	// Seed for the spawn RNG. Zero picks a random seed.
	Seed uint64
}

// DefaultConfig returns the standard rules.
func DefaultConfig() Config {
	return Config{
		Field:              object.Playfield{Width: config.FieldWidth, Height: config.FieldHeight},
		SpawnInterval:      config.SpawnInterval,
		PrimaryProbability: config.PrimaryProbability,
		MistakeLimit:       config.MistakeLimit,
		BaseSpeed:          config.TargetBaseSpeed,
		SpeedPerLevel:      config.TargetSpeedPerLevel,
		SpeedJitter:        config.TargetSpeedJitter,
		DriftRange:         config.TargetDriftRange,
		TierWeights:        config.TierWeights,
		TierDrift:          config.TierDrift,
		ShooterStep:        config.ShooterStep,
		ProjectileSpeed:    config.ProjectileSpeed,
		Scoring:            ScoringTiered,
		CompleteOnQuota:    true,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Field.Width <= 0 || c.Field.Height <= 0 {
		c.Field = d.Field
	}
	if c.SpawnInterval <= 0 {
		c.SpawnInterval = d.SpawnInterval
	}
	if c.MistakeLimit <= 0 {
		c.MistakeLimit = d.MistakeLimit
	}
	if c.TierWeights == ([3]float64{}) {
		c.TierWeights = d.TierWeights
	}
	if c.TierDrift == ([3]float64{}) {
		c.TierDrift = d.TierDrift
	}
	if c.ShooterStep <= 0 {
		c.ShooterStep = d.ShooterStep
	}
	if c.ProjectileSpeed <= 0 {
		c.ProjectileSpeed = d.ProjectileSpeed
	}
	return c
}
