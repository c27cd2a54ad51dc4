package engine

import (
	"time"

	"github.com/tomz197/glitchhunter/internal/object"
)

// spawn releases one target per elapsed spawn interval. The accumulator
// only advances on unpaused ticks.
func (e *Engine) spawn(delta time.Duration) {
	e.spawnAcc += delta
	for e.spawnAcc >= e.cfg.SpawnInterval {
		e.spawnAcc -= e.cfg.SpawnInterval
		e.targets = append(e.targets, e.newTarget())
	}
}

func (e *Engine) newTarget() object.Target {
	field := e.cfg.Field
	size := object.TargetMinSize + e.rng.Float64()*object.TargetSizeSpan
	tier := e.pickTier()
	return object.Target{
		X:       e.rng.Float64() * (field.Width - size),
		Y:       -size,
		Size:    size,
		Speed:   e.cfg.BaseSpeed + float64(e.level.Number)*e.cfg.SpeedPerLevel + e.rng.Float64()*e.cfg.SpeedJitter,
		Drift:   (e.rng.Float64()*2 - 1) * e.cfg.DriftRange * e.cfg.TierDrift[tier],
		Tier:    tier,
		Primary: e.rng.Float64() < e.cfg.PrimaryProbability,
	}
}

func (e *Engine) pickTier() object.Corruption {
	var total float64
	for _, w := range e.cfg.TierWeights {
		total += w
	}
	r := e.rng.Float64() * total
	for i, w := range e.cfg.TierWeights {
		if r < w {
			return object.Corruption(i)
		}
		r -= w
	}
	return object.CorruptionLow
}
