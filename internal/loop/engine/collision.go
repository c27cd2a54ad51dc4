package engine

import (
	"github.com/tomz197/glitchhunter/internal/audio"
	"github.com/tomz197/glitchhunter/internal/loop/config"
	"github.com/tomz197/glitchhunter/internal/object"
	"github.com/tomz197/glitchhunter/internal/physics"
)

// resolveCollisions consumes each projectile on the first target it
// overlaps. It reports whether the mistake limit was reached, in which case
// resolution stops at that hit.
func (e *Engine) resolveCollisions() (gameOver bool) {
	if len(e.projectiles) == 0 || len(e.targets) == 0 {
		return false
	}

	e.grid.Clear()
	for i, t := range e.targets {
		b := t.Bounds()
		e.grid.Insert(b.X, b.Y, b.W, b.H, i)
	}
	if cap(e.targetDead) < len(e.targets) {
		e.targetDead = make([]bool, len(e.targets))
	}
	dead := e.targetDead[:len(e.targets)]
	clear(dead)

	keptP := e.projectiles[:0]
	for _, p := range e.projectiles {
		if gameOver {
			// Unresolved projectiles are discarded with the field.
			break
		}
		hit := e.firstHit(p, dead)
		if hit < 0 {
			keptP = append(keptP, p)
			continue
		}
		dead[hit] = true
		gameOver = e.onHit(e.targets[hit])
	}
	e.projectiles = keptP

	keptT := e.targets[:0]
	for i, t := range e.targets {
		if !dead[i] {
			keptT = append(keptT, t)
		}
	}
	e.targets = keptT
	return gameOver
}

// firstHit returns the lowest index of a live target overlapping p, or -1.
func (e *Engine) firstHit(p object.Projectile, dead []bool) int {
	pb := p.Bounds()
	best := -1
	e.grid.Query(pb.X, pb.Y, pb.W, pb.H, func(i int) bool {
		if dead[i] || (best >= 0 && i > best) {
			return false
		}
		tb := e.targets[i].Bounds()
		if physics.RectsOverlap(pb.X, pb.Y, pb.W, pb.H, tb.X, tb.Y, tb.W, tb.H) {
			best = i
		}
		return false
	})
	return best
}

// onHit scores a destroyed target and reports whether it ended the game.
func (e *Engine) onHit(t object.Target) bool {
	b := t.Bounds()
	e.audio.Notify(audio.TargetHit)
	if t.Primary {
		e.kills++
		e.stats.RecordKill(e.points(t))
		e.particles = object.SpawnBurst(e.particles, b.CenterX(), b.CenterY(), object.ColorSuccess, e.rng)
		return false
	}
	e.mistakes++
	e.combo = 0
	e.stats.RecordMistake()
	e.particles = object.SpawnBurst(e.particles, b.CenterX(), b.CenterY(), object.ColorFailure, e.rng)
	return e.mistakes >= e.cfg.MistakeLimit
}

// points values a primary kill and advances the combo.
func (e *Engine) points(t object.Target) int {
	base := config.ScoreLow
	if e.cfg.Scoring == ScoringTiered {
		switch t.Tier {
		case object.CorruptionModerate:
			base = config.ScoreModerate
		case object.CorruptionCritical:
			base = config.ScoreCritical
		}
	}
	points := base * e.level.Number

	if e.cfg.ComboWindow <= 0 {
		return points
	}
	if e.combo > 0 && e.elapsed-e.lastKill <= e.cfg.ComboWindow {
		e.combo = min(e.combo+1, config.ComboMax)
	} else {
		e.combo = 1
	}
	e.lastKill = e.elapsed
	return points * e.combo
}
