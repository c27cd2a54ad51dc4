// Package engine advances one level of the game tick by tick: spawning
// glitch targets, moving entities, resolving hits and deciding when the
// level is complete or lost.
package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/tomz197/glitchhunter/internal/audio"
	"github.com/tomz197/glitchhunter/internal/catalog"
	"github.com/tomz197/glitchhunter/internal/object"
	"github.com/tomz197/glitchhunter/internal/physics"
	"github.com/tomz197/glitchhunter/internal/stats"
)

// ErrInvalidLevel is returned by StartLevel for unplayable definitions.
var ErrInvalidLevel = errors.New("engine: invalid level")

// gridCellSize is about one large target across.
const gridCellSize = 64.0

// Engine owns all entity state of the active level. Tick must be called from
// a single goroutine; Queue may be called from any.
type Engine struct {
	cfg   Config
	stats *stats.Aggregator
	audio audio.Notifier
	rng   *rand.Rand

	mu      sync.Mutex
	pending []Event
	drained []Event

	level     catalog.Level
	started   bool
	ended     bool
	outcome   Outcome
	remaining time.Duration
	elapsed   time.Duration // level clock
	spawnAcc  time.Duration

	kills    int // this level
	mistakes int // this level
	combo    int
	lastKill time.Duration

	shooter     object.Shooter
	projectiles []object.Projectile
	targets     []object.Target
	particles   []*object.Particle

	grid       *physics.SpatialGrid
	targetDead []bool

	// Double-buffered entity views to avoid allocations
	views   [2]Entities
	viewIdx int
}

// New creates an engine. A nil aggregator gets a per-session one; a nil
// notifier discards audio cues.
func New(cfg Config, agg *stats.Aggregator, notifier audio.Notifier) *Engine {
	cfg = cfg.withDefaults()
	if agg == nil {
		agg = stats.New(stats.PerSession)
	}
	if notifier == nil {
		notifier = audio.Nop{}
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Engine{
		cfg:     cfg,
		stats:   agg,
		audio:   notifier,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		shooter: object.NewShooter(cfg.Field),
		grid:    physics.NewSpatialGrid(cfg.Field.Width, cfg.Field.Height, gridCellSize),
	}
}

// StartLevel resets the field for level with the given time budget. A zero
// budget means the level's default time.
func (e *Engine) StartLevel(level catalog.Level, budget time.Duration) error {
	if err := level.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	if budget < 0 {
		return fmt.Errorf("%w: negative time budget %v", ErrInvalidLevel, budget)
	}
	if budget == 0 {
		budget = level.DefaultTime
	}

	e.mu.Lock()
	e.pending = e.pending[:0]
	e.mu.Unlock()

	e.level = level
	e.started = true
	e.ended = false
	e.outcome = OutcomeNone
	e.remaining = budget
	e.elapsed = 0
	e.spawnAcc = 0
	e.kills = 0
	e.mistakes = 0
	e.combo = 0
	e.lastKill = 0
	e.shooter = object.NewShooter(e.cfg.Field)
	e.clearField()
	e.stats.BeginLevel()
	return nil
}

// Queue buffers an input for the next tick.
func (e *Engine) Queue(ev Event) {
	e.mu.Lock()
	e.pending = append(e.pending, ev)
	e.mu.Unlock()
}

// maxStep bounds one simulation step, so a projectile moves less than its
// own height per step and cannot pass through a target on a slow frame.
const maxStep = time.Second / 60

// Tick advances the level by delta, in equal steps of at most maxStep.
// While paused, queued inputs are discarded and no state changes.
func (e *Engine) Tick(delta time.Duration, paused bool) Frame {
	events := e.drain()
	if !e.started || e.ended {
		return e.frame(SignalNone)
	}
	if paused {
		return e.frame(SignalNone)
	}
	delta = max(delta, 0)

	e.applyInput(events)
	n := max(int((delta+maxStep-1)/maxStep), 1)
	step := delta / time.Duration(n)
	rest := delta - step*time.Duration(n)
	for i := range n {
		d := step
		if i == n-1 {
			d += rest
		}
		if sig, outcome := e.step(d); sig != SignalNone {
			return e.finish(sig, outcome)
		}
	}
	return e.frame(SignalNone)
}

// step runs one simulation step and returns the terminal signal it raised.
func (e *Engine) step(delta time.Duration) (Signal, Outcome) {
	e.advanceClock(delta)
	e.spawn(delta)
	e.move(delta.Seconds())

	if e.resolveCollisions() {
		return SignalGameOver, OutcomeMistakes
	}
	if e.checkBoundaries() {
		return SignalGameOver, OutcomeMissedPrimary
	}

	switch {
	case e.cfg.CompleteOnQuota && e.level.BotQuota > 0 && e.kills >= e.level.BotQuota:
		return SignalLevelComplete, OutcomeQuotaMet
	case e.remaining <= 0:
		return SignalLevelComplete, OutcomeTimeUp
	}
	return SignalNone, OutcomeNone
}

func (e *Engine) drain() []Event {
	e.mu.Lock()
	e.pending, e.drained = e.drained[:0], e.pending
	e.mu.Unlock()
	return e.drained
}

func (e *Engine) applyInput(events []Event) {
	step := e.cfg.ShooterStep
	for _, ev := range events {
		switch ev.Kind {
		case MoveLeft:
			e.shooter.Move(-step, 0, e.cfg.Field)
		case MoveRight:
			e.shooter.Move(step, 0, e.cfg.Field)
		case MoveUp:
			e.shooter.Move(0, -step, e.cfg.Field)
		case MoveDown:
			e.shooter.Move(0, step, e.cfg.Field)
		case Aim:
			e.shooter.AimAt(ev.X, ev.Y, e.cfg.Field)
		case Fire:
			x, y := e.shooter.Muzzle()
			e.projectiles = append(e.projectiles, object.NewProjectile(x, y, e.cfg.ProjectileSpeed))
			e.stats.RecordShot()
			e.audio.Notify(audio.ShotFired)
		}
	}
}

// advanceClock runs the level clock down. Elapsed time never exceeds the
// budget the level started with.
func (e *Engine) advanceClock(delta time.Duration) {
	step := min(delta, e.remaining)
	e.remaining -= delta
	e.elapsed += step
	e.stats.Tick(step)
}

func (e *Engine) move(dt float64) {
	for i := range e.projectiles {
		e.projectiles[i].Update(dt)
	}
	for i := range e.targets {
		e.targets[i].Update(dt, e.cfg.Field)
	}
	kept := e.particles[:0]
	for _, p := range e.particles {
		if p.Update(dt) {
			p.Release()
			continue
		}
		kept = append(kept, p)
	}
	clear(e.particles[len(kept):])
	e.particles = kept
}

// checkBoundaries removes entities that left the field. It reports whether
// a primary target escaped.
func (e *Engine) checkBoundaries() bool {
	keptP := e.projectiles[:0]
	for _, p := range e.projectiles {
		if !p.Gone() {
			keptP = append(keptP, p)
		}
	}
	e.projectiles = keptP

	keptT := e.targets[:0]
	for _, t := range e.targets {
		if !t.Escaped(e.cfg.Field) {
			keptT = append(keptT, t)
			continue
		}
		if t.Primary {
			e.audio.Notify(audio.TargetMissed)
			e.targets = keptT
			return true
		}
	}
	e.targets = keptT
	return false
}

func (e *Engine) finish(sig Signal, outcome Outcome) Frame {
	e.ended = true
	e.outcome = outcome
	e.clearField()
	return e.frame(sig)
}

func (e *Engine) clearField() {
	e.projectiles = e.projectiles[:0]
	e.targets = e.targets[:0]
	for _, p := range e.particles {
		p.Release()
	}
	clear(e.particles)
	e.particles = e.particles[:0]
}

// frame builds the host view into the next snapshot buffer.
func (e *Engine) frame(sig Signal) Frame {
	view := &e.views[e.viewIdx]
	e.viewIdx = 1 - e.viewIdx

	view.Shooter = e.shooter
	view.Projectiles = append(view.Projectiles[:0], e.projectiles...)
	view.Targets = append(view.Targets[:0], e.targets...)
	view.Particles = view.Particles[:0]
	for _, p := range e.particles {
		view.Particles = append(view.Particles, *p)
	}

	combo := 0
	if e.combo > 1 {
		combo = e.combo
	}
	return Frame{
		Entities:      *view,
		Stats:         e.stats.Snapshot(),
		LevelStats:    e.stats.Level(),
		TimeRemaining: max(e.remaining, 0),
		Level:         e.level,
		Combo:         combo,
		Mistakes:      e.mistakes,
		MistakeLimit:  e.cfg.MistakeLimit,
		Signal:        sig,
		Outcome:       e.outcome,
		ended:         e.ended,
	}
}
