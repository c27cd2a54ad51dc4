package engine

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/tomz197/glitchhunter/internal/audio"
	"github.com/tomz197/glitchhunter/internal/catalog"
	"github.com/tomz197/glitchhunter/internal/object"
	"github.com/tomz197/glitchhunter/internal/stats"
)

type recorder struct {
	mu     sync.Mutex
	events []audio.Event
}

func (r *recorder) Notify(e audio.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) count(e audio.Event) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, got := range r.events {
		if got == e {
			n++
		}
	}
	return n
}

func testLevel() catalog.Level {
	return catalog.Level{Number: 1, BotQuota: 5, BulletAllowance: 10, Difficulty: catalog.Easy, DefaultTime: time.Minute}
}

type fataler interface {
	Fatalf(format string, args ...any)
}

func newTestEngine(t fataler, mutate func(*Config)) (*Engine, *recorder) {
	cfg := DefaultConfig()
	cfg.Seed = 42
	if mutate != nil {
		mutate(&cfg)
	}
	rec := &recorder{}
	e := New(cfg, stats.New(stats.PerSession), rec)
	if err := e.StartLevel(testLevel(), 0); err != nil {
		t.Fatalf("StartLevel: %v", err)
	}
	return e, rec
}

// still returns a target that does not move on its own.
func still(x, y float64, primary bool) object.Target {
	return object.Target{X: x, Y: y, Size: 20, Primary: primary}
}

// aimedAt returns a projectile overlapping a still target at (x, y).
func aimedAt(x, y float64) object.Projectile {
	return object.Projectile{X: x + 5, Y: y + 5}
}

func TestStartLevelRejectsInvalidLevel(t *testing.T) {
	e := New(DefaultConfig(), nil, nil)
	bad := testLevel()
	bad.BulletAllowance = 0
	if err := e.StartLevel(bad, 0); !errors.Is(err, ErrInvalidLevel) {
		t.Fatalf("err = %v, want ErrInvalidLevel", err)
	}
	if err := e.StartLevel(testLevel(), -time.Second); !errors.Is(err, ErrInvalidLevel) {
		t.Fatalf("negative budget err = %v", err)
	}
	e.Queue(Event{Kind: Fire})
	f := e.Tick(time.Second, false)
	if f.Signal != SignalNone || f.Stats.Shots != 0 || f.Stats.Elapsed != 0 {
		t.Fatalf("tick before a successful start changed state: %+v", f)
	}
}

func TestStartLevelUsesDefaultBudget(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	if f := e.Tick(0, false); f.TimeRemaining != time.Minute {
		t.Fatalf("remaining = %v, want 1m", f.TimeRemaining)
	}
	if err := e.StartLevel(testLevel(), 20*time.Second); err != nil {
		t.Fatal(err)
	}
	if f := e.Tick(0, false); f.TimeRemaining != 20*time.Second {
		t.Fatalf("remaining = %v, want 20s", f.TimeRemaining)
	}
}

func TestFireRecordsShot(t *testing.T) {
	e, rec := newTestEngine(t, nil)
	e.Queue(Event{Kind: MoveLeft})
	e.Queue(Event{Kind: Fire})
	f := e.Tick(0, false)

	if f.Stats.Shots != 1 || len(f.Entities.Projectiles) != 1 {
		t.Fatalf("shots=%d projectiles=%d", f.Stats.Shots, len(f.Entities.Projectiles))
	}
	p := f.Entities.Projectiles[0]
	if p.X != 380 || p.Y != 550 {
		t.Errorf("projectile at (%v, %v), want (380, 550)", p.X, p.Y)
	}
	if f.Entities.Shooter.X != 365 {
		t.Errorf("shooter x = %v, want 365", f.Entities.Shooter.X)
	}
	if rec.count(audio.ShotFired) != 1 {
		t.Errorf("shot cue not sent")
	}
}

func TestPauseDiscardsInputAndFreezesClock(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.Tick(1500*time.Millisecond, false)

	e.Queue(Event{Kind: Fire})
	e.Queue(Event{Kind: MoveRight})
	for range 10 {
		e.Tick(time.Second, true)
	}
	f := e.Tick(0, false)
	if f.Stats.Shots != 0 || f.Entities.Shooter.X != 385 {
		t.Fatalf("input applied across pause: shots=%d x=%v", f.Stats.Shots, f.Entities.Shooter.X)
	}
	if f.TimeRemaining != time.Minute-1500*time.Millisecond {
		t.Fatalf("clock moved while paused: %v", f.TimeRemaining)
	}
	if len(f.Entities.Targets) != 0 {
		t.Fatalf("spawned while paused")
	}
	f = e.Tick(500*time.Millisecond, false)
	if len(f.Entities.Targets) != 1 {
		t.Fatalf("targets = %d after 2s of play, want 1", len(f.Entities.Targets))
	}
}

func TestSpawnAccumulatorIndependentOfFrameRate(t *testing.T) {
	for _, step := range []time.Duration{16 * time.Millisecond, 250 * time.Millisecond, 5 * time.Second} {
		e, _ := newTestEngine(t, func(c *Config) {
			c.PrimaryProbability = 0
			c.BaseSpeed, c.SpeedPerLevel, c.SpeedJitter = 0, 0, 0
		})
		for elapsed := time.Duration(0); elapsed < 10*time.Second; elapsed += step {
			e.Tick(step, false)
		}
		if got := len(e.targets); got != 5 {
			t.Errorf("step %v: spawned %d targets in 10s, want 5", step, got)
		}
	}
}

func TestSpawnedTargetsAreWellFormed(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	for range 200 {
		tg := e.newTarget()
		if tg.Size < object.TargetMinSize || tg.Size > object.TargetMinSize+object.TargetSizeSpan {
			t.Fatalf("size %v out of range", tg.Size)
		}
		if tg.X < 0 || tg.X+tg.Size > object.FieldWidth || tg.Y != -tg.Size {
			t.Fatalf("bad spawn position %+v", tg)
		}
		if tg.Speed < e.cfg.BaseSpeed+e.cfg.SpeedPerLevel {
			t.Fatalf("speed %v below base for level 1", tg.Speed)
		}
	}
}

func TestSameSeedSameTargets(t *testing.T) {
	a, _ := newTestEngine(t, nil)
	b, _ := newTestEngine(t, nil)
	for range 20 {
		if x, y := a.newTarget(), b.newTarget(); x != y {
			t.Fatalf("targets differ: %+v vs %+v", x, y)
		}
	}
}

func TestPrimaryEscapeIsGameOverOnce(t *testing.T) {
	e, rec := newTestEngine(t, nil)
	e.targets = append(e.targets, still(100, 601, true))

	f := e.Tick(0, false)
	if f.Signal != SignalGameOver || f.Outcome != OutcomeMissedPrimary || !f.Ended() {
		t.Fatalf("frame = %v/%v ended=%v", f.Signal, f.Outcome, f.Ended())
	}
	if rec.count(audio.TargetMissed) != 1 {
		t.Errorf("miss cue count = %d", rec.count(audio.TargetMissed))
	}
	for range 3 {
		f = e.Tick(time.Second, false)
		if f.Signal != SignalNone || !f.Ended() || f.Outcome != OutcomeMissedPrimary {
			t.Fatalf("ended level produced %v", f.Signal)
		}
	}
}

func TestDecoyEscapeIsHarmless(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.targets = append(e.targets, still(100, 601, false), still(200, 100, false))

	f := e.Tick(0, false)
	if f.Signal != SignalNone || f.Ended() {
		t.Fatalf("decoy escape signalled %v", f.Signal)
	}
	if len(f.Entities.Targets) != 1 || f.Stats.Mistakes != 0 {
		t.Fatalf("targets=%d mistakes=%d", len(f.Entities.Targets), f.Stats.Mistakes)
	}
}

func TestHitResolvesBeforeBoundary(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.targets = append(e.targets, still(100, 601, true))
	e.projectiles = append(e.projectiles, aimedAt(100, 601))

	f := e.Tick(0, false)
	if f.Signal != SignalNone {
		t.Fatalf("signal = %v, want none", f.Signal)
	}
	if f.Stats.Kills != 1 || f.Stats.Score != 100 {
		t.Fatalf("kills=%d score=%d", f.Stats.Kills, f.Stats.Score)
	}
	if len(f.Entities.Particles) != object.BurstCount {
		t.Errorf("particles = %d", len(f.Entities.Particles))
	}
}

func TestMistakeLimitEndsGameExactlyOnce(t *testing.T) {
	e, rec := newTestEngine(t, nil)
	for i := range 7 {
		x := float64(50 + i*100)
		e.targets = append(e.targets, still(x, 100, false))
		e.projectiles = append(e.projectiles, aimedAt(x, 100))
	}

	f := e.Tick(0, false)
	if f.Signal != SignalGameOver || f.Outcome != OutcomeMistakes {
		t.Fatalf("frame = %v/%v", f.Signal, f.Outcome)
	}
	if f.Stats.Mistakes != 5 || f.Mistakes != 5 {
		t.Fatalf("mistakes = %d, want resolution to stop at 5", f.Stats.Mistakes)
	}
	if rec.count(audio.TargetHit) != 5 {
		t.Errorf("hit cues = %d", rec.count(audio.TargetHit))
	}
	if f = e.Tick(0, false); f.Signal != SignalNone || f.Stats.Mistakes != 5 {
		t.Fatalf("second frame: %v mistakes=%d", f.Signal, f.Stats.Mistakes)
	}
}

func TestMistakesAccumulateAcrossTicks(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	for i := range 5 {
		e.targets = append(e.targets, still(100, 100, false))
		e.projectiles = append(e.projectiles, aimedAt(100, 100))
		f := e.Tick(0, false)
		if f.Mistakes != i+1 {
			t.Fatalf("tick %d: mistakes = %d", i, f.Mistakes)
		}
		if want := i == 4; (f.Signal == SignalGameOver) != want {
			t.Fatalf("tick %d: signal = %v", i, f.Signal)
		}
	}
}

func TestProjectileHitsOnlyOneTarget(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.targets = append(e.targets, still(100, 100, true), still(102, 102, true))
	e.projectiles = append(e.projectiles, aimedAt(100, 100))

	f := e.Tick(0, false)
	if f.Stats.Kills != 1 || len(f.Entities.Targets) != 1 || len(f.Entities.Projectiles) != 0 {
		t.Fatalf("kills=%d targets=%d projectiles=%d", f.Stats.Kills, len(f.Entities.Targets), len(f.Entities.Projectiles))
	}
	if got := f.Entities.Targets[0].X; got != 102 {
		t.Errorf("surviving target x = %v, want the later one", got)
	}
}

func TestSlowFrameCannotTunnel(t *testing.T) {
	for _, ticks := range []int{1, 2, 6} {
		e, _ := newTestEngine(t, func(c *Config) { c.SpawnInterval = time.Hour })
		e.targets = append(e.targets, still(100, 200, true))
		e.projectiles = append(e.projectiles, object.NewProjectile(105, 235, e.cfg.ProjectileSpeed))

		var f Frame
		for range ticks {
			f = e.Tick(100*time.Millisecond/time.Duration(ticks), false)
		}
		if f.Stats.Kills != 1 || len(f.Entities.Targets) != 0 || len(f.Entities.Projectiles) != 0 {
			t.Fatalf("100ms in %d ticks: kills=%d targets=%d projectiles=%d",
				ticks, f.Stats.Kills, len(f.Entities.Targets), len(f.Entities.Projectiles))
		}
	}
}

func TestTimeUpCompletesLevel(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	if err := e.StartLevel(testLevel(), time.Second); err != nil {
		t.Fatal(err)
	}
	f := e.Tick(600*time.Millisecond, false)
	if f.Signal != SignalNone {
		t.Fatalf("early signal %v", f.Signal)
	}
	f = e.Tick(600*time.Millisecond, false)
	if f.Signal != SignalLevelComplete || f.Outcome != OutcomeTimeUp {
		t.Fatalf("frame = %v/%v", f.Signal, f.Outcome)
	}
	if f.TimeRemaining != 0 || f.LevelStats.Elapsed != time.Second {
		t.Fatalf("remaining=%v elapsed=%v", f.TimeRemaining, f.LevelStats.Elapsed)
	}
}

func TestQuotaCompletesLevel(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	lvl := testLevel()
	lvl.BotQuota = 1
	if err := e.StartLevel(lvl, 0); err != nil {
		t.Fatal(err)
	}
	e.Tick(time.Second, false)
	e.targets = append(e.targets[:0], still(100, 100, true))
	e.projectiles = append(e.projectiles, aimedAt(100, 100))
	f := e.Tick(0, false)
	if f.Signal != SignalLevelComplete || f.Outcome != OutcomeQuotaMet {
		t.Fatalf("frame = %v/%v", f.Signal, f.Outcome)
	}
	if f.LevelStats.Kills != 1 || f.LevelStats.Elapsed != time.Second {
		t.Fatalf("level stats = %+v", f.LevelStats)
	}
	if len(f.Entities.Targets) != 0 || len(f.Entities.Projectiles) != 0 {
		t.Errorf("field not cleared at level end")
	}
}

func TestScoring(t *testing.T) {
	tests := []struct {
		name    string
		scoring Scoring
		tier    object.Corruption
		number  int
		want    int
	}{
		{"tiered low", ScoringTiered, object.CorruptionLow, 1, 100},
		{"tiered moderate", ScoringTiered, object.CorruptionModerate, 2, 500},
		{"tiered critical", ScoringTiered, object.CorruptionCritical, 3, 1500},
		{"flat critical", ScoringFlat, object.CorruptionCritical, 3, 300},
	}
	for _, tt := range tests {
		e, _ := newTestEngine(t, func(c *Config) { c.Scoring = tt.scoring })
		lvl := testLevel()
		lvl.Number = tt.number
		if err := e.StartLevel(lvl, 0); err != nil {
			t.Fatal(err)
		}
		tg := still(100, 100, true)
		tg.Tier = tt.tier
		e.targets = append(e.targets, tg)
		e.projectiles = append(e.projectiles, aimedAt(100, 100))
		if f := e.Tick(0, false); f.Stats.Score != tt.want {
			t.Errorf("%s: score = %d, want %d", tt.name, f.Stats.Score, tt.want)
		}
	}
}

func TestComboMultiplier(t *testing.T) {
	e, _ := newTestEngine(t, func(c *Config) { c.ComboWindow = time.Second })
	kill := func() Frame {
		e.Tick(100*time.Millisecond, false)
		e.targets = append(e.targets, still(100, 100, true))
		e.projectiles = append(e.projectiles, aimedAt(100, 100))
		return e.Tick(0, false)
	}

	var score []int
	last := 0
	for range 6 {
		f := kill()
		score = append(score, f.Stats.Score-last)
		last = f.Stats.Score
		if f.Ended() {
			break
		}
	}
	// Quota of 5 ends the level on the fifth kill.
	want := []int{100, 200, 300, 400, 500}
	if !reflect.DeepEqual(score, want) {
		t.Fatalf("points per kill = %v, want %v", score, want)
	}

	e, _ = newTestEngine(t, func(c *Config) { c.ComboWindow = time.Second })
	kill()
	e.Tick(2*time.Second, false)
	e.targets = e.targets[:0]
	if f := kill(); f.Combo != 0 || f.Stats.Score != 200 {
		t.Fatalf("combo survived a gap: combo=%d score=%d", f.Combo, f.Stats.Score)
	}
}

type engineState struct {
	shooter     object.Shooter
	projectiles []object.Projectile
	targets     []object.Target
	particles   []object.Particle
	remaining   time.Duration
	spawnAcc    time.Duration
	stats       stats.Snapshot
	kills       int
	mistakes    int
}

func captureState(e *Engine) engineState {
	s := engineState{
		shooter:     e.shooter,
		projectiles: append([]object.Projectile(nil), e.projectiles...),
		targets:     append([]object.Target(nil), e.targets...),
		remaining:   e.remaining,
		spawnAcc:    e.spawnAcc,
		stats:       e.stats.Snapshot(),
		kills:       e.kills,
		mistakes:    e.mistakes,
	}
	for _, p := range e.particles {
		s.particles = append(s.particles, *p)
	}
	return s
}

var eventKinds = []EventKind{MoveLeft, MoveRight, MoveUp, MoveDown, Fire, Aim}

func drawEvent(t *rapid.T) Event {
	return Event{
		Kind: rapid.SampledFrom(eventKinds).Draw(t, "kind"),
		X:    rapid.Float64Range(0, 800).Draw(t, "x"),
		Y:    rapid.Float64Range(0, 600).Draw(t, "y"),
	}
}

func TestPausedTicksChangeNothing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e, _ := newTestEngine(t, func(c *Config) { c.Seed = rapid.Uint64Min(1).Draw(t, "seed") })
		for range rapid.IntRange(0, 30).Draw(t, "warmup") {
			for range rapid.IntRange(0, 3).Draw(t, "events") {
				e.Queue(drawEvent(t))
			}
			if f := e.Tick(time.Duration(rapid.IntRange(0, 200).Draw(t, "ms"))*time.Millisecond, false); f.Ended() {
				return
			}
		}

		before := captureState(e)
		for range rapid.IntRange(1, 10).Draw(t, "paused ticks") {
			for range rapid.IntRange(0, 5).Draw(t, "paused events") {
				e.Queue(drawEvent(t))
			}
			f := e.Tick(time.Duration(rapid.Int64Range(0, int64(10*time.Second)).Draw(t, "delta")), true)
			if f.Signal != SignalNone {
				t.Fatalf("paused tick signalled %v", f.Signal)
			}
		}
		if after := captureState(e); !reflect.DeepEqual(before, after) {
			t.Fatalf("paused ticks changed state\nbefore: %+v\nafter:  %+v", before, after)
		}
	})
}

func TestProjectilesConsumedMatchHits(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e, _ := newTestEngine(t, func(c *Config) {
			c.MistakeLimit = 1000
			c.CompleteOnQuota = false
		})
		for range rapid.IntRange(0, 20).Draw(t, "targets") {
			e.targets = append(e.targets, object.Target{
				X:       rapid.Float64Range(0, 750).Draw(t, "tx"),
				Y:       rapid.Float64Range(-45, 550).Draw(t, "ty"),
				Size:    rapid.Float64Range(20, 45).Draw(t, "size"),
				Primary: rapid.Bool().Draw(t, "primary"),
			})
		}
		for range rapid.IntRange(0, 20).Draw(t, "projectiles") {
			e.projectiles = append(e.projectiles, object.Projectile{
				X: rapid.Float64Range(0, 795).Draw(t, "px"),
				Y: rapid.Float64Range(0, 590).Draw(t, "py"),
			})
		}
		preP, preT := len(e.projectiles), len(e.targets)

		f := e.Tick(0, false)
		consumed := preP - len(f.Entities.Projectiles)
		hits := f.Stats.Kills + f.Stats.Mistakes
		if consumed != hits {
			t.Fatalf("consumed %d projectiles for %d hits", consumed, hits)
		}
		if consumed > preP || preT-len(f.Entities.Targets) != hits {
			t.Fatalf("removed %d targets for %d hits (of %d projectiles)", preT-len(f.Entities.Targets), hits, preP)
		}
	})
}
