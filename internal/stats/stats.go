// Package stats accumulates the score, kills, shots, mistakes and play time
// of a game session.
package stats

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ResetPolicy decides whether counters survive a level boundary.
type ResetPolicy int

const (
	// PerSession accumulates across levels. Level() still reports the
	// delta since the last BeginLevel.
	PerSession ResetPolicy = iota
	// PerLevel zeroes every counter when a level begins.
	PerLevel
)

// ParseResetPolicy accepts "session" or "level".
func ParseResetPolicy(s string) (ResetPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "session":
		return PerSession, nil
	case "level":
		return PerLevel, nil
	}
	return PerSession, fmt.Errorf("stats: unknown reset policy %q", s)
}

func (p ResetPolicy) String() string {
	if p == PerLevel {
		return "level"
	}
	return "session"
}

// Snapshot is a read-only copy of the counters.
type Snapshot struct {
	Score    int
	Kills    int
	Shots    int
	Mistakes int
	Elapsed  time.Duration
}

// Accuracy returns kills per shot as a whole percentage.
func (s Snapshot) Accuracy() int {
	if s.Shots == 0 {
		return 0
	}
	return int(math.Round(float64(s.Kills) * 100 / float64(s.Shots)))
}

func (s Snapshot) sub(o Snapshot) Snapshot {
	return Snapshot{
		Score:    s.Score - o.Score,
		Kills:    s.Kills - o.Kills,
		Shots:    s.Shots - o.Shots,
		Mistakes: s.Mistakes - o.Mistakes,
		Elapsed:  s.Elapsed - o.Elapsed,
	}
}

// Aggregator is driven entirely by the simulation engine's calls. It is not
// safe for concurrent use.
type Aggregator struct {
	policy   ResetPolicy
	total    Snapshot
	baseline Snapshot
}

func New(policy ResetPolicy) *Aggregator {
	return &Aggregator{policy: policy}
}

func (a *Aggregator) Policy() ResetPolicy { return a.policy }

func (a *Aggregator) RecordShot() { a.total.Shots++ }

func (a *Aggregator) RecordKill(points int) {
	a.total.Kills++
	a.total.Score += points
}

func (a *Aggregator) RecordMistake() { a.total.Mistakes++ }

// Tick adds d to the elapsed time. Non-positive durations are ignored.
func (a *Aggregator) Tick(d time.Duration) {
	if d > 0 {
		a.total.Elapsed += d
	}
}

// Snapshot returns the session counters.
func (a *Aggregator) Snapshot() Snapshot { return a.total }

// BeginLevel marks a level boundary.
func (a *Aggregator) BeginLevel() {
	if a.policy == PerLevel {
		a.total = Snapshot{}
	}
	a.baseline = a.total
}

// Level returns the counters accumulated since the last BeginLevel.
func (a *Aggregator) Level() Snapshot {
	return a.total.sub(a.baseline)
}
