// Package progression derives a player's next difficulty, level and time
// budget from the performance of a finished level.
//
// Everything here is a pure function of its inputs.
package progression

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/tomz197/glitchhunter/internal/catalog"
)

// ErrInvalidPerformance is returned for negative performance values.
var ErrInvalidPerformance = errors.New("progression: invalid performance")

// Performance is what a player achieved in one level.
type Performance struct {
	BulletsUsed int
	BotsKilled  int
	TimeTaken   time.Duration
}

// Validate rejects tuples that cannot come from a real level.
func (p Performance) Validate() error {
	switch {
	case p.BulletsUsed < 0:
		return fmt.Errorf("%w: bullets used %d", ErrInvalidPerformance, p.BulletsUsed)
	case p.BotsKilled < 0:
		return fmt.Errorf("%w: bots killed %d", ErrInvalidPerformance, p.BotsKilled)
	case p.TimeTaken < 0:
		return fmt.Errorf("%w: time taken %v", ErrInvalidPerformance, p.TimeTaken)
	}
	return nil
}

// ExperienceEntry records one won level.
type ExperienceEntry struct {
	Difficulty catalog.Tier     `json:"difficulty"`
	Level      catalog.LevelRef `json:"level"`
}

// BestRun is the fewest bullets a player ever used on a level.
type BestRun struct {
	Bullets int
	Level   catalog.LevelRef
}

// Progression is the persisted state of a player.
type Progression struct {
	PlayerID          string
	CurrentDifficulty catalog.Tier
	CurrentLevel      catalog.LevelRef
	// TimeBudget is the allowance for the next attempt. Zero means the
	// level's default time.
	TimeBudget  time.Duration
	Experience  []ExperienceEntry // append-only, wins only
	BestRun     *BestRun
	LastSession catalog.LevelRef
}

// New returns the starting progression of a player at level.
func New(playerID string, level catalog.Level) Progression {
	return Progression{
		PlayerID:          playerID,
		CurrentDifficulty: level.Difficulty,
		CurrentLevel:      level.Ref(),
		TimeBudget:        level.DefaultTime,
		LastSession:       level.Ref(),
	}
}

// Clone returns a deep copy of p.
func (p Progression) Clone() Progression {
	p.Experience = slices.Clone(p.Experience)
	if p.BestRun != nil {
		br := *p.BestRun
		p.BestRun = &br
	}
	return p
}

// LastTier returns the difficulty of the most recently won level, or Easy
// when the player has not won any.
func (p Progression) LastTier() catalog.Tier {
	if len(p.Experience) == 0 {
		return catalog.Easy
	}
	return p.Experience[len(p.Experience)-1].Difficulty
}

// BudgetFor returns the time budget the player has for level.
func (p Progression) BudgetFor(level catalog.Level) time.Duration {
	if p.TimeBudget <= 0 {
		return level.DefaultTime
	}
	return p.TimeBudget
}
