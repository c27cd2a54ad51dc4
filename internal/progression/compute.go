package progression

import (
	"math"
	"time"

	"github.com/tomz197/glitchhunter/internal/catalog"
)

// Levels is the catalog view the engine needs.
type Levels interface {
	Lookup(ref catalog.LevelRef) (catalog.Level, bool)
	Floor(ref catalog.LevelRef) (catalog.Level, bool)
}

// Input is everything Compute depends on.
type Input struct {
	Level       catalog.Level
	Performance Performance
	Player      Progression
	Catalog     Levels
	// GameOver marks a level lost to a missed primary or too many mistakes.
	// It is scored as a loss whatever the performance says.
	GameOver bool
}

// Result is the new player state and how it was reached.
type Result struct {
	Progression    Progression
	Won            bool
	Plateau        bool // no higher level exists for the computed tier
	NextLevel      catalog.Level
	BestRunUpdated bool
}

// Time reduction factors for budgets above Easy.
const (
	mediumReduction = 0.85
	hardReduction   = 0.70
)

// transitions[last][candidate] is the tier a player moves to.
var transitions = [3][3]catalog.Tier{
	catalog.Easy:   {catalog.Easy, catalog.Medium, catalog.Medium},
	catalog.Medium: {catalog.Easy, catalog.Medium, catalog.Medium},
	catalog.Hard:   {catalog.Medium, catalog.Medium, catalog.Hard},
}

// Won reports whether perf clears level within budget.
func Won(level catalog.Level, perf Performance, budget time.Duration) bool {
	return perf.BotsKilled >= level.BotQuota && perf.TimeTaken <= budget
}

// CandidateTier rates a won level by how economically it was played. Time
// is judged against the level's default time, not the player's budget.
func CandidateTier(level catalog.Level, perf Performance) catalog.Tier {
	bullets := float64(perf.BulletsUsed)
	allowance := float64(level.BulletAllowance)
	switch {
	case bullets <= allowance/2 && perf.TimeTaken <= level.DefaultTime/2 && perf.BotsKilled == level.BotQuota:
		return catalog.Hard
	case bullets <= allowance*0.8 && perf.TimeTaken <= level.DefaultTime:
		return catalog.Medium
	}
	return catalog.Easy
}

// NextTier adjusts a candidate tier by the tier of the last won level.
func NextTier(last, candidate catalog.Tier) catalog.Tier {
	if !last.Valid() || !candidate.Valid() {
		return candidate
	}
	return transitions[last][candidate]
}

// NextTimeBudget is the allowance for next, rounded to whole seconds and
// never below one second.
func NextTimeBudget(tier catalog.Tier, next catalog.Level, perf Performance) time.Duration {
	if tier == catalog.Easy {
		return next.DefaultTime
	}
	factor := mediumReduction
	if tier == catalog.Hard {
		factor = hardReduction
	}
	base := next.DefaultTime.Seconds()
	bulletFactor := float64(perf.BulletsUsed) / float64(next.BulletAllowance)
	timeFactor := perf.TimeTaken.Seconds() / base
	adjusted := math.Round(base * factor * math.Min(bulletFactor, timeFactor))
	return time.Duration(max(1, adjusted)) * time.Second
}

// Compute derives the player's next state. It never modifies in.Player.
func Compute(in Input) (Result, error) {
	if err := in.Performance.Validate(); err != nil {
		return Result{}, err
	}
	perf := in.Performance
	cur := in.Level
	budget := in.Player.BudgetFor(cur)

	res := Result{
		Progression: in.Player.Clone(),
		Won:         !in.GameOver && Won(cur, perf, budget),
	}
	next := &res.Progression

	var tier catalog.Tier
	if res.Won {
		tier = NextTier(in.Player.LastTier(), CandidateTier(cur, perf))
		res.NextLevel, res.Plateau = advance(in.Catalog, cur, tier)
		next.Experience = append(next.Experience, ExperienceEntry{Difficulty: cur.Difficulty, Level: cur.Ref()})
	} else {
		tier = cur.Difficulty.StepDown()
		lvl, err := retry(in.Catalog, cur, tier)
		if err != nil {
			return Result{}, err
		}
		res.NextLevel = lvl
	}
	// The player's tier follows the level actually chosen, so a plateau on
	// the current level keeps its tier.
	tier = res.NextLevel.Difficulty

	next.CurrentDifficulty = tier
	next.CurrentLevel = res.NextLevel.Ref()
	next.LastSession = res.NextLevel.Ref()
	next.TimeBudget = NextTimeBudget(tier, res.NextLevel, perf)

	if in.Player.BestRun == nil || perf.BulletsUsed < in.Player.BestRun.Bullets {
		next.BestRun = &BestRun{Bullets: perf.BulletsUsed, Level: cur.Ref()}
		res.BestRunUpdated = true
	}
	return res, nil
}

// advance finds the level after cur under tier. Missing levels plateau on
// the same number under tier, then on cur itself.
func advance(levels Levels, cur catalog.Level, tier catalog.Tier) (catalog.Level, bool) {
	if l, ok := levels.Lookup(catalog.LevelRef{Number: cur.Number + 1, Difficulty: tier}); ok {
		return l, false
	}
	if l, ok := levels.Lookup(catalog.LevelRef{Number: cur.Number, Difficulty: tier}); ok {
		return l, true
	}
	return cur, true
}

// retry finds the level to repeat under the lowered tier: the same number
// if it exists, otherwise the highest lower-numbered level of that tier.
func retry(levels Levels, cur catalog.Level, tier catalog.Tier) (catalog.Level, error) {
	ref := catalog.LevelRef{Number: cur.Number, Difficulty: tier}
	if l, ok := levels.Lookup(ref); ok {
		return l, nil
	}
	if l, ok := levels.Floor(ref); ok {
		return l, nil
	}
	return catalog.Level{}, &catalog.ConfigurationError{Op: "retry", Ref: ref}
}
