package catalog

import (
	"fmt"
	"slices"
)

// Catalog is a validated, read-only index of levels and difficulties.
type Catalog struct {
	difficulties []Difficulty
	levels       []Level
	byRef        map[LevelRef]Level
	byTier       map[Tier][]Level // sorted by number
}

// New validates the given definitions and builds a Catalog.
func New(difficulties []Difficulty, levels []Level) (*Catalog, error) {
	c := &Catalog{
		byRef:  make(map[LevelRef]Level, len(levels)),
		byTier: make(map[Tier][]Level),
	}

	seenTier := make(map[Tier]bool)
	seenID := make(map[int]bool)
	for _, d := range difficulties {
		if !d.Tier.Valid() {
			return nil, fmt.Errorf("catalog: difficulty %d: invalid tier %d", d.ID, int(d.Tier))
		}
		if seenTier[d.Tier] {
			return nil, fmt.Errorf("catalog: duplicate difficulty %s", d.Tier)
		}
		if seenID[d.ID] {
			return nil, fmt.Errorf("catalog: duplicate difficulty id %d", d.ID)
		}
		seenTier[d.Tier] = true
		seenID[d.ID] = true
		c.difficulties = append(c.difficulties, d)
	}
	slices.SortFunc(c.difficulties, func(a, b Difficulty) int { return int(a.Tier) - int(b.Tier) })

	for _, l := range levels {
		if err := l.Validate(); err != nil {
			return nil, err
		}
		if len(difficulties) > 0 && !seenTier[l.Difficulty] {
			return nil, fmt.Errorf("catalog: level %s: difficulty not in catalog", l.Ref())
		}
		if _, dup := c.byRef[l.Ref()]; dup {
			return nil, fmt.Errorf("catalog: duplicate level %s", l.Ref())
		}
		c.byRef[l.Ref()] = l
		c.byTier[l.Difficulty] = append(c.byTier[l.Difficulty], l)
		c.levels = append(c.levels, l)
	}
	for _, ls := range c.byTier {
		slices.SortFunc(ls, func(a, b Level) int { return a.Number - b.Number })
	}
	slices.SortFunc(c.levels, func(a, b Level) int {
		if a.Difficulty != b.Difficulty {
			return int(a.Difficulty) - int(b.Difficulty)
		}
		return a.Number - b.Number
	})
	return c, nil
}

// Lookup returns the level for ref, if any.
func (c *Catalog) Lookup(ref LevelRef) (Level, bool) {
	l, ok := c.byRef[ref]
	return l, ok
}

// Get is Lookup that fails with a *ConfigurationError.
func (c *Catalog) Get(ref LevelRef) (Level, error) {
	if l, ok := c.byRef[ref]; ok {
		return l, nil
	}
	return Level{}, &ConfigurationError{Op: "get", Ref: ref}
}

// Floor returns the highest-numbered level under ref.Difficulty whose number
// does not exceed ref.Number.
func (c *Catalog) Floor(ref LevelRef) (Level, bool) {
	ls := c.byTier[ref.Difficulty]
	for i := len(ls) - 1; i >= 0; i-- {
		if ls[i].Number <= ref.Number {
			return ls[i], true
		}
	}
	return Level{}, false
}

// First returns the lowest-numbered level of a tier.
func (c *Catalog) First(tier Tier) (Level, error) {
	ls := c.byTier[tier]
	if len(ls) == 0 {
		return Level{}, &ConfigurationError{Op: "first", Ref: LevelRef{Number: 1, Difficulty: tier}}
	}
	return ls[0], nil
}

// Levels returns every level ordered by tier then number.
func (c *Catalog) Levels() []Level {
	return slices.Clone(c.levels)
}

// Difficulties returns the difficulty catalog in tier order.
func (c *Catalog) Difficulties() []Difficulty {
	return slices.Clone(c.difficulties)
}

// DifficultyID returns the numeric id of a tier, or 0 when the catalog has none.
func (c *Catalog) DifficultyID(t Tier) int {
	for _, d := range c.difficulties {
		if d.Tier == t {
			return d.ID
		}
	}
	return 0
}
