// Package catalog holds the immutable level and difficulty data the game is
// played against.
package catalog

import (
	"errors"
	"fmt"
	"time"
)

// ErrLevelNotFound is returned when no level exists for a (number, tier) pair.
var ErrLevelNotFound = errors.New("catalog: level not found")

// ConfigurationError reports a level lookup that the catalog cannot satisfy.
type ConfigurationError struct {
	Op  string
	Ref LevelRef
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("catalog: %s: no level %s", e.Op, e.Ref)
}

// Unwrap lets errors.Is match ErrLevelNotFound.
func (e *ConfigurationError) Unwrap() error {
	return ErrLevelNotFound
}

// LevelRef uniquely identifies a level definition.
type LevelRef struct {
	Number     int  `json:"level"`
	Difficulty Tier `json:"difficulty"`
}

func (r LevelRef) String() string {
	return fmt.Sprintf("%d/%s", r.Number, r.Difficulty)
}

// Difficulty is an entry of the difficulty catalog.
type Difficulty struct {
	ID   int
	Tier Tier
}

// Level is an immutable level definition.
type Level struct {
	Number          int
	BotQuota        int
	BulletAllowance int
	Difficulty      Tier
	DefaultTime     time.Duration
}

// Ref returns the level's catalog key.
func (l Level) Ref() LevelRef {
	return LevelRef{Number: l.Number, Difficulty: l.Difficulty}
}

// Validate checks the invariants every playable level must satisfy.
func (l Level) Validate() error {
	switch {
	case l.Number < 1:
		return fmt.Errorf("catalog: level %s: number must be >= 1", l.Ref())
	case !l.Difficulty.Valid():
		return fmt.Errorf("catalog: level %d: invalid difficulty %d", l.Number, int(l.Difficulty))
	case l.BotQuota < 0:
		return fmt.Errorf("catalog: level %s: negative bot quota", l.Ref())
	case l.BulletAllowance <= 0:
		return fmt.Errorf("catalog: level %s: bullet allowance must be positive", l.Ref())
	case l.DefaultTime < time.Second:
		return fmt.Errorf("catalog: level %s: default time must be at least 1s", l.Ref())
	}
	return nil
}
