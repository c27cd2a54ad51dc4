// Package storage defines the persistence gateway the game core talks to.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tomz197/glitchhunter/internal/catalog"
	"github.com/tomz197/glitchhunter/internal/progression"
)

//go:generate go tool mockgen -destination=./mocks/mock_gateway.go -package=mocks . Gateway

// ErrNotFound is returned when a player has no stored progression.
var ErrNotFound = errors.New("storage: not found")

// Gateway loads and stores player progression and the level catalog.
// SaveProgression must write the whole snapshot atomically.
type Gateway interface {
	LoadProgression(ctx context.Context, playerID string) (progression.Progression, error)
	SaveProgression(ctx context.Context, playerID string, p progression.Progression) error
	LoadLevelCatalog(ctx context.Context) ([]catalog.Level, error)
	LoadDifficultyCatalog(ctx context.Context) ([]catalog.Difficulty, error)
	SaveSession(ctx context.Context, rec SessionRecord) error
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// SessionRecord is the checkpoint written when a player quits.
type SessionRecord struct {
	ID           uuid.UUID
	PlayerID     string
	Score        int
	LevelReached catalog.LevelRef
	Kills        int
	Shots        int
	Mistakes     int
	Accuracy     int // percent
	TimePlayed   time.Duration
	Finished     bool
	CreatedAt    time.Time
}

// LeaderboardEntry ranks a player by their best run.
type LeaderboardEntry struct {
	PlayerID     string
	LeastBullets int
	Level        catalog.LevelRef
	TimeBudget   time.Duration
	UpdatedAt    time.Time
}

// LoadCatalog builds a catalog from the gateway's level and difficulty data.
func LoadCatalog(ctx context.Context, g Gateway) (*catalog.Catalog, error) {
	diffs, err := g.LoadDifficultyCatalog(ctx)
	if err != nil {
		return nil, err
	}
	levels, err := g.LoadLevelCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.New(diffs, levels)
}

// Less orders leaderboard entries: fewest bullets, then smallest time
// budget, then the oldest update.
func Less(a, b LeaderboardEntry) bool {
	if a.LeastBullets != b.LeastBullets {
		return a.LeastBullets < b.LeastBullets
	}
	if a.TimeBudget != b.TimeBudget {
		return a.TimeBudget < b.TimeBudget
	}
	return a.UpdatedAt.Before(b.UpdatedAt)
}
