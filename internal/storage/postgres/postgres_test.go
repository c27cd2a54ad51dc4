package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/glitchhunter/internal/catalog"
	"github.com/tomz197/glitchhunter/internal/progression"
	"github.com/tomz197/glitchhunter/internal/storage"
)

// openTestStore connects to GLITCH_TEST_DATABASE_URL or skips.
func openTestStore(t *testing.T) *Store {
	dsn := os.Getenv("GLITCH_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("GLITCH_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.SeedCatalog(ctx, catalog.MustDefault()))
	return s
}

func TestCatalogRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Seeding twice must be harmless.
	require.NoError(t, s.SeedCatalog(ctx, catalog.MustDefault()))

	c, err := storage.LoadCatalog(ctx, s)
	require.NoError(t, err)
	require.Len(t, c.Difficulties(), 3)
	require.Len(t, c.Levels(), len(catalog.MustDefault().Levels()))

	l, err := c.Get(catalog.LevelRef{Number: 1, Difficulty: catalog.Easy})
	require.NoError(t, err)
	require.Equal(t, 60*time.Second, l.DefaultTime)
}

func TestProgressionRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	player := "pg-" + uuid.NewString()

	_, err := s.LoadProgression(ctx, player)
	require.ErrorIs(t, err, storage.ErrNotFound)

	first, err := catalog.MustDefault().First(catalog.Easy)
	require.NoError(t, err)
	p := progression.New(player, first)
	require.NoError(t, s.SaveProgression(ctx, player, p))

	got, err := s.LoadProgression(ctx, player)
	require.NoError(t, err)
	require.Equal(t, p.CurrentLevel, got.CurrentLevel)
	require.Nil(t, got.BestRun)
	require.Empty(t, got.Experience)

	p.CurrentDifficulty = catalog.Medium
	p.CurrentLevel = catalog.LevelRef{Number: 2, Difficulty: catalog.Medium}
	p.TimeBudget = 20 * time.Second
	p.Experience = append(p.Experience, progression.ExperienceEntry{Difficulty: catalog.Medium, Level: p.CurrentLevel})
	p.BestRun = &progression.BestRun{Bullets: 5, Level: first.Ref()}
	p.LastSession = first.Ref()
	require.NoError(t, s.SaveProgression(ctx, player, p))

	got, err = s.LoadProgression(ctx, player)
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestLeaderboardAndSessions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	player := "pg-" + uuid.NewString()

	first, err := catalog.MustDefault().First(catalog.Easy)
	require.NoError(t, err)
	p := progression.New(player, first)
	p.BestRun = &progression.BestRun{Bullets: 0, Level: first.Ref()}
	require.NoError(t, s.SaveProgression(ctx, player, p))

	top, err := s.Leaderboard(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, 0, top[0].LeastBullets)

	require.NoError(t, s.SaveSession(ctx, storage.SessionRecord{
		PlayerID:     player,
		Score:        500,
		LevelReached: first.Ref(),
		Kills:        5,
		Shots:        6,
		Accuracy:     83,
		TimePlayed:   42 * time.Second,
		Finished:     true,
	}))
}
