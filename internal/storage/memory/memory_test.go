package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tomz197/glitchhunter/internal/catalog"
	"github.com/tomz197/glitchhunter/internal/progression"
	"github.com/tomz197/glitchhunter/internal/storage"
)

func TestProgressionRoundTripIsCopied(t *testing.T) {
	ctx := context.Background()
	s := New(catalog.MustDefault())

	_, err := s.LoadProgression(ctx, "alice")
	require.ErrorIs(t, err, storage.ErrNotFound)

	first, err := catalog.MustDefault().First(catalog.Easy)
	require.NoError(t, err)
	p := progression.New("alice", first)
	p.Experience = []progression.ExperienceEntry{{Difficulty: catalog.Easy, Level: first.Ref()}}
	p.BestRun = &progression.BestRun{Bullets: 4, Level: first.Ref()}
	require.NoError(t, s.SaveProgression(ctx, "alice", p))

	// Mutating the caller's copy must not reach the store.
	p.Experience[0].Difficulty = catalog.Hard
	p.BestRun.Bullets = 1

	got, err := s.LoadProgression(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, catalog.Easy, got.Experience[0].Difficulty)
	require.Equal(t, 4, got.BestRun.Bullets)
	require.Equal(t, "alice", got.PlayerID)
}

func TestCatalogAndSessions(t *testing.T) {
	ctx := context.Background()
	s := New(catalog.MustDefault())

	c, err := storage.LoadCatalog(ctx, s)
	require.NoError(t, err)
	require.Len(t, c.Levels(), 30)
	require.Len(t, c.Difficulties(), 3)

	require.NoError(t, s.SaveSession(ctx, storage.SessionRecord{PlayerID: "bob", Score: 300}))
	recs := s.Sessions()
	require.Len(t, recs, 1)
	require.False(t, recs[0].CreatedAt.IsZero())
}

func TestLeaderboardOrder(t *testing.T) {
	ctx := context.Background()
	s := New(catalog.MustDefault())
	now := time.Unix(1000, 0)
	s.now = func() time.Time { now = now.Add(time.Second); return now }

	save := func(id string, bullets int, budget time.Duration) {
		p := progression.Progression{PlayerID: id, TimeBudget: budget}
		if bullets >= 0 {
			p.BestRun = &progression.BestRun{Bullets: bullets}
		}
		require.NoError(t, s.SaveProgression(ctx, id, p))
	}
	save("slow", 3, 40*time.Second)
	save("fast", 3, 20*time.Second)
	save("sharp", 1, 60*time.Second)
	save("tie-late", 3, 20*time.Second)
	save("no-record", -1, 10*time.Second)

	got, err := s.Leaderboard(ctx, 10)
	require.NoError(t, err)
	ids := make([]string, len(got))
	for i, e := range got {
		ids[i] = e.PlayerID
	}
	require.Equal(t, []string{"sharp", "fast", "tie-late", "slow"}, ids)

	top, err := s.Leaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
}
