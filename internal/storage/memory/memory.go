// Package memory is an in-process storage.Gateway.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/tomz197/glitchhunter/internal/catalog"
	"github.com/tomz197/glitchhunter/internal/progression"
	"github.com/tomz197/glitchhunter/internal/storage"
)

type record struct {
	progression progression.Progression
	updatedAt   time.Time
}

// Store keeps everything in maps guarded by a single lock. Snapshots are
// copied in and out so callers never share state with the store.
type Store struct {
	mu       sync.RWMutex
	catalog  *catalog.Catalog
	players  map[string]record
	sessions []storage.SessionRecord
	now      func() time.Time
}

var _ storage.Gateway = (*Store)(nil)

// New returns a store serving c as its level catalog.
func New(c *catalog.Catalog) *Store {
	return &Store{
		catalog: c,
		players: make(map[string]record),
		now:     time.Now,
	}
}

// SetCatalog replaces the served catalog.
func (s *Store) SetCatalog(c *catalog.Catalog) {
	s.mu.Lock()
	s.catalog = c
	s.mu.Unlock()
}

func (s *Store) LoadProgression(_ context.Context, playerID string) (progression.Progression, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.players[playerID]
	if !ok {
		return progression.Progression{}, storage.ErrNotFound
	}
	return r.progression.Clone(), nil
}

func (s *Store) SaveProgression(_ context.Context, playerID string, p progression.Progression) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p = p.Clone()
	p.PlayerID = playerID
	s.players[playerID] = record{progression: p, updatedAt: s.now()}
	return nil
}

func (s *Store) LoadLevelCatalog(context.Context) ([]catalog.Level, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Levels(), nil
}

func (s *Store) LoadDifficultyCatalog(context.Context) ([]catalog.Difficulty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Difficulties(), nil
}

func (s *Store) SaveSession(_ context.Context, rec storage.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	s.sessions = append(s.sessions, rec)
	return nil
}

// Sessions returns every saved session record, oldest first.
func (s *Store) Sessions() []storage.SessionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sessions)
}

func (s *Store) Leaderboard(_ context.Context, limit int) ([]storage.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]storage.LeaderboardEntry, 0, len(s.players))
	for id, r := range s.players {
		if r.progression.BestRun == nil {
			continue
		}
		entries = append(entries, storage.LeaderboardEntry{
			PlayerID:     id,
			LeastBullets: r.progression.BestRun.Bullets,
			Level:        r.progression.BestRun.Level,
			TimeBudget:   r.progression.TimeBudget,
			UpdatedAt:    r.updatedAt,
		})
	}
	slices.SortFunc(entries, func(a, b storage.LeaderboardEntry) int {
		switch {
		case storage.Less(a, b):
			return -1
		case storage.Less(b, a):
			return 1
		}
		return 0
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
