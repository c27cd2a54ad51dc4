// Package postgres is a storage.Gateway backed by PostgreSQL.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomz197/glitchhunter/internal/catalog"
	"github.com/tomz197/glitchhunter/internal/progression"
	"github.com/tomz197/glitchhunter/internal/storage"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *pgxpool.Pool
}

var _ storage.Gateway = (*Store)(nil)

// Open connects to the database at dsn.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Store{db: pool}, nil
}

func (s *Store) Close() {
	s.db.Close()
}

// Migrate creates any missing tables.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

// SeedCatalog upserts every difficulty and level of c.
func (s *Store) SeedCatalog(ctx context.Context, c *catalog.Catalog) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, d := range c.Difficulties() {
			batch.Queue(`INSERT INTO difficulties (id, name) VALUES ($1, $2)
				ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
				d.ID, d.Tier.String())
		}
		for _, l := range c.Levels() {
			batch.Queue(`INSERT INTO levels (number, difficulty, bots, bullets, default_time_seconds)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (number, difficulty) DO UPDATE
				SET bots = EXCLUDED.bots, bullets = EXCLUDED.bullets, default_time_seconds = EXCLUDED.default_time_seconds`,
				l.Number, l.Difficulty.String(), l.BotQuota, l.BulletAllowance, seconds(l.DefaultTime))
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("postgres: seed catalog: %w", err)
		}
		return nil
	})
}

func (s *Store) LoadProgression(ctx context.Context, playerID string) (progression.Progression, error) {
	var (
		p                      progression.Progression
		curTier, lastTier      string
		budget                 int
		experience             []byte
		bestBullets, bestLevel *int
		bestTier               *string
		curLevel, lastLevel    int
	)
	err := s.db.QueryRow(ctx, `
		SELECT current_difficulty, current_level, time_budget_seconds, experience,
		       least_bullets, least_bullets_level, least_bullets_difficulty,
		       last_session_level, last_session_difficulty
		FROM progressions WHERE player_id = $1`, playerID,
	).Scan(&curTier, &curLevel, &budget, &experience, &bestBullets, &bestLevel, &bestTier, &lastLevel, &lastTier)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, storage.ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("postgres: load progression %s: %w", playerID, err)
	}

	p.PlayerID = playerID
	if p.CurrentDifficulty, err = catalog.ParseTier(curTier); err != nil {
		return p, err
	}
	p.CurrentLevel = catalog.LevelRef{Number: curLevel, Difficulty: p.CurrentDifficulty}
	p.TimeBudget = time.Duration(budget) * time.Second
	if err := json.Unmarshal(experience, &p.Experience); err != nil {
		return p, fmt.Errorf("postgres: decode experience of %s: %w", playerID, err)
	}
	lt, err := catalog.ParseTier(lastTier)
	if err != nil {
		return p, err
	}
	p.LastSession = catalog.LevelRef{Number: lastLevel, Difficulty: lt}
	if bestBullets != nil && bestLevel != nil && bestTier != nil {
		bt, err := catalog.ParseTier(*bestTier)
		if err != nil {
			return p, err
		}
		p.BestRun = &progression.BestRun{Bullets: *bestBullets, Level: catalog.LevelRef{Number: *bestLevel, Difficulty: bt}}
	}
	return p, nil
}

// SaveProgression upserts the whole snapshot in one transaction.
func (s *Store) SaveProgression(ctx context.Context, playerID string, p progression.Progression) error {
	experience, err := json.Marshal(nonNil(p.Experience))
	if err != nil {
		return fmt.Errorf("postgres: encode experience: %w", err)
	}
	var bestBullets, bestLevel *int
	var bestTier *string
	if p.BestRun != nil {
		b, l, t := p.BestRun.Bullets, p.BestRun.Level.Number, p.BestRun.Level.Difficulty.String()
		bestBullets, bestLevel, bestTier = &b, &l, &t
	}

	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO progressions (
				player_id, current_difficulty, current_level, time_budget_seconds, experience,
				least_bullets, least_bullets_level, least_bullets_difficulty,
				last_session_level, last_session_difficulty, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
			ON CONFLICT (player_id) DO UPDATE SET
				current_difficulty = EXCLUDED.current_difficulty,
				current_level = EXCLUDED.current_level,
				time_budget_seconds = EXCLUDED.time_budget_seconds,
				experience = EXCLUDED.experience,
				least_bullets = EXCLUDED.least_bullets,
				least_bullets_level = EXCLUDED.least_bullets_level,
				least_bullets_difficulty = EXCLUDED.least_bullets_difficulty,
				last_session_level = EXCLUDED.last_session_level,
				last_session_difficulty = EXCLUDED.last_session_difficulty,
				updated_at = now()`,
			playerID, p.CurrentDifficulty.String(), p.CurrentLevel.Number, seconds(p.TimeBudget), experience,
			bestBullets, bestLevel, bestTier,
			p.LastSession.Number, p.LastSession.Difficulty.String(),
		)
		if err != nil {
			return fmt.Errorf("postgres: save progression %s: %w", playerID, err)
		}
		return nil
	})
}

func (s *Store) LoadLevelCatalog(ctx context.Context) ([]catalog.Level, error) {
	rows, err := s.db.Query(ctx, `
		SELECT number, difficulty, bots, bullets, default_time_seconds
		FROM levels ORDER BY difficulty, number`)
	if err != nil {
		return nil, fmt.Errorf("postgres: load levels: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Level, error) {
		var (
			l       catalog.Level
			tier    string
			seconds int
		)
		if err := row.Scan(&l.Number, &tier, &l.BotQuota, &l.BulletAllowance, &seconds); err != nil {
			return l, err
		}
		l.DefaultTime = time.Duration(seconds) * time.Second
		var err error
		l.Difficulty, err = catalog.ParseTier(tier)
		return l, err
	})
}

func (s *Store) LoadDifficultyCatalog(ctx context.Context) ([]catalog.Difficulty, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name FROM difficulties ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: load difficulties: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Difficulty, error) {
		var (
			d    catalog.Difficulty
			name string
		)
		if err := row.Scan(&d.ID, &name); err != nil {
			return d, err
		}
		var err error
		d.Tier, err = catalog.ParseTier(name)
		return d, err
	})
}

func (s *Store) SaveSession(ctx context.Context, rec storage.SessionRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO sessions (id, player_id, score, level_reached, difficulty_reached,
			kills, shots, mistakes, accuracy, seconds_played, finished, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID, rec.PlayerID, rec.Score, rec.LevelReached.Number, rec.LevelReached.Difficulty.String(),
		rec.Kills, rec.Shots, rec.Mistakes, rec.Accuracy, seconds(rec.TimePlayed), rec.Finished, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: save session: %w", err)
	}
	return nil
}

func (s *Store) Leaderboard(ctx context.Context, limit int) ([]storage.LeaderboardEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT player_id, least_bullets, least_bullets_level, least_bullets_difficulty,
		       time_budget_seconds, updated_at
		FROM progressions
		WHERE least_bullets IS NOT NULL
		ORDER BY least_bullets, time_budget_seconds, updated_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: leaderboard: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.LeaderboardEntry, error) {
		var (
			e      storage.LeaderboardEntry
			tier   string
			budget int
		)
		if err := row.Scan(&e.PlayerID, &e.LeastBullets, &e.Level.Number, &tier, &budget, &e.UpdatedAt); err != nil {
			return e, err
		}
		e.TimeBudget = time.Duration(budget) * time.Second
		var err error
		e.Level.Difficulty, err = catalog.ParseTier(tier)
		return e, err
	})
}

func seconds(d time.Duration) int {
	return int(d / time.Second)
}

func nonNil(e []progression.ExperienceEntry) []progression.ExperienceEntry {
	if e == nil {
		return []progression.ExperienceEntry{}
	}
	return e
}
