// Package session ties one player's engine, stats and progression to the
// persistence gateway. Hosts open a Session per connected player and drive
// it from their frame loop.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tomz197/glitchhunter/internal/audio"
	"github.com/tomz197/glitchhunter/internal/catalog"
	"github.com/tomz197/glitchhunter/internal/loop/config"
	"github.com/tomz197/glitchhunter/internal/loop/engine"
	"github.com/tomz197/glitchhunter/internal/progression"
	"github.com/tomz197/glitchhunter/internal/stats"
	"github.com/tomz197/glitchhunter/internal/storage"
)

// ErrSessionActive is returned by Open when the player is already playing.
var ErrSessionActive = errors.New("session: player already has an active session")

// ErrShutdown is returned by Open once the manager is shutting down.
var ErrShutdown = errors.New("session: manager is shutting down")

// PersistenceError reports a failed load or save. Play continues on the
// in-memory snapshot.
type PersistenceError struct {
	Op       string
	PlayerID string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("session: %s for %s: %v", e.Op, e.PlayerID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Options configures every session a Manager opens.
type Options struct {
	Engine      engine.Config
	Reset       stats.ResetPolicy
	SaveTimeout time.Duration
	Logger      *log.Logger
}

// Manager is the registry of live sessions, one per player.
type Manager struct {
	gateway storage.Gateway
	levels  *catalog.Store
	opts    Options
	log     *log.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	closing  bool
}

// NewManager returns a manager that reads levels from levels and persists
// through g.
func NewManager(g storage.Gateway, levels *catalog.Store, opts Options) *Manager {
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = config.SaveTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Manager{
		gateway:  g,
		levels:   levels,
		opts:     opts,
		log:      opts.Logger,
		sessions: make(map[string]*Session),
	}
}

// Open starts a session for playerID. A player without stored progression
// starts at the first easy level. Failing to load a stored progression is
// not fatal: the session runs on the starting snapshot, reports the error
// on Warnings and never overwrites the stored progression.
//
// The returned session must be closed.
func (m *Manager) Open(ctx context.Context, playerID string, notifier audio.Notifier) (*Session, error) {
	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		return nil, ErrShutdown
	}
	if _, ok := m.sessions[playerID]; ok {
		m.mu.Unlock()
		return nil, ErrSessionActive
	}
	// Reserve the slot while loading.
	m.sessions[playerID] = nil
	m.mu.Unlock()

	s, err := m.open(ctx, playerID, notifier)
	m.mu.Lock()
	if err != nil {
		delete(m.sessions, playerID)
	} else {
		m.sessions[playerID] = s
	}
	m.mu.Unlock()
	return s, err
}

func (m *Manager) open(ctx context.Context, playerID string, notifier audio.Notifier) (*Session, error) {
	levels := m.levels.Load()
	logger := m.log.With("player", playerID)

	var loadErr error
	p, err := m.gateway.LoadProgression(ctx, playerID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		p, err = starting(levels, playerID)
		if err != nil {
			return nil, err
		}
		logger.Info("new player")
	case err != nil:
		loadErr = &PersistenceError{Op: "load progression", PlayerID: playerID, Err: err}
		p, err = starting(levels, playerID)
		if err != nil {
			return nil, err
		}
		logger.Warn("playing without stored progression", "err", loadErr)
	}

	level, err := levels.Get(p.CurrentLevel)
	if err != nil {
		return nil, err
	}

	agg := stats.New(m.opts.Reset)
	s := &Session{
		id:          uuid.New(),
		manager:     m,
		playerID:    playerID,
		log:         logger,
		gateway:     m.gateway,
		levels:      m.levels,
		agg:         agg,
		engine:      engine.New(m.opts.Engine, agg, notifier),
		saveTimeout: m.opts.SaveTimeout,
		progression: p,
		level:       level,
		detached:    loadErr != nil,
		saves:       make(chan saveJob, config.SaveQueueSize),
		warnings:    make(chan error, config.SaveQueueSize),
		shutdown:    make(chan struct{}),
		saverDone:   make(chan struct{}),
	}
	if loadErr != nil {
		s.warn(loadErr)
	}
	go s.saver()
	logger.Info("session opened", "level", level.Ref())
	return s, nil
}

func starting(levels *catalog.Catalog, playerID string) (progression.Progression, error) {
	first, err := levels.First(catalog.Easy)
	if err != nil {
		return progression.Progression{}, err
	}
	return progression.New(playerID, first), nil
}

// Active returns the number of live sessions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Leaderboard returns the top limit best runs.
func (m *Manager) Leaderboard(ctx context.Context, limit int) ([]storage.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = config.LeaderboardSize
	}
	return m.gateway.Leaderboard(ctx, limit)
}

// Shutdown stops new sessions, signals every live one through Done and
// waits up to timeout for them to close.
func (m *Manager) Shutdown(timeout time.Duration) {
	m.mu.Lock()
	m.closing = true
	for _, s := range m.sessions {
		if s != nil {
			s.signalShutdown()
		}
	}
	m.mu.Unlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		if m.Active() == 0 {
			return
		}
		select {
		case <-deadline:
			m.log.Warn("shutdown timed out", "sessions", m.Active())
			return
		case <-ticker.C:
		}
	}
}

func (m *Manager) release(playerID string) {
	m.mu.Lock()
	delete(m.sessions, playerID)
	m.mu.Unlock()
}
