package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tomz197/glitchhunter/internal/catalog"
	"github.com/tomz197/glitchhunter/internal/loop/engine"
	"github.com/tomz197/glitchhunter/internal/progression"
	"github.com/tomz197/glitchhunter/internal/stats"
	"github.com/tomz197/glitchhunter/internal/storage"
)

var errSaveQueueFull = errors.New("save queue full")

type saveJob struct {
	progression *progression.Progression
	record      *storage.SessionRecord
	done        chan error
}

// Session is one player's game. Start, Continue, Tick, Quit and Close must
// be called from the host's frame goroutine; Queue and the accessors are
// safe from any goroutine.
type Session struct {
	id       uuid.UUID
	manager  *Manager
	playerID string
	log      *log.Logger
	gateway  storage.Gateway
	levels   *catalog.Store
	agg      *stats.Aggregator
	engine   *engine.Engine

	saveTimeout time.Duration
	// detached sessions never write progression: the stored one could
	// not be read and must not be clobbered.
	detached bool

	mu          sync.Mutex
	progression progression.Progression
	level       catalog.Level
	result      *progression.Result

	saves     chan saveJob
	warnings  chan error
	shutdown  chan struct{}
	saverDone chan struct{}

	quit      bool
	closeOnce sync.Once
	downOnce  sync.Once
}

// ID identifies the session in saved records.
func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) PlayerID() string { return s.playerID }

// Progression returns a copy of the adopted progression snapshot.
func (s *Session) Progression() progression.Progression {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progression.Clone()
}

// Level returns the level being played or last played.
func (s *Session) Level() catalog.Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// Result returns the outcome of the last finished level, if the player has
// not continued since.
func (s *Session) Result() (progression.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return progression.Result{}, false
	}
	return *s.result, true
}

// Warnings delivers *PersistenceError values. Warnings that arrive while
// the channel is full are dropped.
func (s *Session) Warnings() <-chan error { return s.warnings }

// Done is closed when the manager shuts down.
func (s *Session) Done() <-chan struct{} { return s.shutdown }

// Start begins the level the progression points at, looked up in the
// current catalog.
func (s *Session) Start() error {
	s.mu.Lock()
	p := s.progression
	s.mu.Unlock()

	level, err := s.levels.Load().Get(p.CurrentLevel)
	if err != nil {
		return err
	}
	if err := s.engine.StartLevel(level, p.BudgetFor(level)); err != nil {
		return err
	}

	s.mu.Lock()
	s.level = level
	s.result = nil
	s.mu.Unlock()
	s.log.Info("level started", "level", level.Ref(), "budget", p.BudgetFor(level))
	return nil
}

// Continue starts the level chosen by the last result.
func (s *Session) Continue() error {
	return s.Start()
}

// Queue buffers an input for the next tick.
func (s *Session) Queue(ev engine.Event) {
	s.engine.Queue(ev)
}

// Tick advances the level. On the tick that ends it, the level is scored,
// the new progression is adopted and its save is queued. The error is
// non-nil only when the catalog cannot supply the next level.
func (s *Session) Tick(delta time.Duration, paused bool) (engine.Frame, error) {
	f := s.engine.Tick(delta, paused)
	if f.Signal == engine.SignalNone {
		return f, nil
	}
	return f, s.finishLevel(f)
}

func (s *Session) finishLevel(f engine.Frame) error {
	s.mu.Lock()
	in := progression.Input{
		Level: s.level,
		Performance: progression.Performance{
			BulletsUsed: f.LevelStats.Shots,
			BotsKilled:  f.LevelStats.Kills,
			TimeTaken:   f.LevelStats.Elapsed,
		},
		Player:   s.progression,
		Catalog:  s.levels.Load(),
		GameOver: f.Signal == engine.SignalGameOver,
	}
	res, err := progression.Compute(in)
	if err != nil {
		s.mu.Unlock()
		s.log.Error("scoring level", "level", in.Level.Ref(), "err", err)
		return err
	}
	s.progression = res.Progression
	s.result = &res
	snapshot := res.Progression.Clone()
	s.mu.Unlock()

	s.log.Info("level ended",
		"level", in.Level.Ref(),
		"outcome", f.Outcome,
		"won", res.Won,
		"next", res.NextLevel.Ref(),
		"budget", res.Progression.TimeBudget,
		"plateau", res.Plateau,
	)
	s.enqueue(saveJob{progression: &snapshot})
	return nil
}

// enqueue hands a job to the saver without blocking.
func (s *Session) enqueue(job saveJob) {
	select {
	case s.saves <- job:
	default:
		s.warn(&PersistenceError{Op: "save progression", PlayerID: s.playerID, Err: errSaveQueueFull})
	}
}

// Quit writes a record of the session so far. It does not score the
// level in progress.
func (s *Session) Quit(ctx context.Context) error {
	if s.quit {
		return nil
	}
	s.quit = true
	return s.writeRecord(ctx, true)
}

func (s *Session) writeRecord(ctx context.Context, finished bool) error {
	snap := s.agg.Snapshot()
	rec := storage.SessionRecord{
		ID:           s.ID(),
		PlayerID:     s.playerID,
		Score:        snap.Score,
		LevelReached: s.Level().Ref(),
		Kills:        snap.Kills,
		Shots:        snap.Shots,
		Mistakes:     snap.Mistakes,
		Accuracy:     snap.Accuracy(),
		TimePlayed:   snap.Elapsed,
		Finished:     finished,
	}
	job := saveJob{record: &rec, done: make(chan error, 1)}
	select {
	case s.saves <- job:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-job.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes pending saves and frees the player's slot. A session closed
// without Quit still records what was played.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if !s.quit && s.agg.Snapshot().Elapsed > 0 {
			ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
			if err := s.writeRecord(ctx, false); err != nil {
				s.log.Warn("recording abandoned session", "err", err)
			}
			cancel()
		}
		close(s.saves)
		<-s.saverDone
		s.manager.release(s.playerID)
		s.log.Info("session closed", "score", s.agg.Snapshot().Score)
	})
}

func (s *Session) signalShutdown() {
	s.downOnce.Do(func() { close(s.shutdown) })
}

// saver writes jobs one at a time in the order they were queued.
func (s *Session) saver() {
	defer close(s.saverDone)
	for job := range s.saves {
		err := s.persist(job)
		if err != nil {
			s.log.Warn("persistence failed", "err", err)
			s.warn(err)
		}
		if job.done != nil {
			job.done <- err
		}
	}
}

func (s *Session) persist(job saveJob) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()

	if job.progression != nil && !s.detached {
		if err := s.gateway.SaveProgression(ctx, s.playerID, *job.progression); err != nil {
			return &PersistenceError{Op: "save progression", PlayerID: s.playerID, Err: err}
		}
	}
	if job.record != nil {
		if err := s.gateway.SaveSession(ctx, *job.record); err != nil {
			return &PersistenceError{Op: "save session", PlayerID: s.playerID, Err: err}
		}
	}
	return nil
}

func (s *Session) warn(err error) {
	select {
	case s.warnings <- err:
	default:
	}
}
