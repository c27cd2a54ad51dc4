package client

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/glitchhunter/internal/catalog"
	"github.com/tomz197/glitchhunter/internal/input"
	"github.com/tomz197/glitchhunter/internal/loop/engine"
	"github.com/tomz197/glitchhunter/internal/session"
	"github.com/tomz197/glitchhunter/internal/storage/memory"
)

type harness struct {
	client  *Client
	session *session.Session
	manager *session.Manager
	store   *memory.Store
	out     *bytes.Buffer
	clock   time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	var levels []catalog.Level
	for _, tier := range catalog.Tiers {
		for n := 1; n <= 2; n++ {
			levels = append(levels, catalog.Level{
				Number:          n,
				BulletAllowance: 10,
				Difficulty:      tier,
				DefaultTime:     time.Second,
			})
		}
	}
	c, err := catalog.New(nil, levels)
	require.NoError(t, err)

	cfg := engine.DefaultConfig()
	cfg.SpawnInterval = time.Hour
	cfg.Seed = 3
	store := memory.New(c)
	m := session.NewManager(store, catalog.NewStore(c), session.Options{
		Engine:      cfg,
		SaveTimeout: time.Second,
		Logger:      log.New(io.Discard),
	})
	s, err := m.Open(context.Background(), "alice", nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	h := &harness{session: s, manager: m, store: store, out: &bytes.Buffer{}, clock: time.Unix(1000, 0)}
	h.client = NewClient(s, nil, h.out, ClientOptions{
		TermSizeFunc: func() (int, int, error) { return 120, 45, nil },
		Username:     "alice",
	})
	h.client.now = func() time.Time { return h.clock }
	h.client.lastInput = h.clock
	return h
}

func (h *harness) step(d time.Duration, keys ...input.Key) {
	h.clock = h.clock.Add(d)
	h.client.state.Keys = append(h.client.state.Keys[:0], keys...)
	h.client.update(context.Background(), d)
}

func TestPlayThroughLevelAndContinue(t *testing.T) {
	h := newHarness(t)
	st := h.client.state

	h.step(0, input.KeyEnter)
	require.Equal(t, GameStatePlaying, st.GameState)

	h.step(2 * time.Second)
	require.Equal(t, GameStateSummary, st.GameState)
	require.True(t, st.Result.Won)
	require.Equal(t, 2, st.Result.NextLevel.Number)

	h.step(0, input.KeyEnter)
	require.Equal(t, GameStatePlaying, st.GameState)
	require.Equal(t, 2, h.session.Level().Number)

	h.step(0, input.KeyQuit)
	require.False(t, st.Running)
	recs := h.store.Sessions()
	require.Len(t, recs, 1)
	require.True(t, recs[0].Finished)
	require.Equal(t, "alice", recs[0].PlayerID)
}

func TestPauseStopsTheClock(t *testing.T) {
	h := newHarness(t)
	st := h.client.state

	h.step(0, input.KeyEnter)
	h.step(0, input.KeyPause)
	require.True(t, st.Paused)

	h.step(10 * time.Second)
	require.Equal(t, GameStatePlaying, st.GameState)
	require.Equal(t, time.Second, st.Frame.TimeRemaining)

	h.step(0, input.KeyEscape)
	require.False(t, st.Paused)
}

func TestInactivityWarnsThenDisconnects(t *testing.T) {
	h := newHarness(t)
	st := h.client.state

	h.step(95 * time.Second)
	require.True(t, st.isInactive)
	require.True(t, st.Running)

	h.step(0, input.KeyOther)
	require.False(t, st.isInactive)

	h.step(121 * time.Second)
	require.False(t, st.Running)
}

func TestStartScreenRendersControls(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.client.drawFrame())
	out := h.out.String()
	require.Contains(t, out, "Controls")
	require.Contains(t, out, "alice  |  next: level 1/easy")

	h.out.Reset()
	h.step(0, input.KeyEnter)
	require.Equal(t, 1, h.client.state.Frame.Level.Number, "HUD shows the started level before the first tick")
	require.NoError(t, h.client.drawFrame())
	require.Contains(t, h.out.String(), "\033[H\033[2J", "screen change clears the terminal")
	require.Contains(t, h.out.String(), "Lv 1/easy")
}

func TestShutdownShowsNoticeAndLeaves(t *testing.T) {
	h := newHarness(t)
	st := h.client.state

	done := make(chan struct{})
	go func() {
		h.manager.Shutdown(5 * time.Second)
		close(done)
	}()

	require.Eventually(t, func() bool {
		h.step(0)
		return st.GameState == GameStateShutdown
	}, time.Second, 10*time.Millisecond)

	h.step(0, input.KeyQuit)
	require.False(t, st.Running)
	h.session.Close()
	<-done
}
