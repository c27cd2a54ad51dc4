package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/glitchhunter/internal/catalog"
	"github.com/tomz197/glitchhunter/internal/loop/engine"
	"github.com/tomz197/glitchhunter/internal/progression"
	"github.com/tomz197/glitchhunter/internal/session"
	"github.com/tomz197/glitchhunter/internal/storage/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
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
	store := memory.New(c)

	cfg := engine.DefaultConfig()
	cfg.SpawnInterval = time.Hour
	cfg.Seed = 11
	logger := log.New(io.Discard)
	m := session.NewManager(store, catalog.NewStore(c), session.Options{
		Engine:      cfg,
		SaveTimeout: time.Second,
		Logger:      logger,
	})
	s := NewServer(m, Options{SSHHost: "play.example.com", SSHPort: "2222", Logger: logger})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func dial(t *testing.T, ctx context.Context, srv *httptest.Server, guest string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/play?guest=" + guest
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string) Message {
	t.Helper()
	for {
		var m Message
		require.NoError(t, wsjson.Read(ctx, conn, &m))
		if m.Type == typ {
			return m
		}
	}
}

func TestPlayLevelContinueAndQuit(t *testing.T) {
	srv, store := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	guest := uuid.NewString()
	conn := dial(t, ctx, srv, guest)

	hello := readUntil(t, ctx, conn, MsgHello)
	require.Equal(t, "guest-"+guest, hello.Player)

	first := readUntil(t, ctx, conn, MsgFrame)
	require.Equal(t, "1/easy", first.Frame.Level)
	require.Equal(t, 1, first.Frame.TimeLeft)

	sum := readUntil(t, ctx, conn, MsgSummary)
	require.True(t, sum.Summary.Won)
	require.False(t, sum.Summary.GameOver)
	require.Equal(t, "time up", sum.Summary.Outcome)

	require.NoError(t, wsjson.Write(ctx, conn, Command{Type: CmdContinue}))
	next := readUntil(t, ctx, conn, MsgFrame)
	require.True(t, strings.HasPrefix(next.Frame.Level, "2/"), next.Frame.Level)

	require.NoError(t, wsjson.Write(ctx, conn, Command{Type: CmdQuit}))
	for {
		var m Message
		err := wsjson.Read(ctx, conn, &m)
		if err != nil {
			require.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
			break
		}
	}

	require.Eventually(t, func() bool { return len(store.Sessions()) == 1 }, 2*time.Second, 10*time.Millisecond)
	rec := store.Sessions()[0]
	require.True(t, rec.Finished)
	require.Equal(t, "guest-"+guest, rec.PlayerID)
}

func TestSecondTabIsRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	guest := uuid.NewString()
	first := dial(t, ctx, srv, guest)
	readUntil(t, ctx, first, MsgHello)

	second := dial(t, ctx, srv, guest)
	msg := readUntil(t, ctx, second, MsgError)
	require.Contains(t, msg.Text, "active")

	var m Message
	err := wsjson.Read(ctx, second, &m)
	require.Equal(t, websocket.StatusPolicyViolation, websocket.CloseStatus(err))
}

func TestGuestID(t *testing.T) {
	id := uuid.NewString()
	require.Equal(t, "guest-"+id, guestID(id))

	fresh := guestID("not-a-uuid")
	require.True(t, strings.HasPrefix(fresh, "guest-"))
	_, err := uuid.Parse(strings.TrimPrefix(fresh, "guest-"))
	require.NoError(t, err)
}

func TestLeaderboardAndIndex(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	for i, bullets := range []int{7, 3} {
		p := progression.Progression{
			PlayerID:          []string{"slow", "fast"}[i],
			CurrentDifficulty: catalog.Easy,
			CurrentLevel:      catalog.LevelRef{Number: 2, Difficulty: catalog.Easy},
			TimeBudget:        30 * time.Second,
			BestRun:           &progression.BestRun{Bullets: bullets, Level: catalog.LevelRef{Number: 1, Difficulty: catalog.Easy}},
		}
		require.NoError(t, store.SaveProgression(ctx, p.PlayerID, p))
	}

	resp, err := http.Get(srv.URL + "/leaderboard")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rows []LeaderboardRow
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Equal(t, []LeaderboardRow{
		{Rank: 1, Player: "fast", Bullets: 3, Level: "1/easy", TimeBudget: 30},
		{Rank: 2, Player: "slow", Bullets: 7, Level: "1/easy", TimeBudget: 30},
	}, rows)

	page, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer page.Body.Close()
	body, err := io.ReadAll(page.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "ssh -p 2222 play.example.com")
	require.Contains(t, string(body), "<td>fast</td>")

	missing, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	missing.Body.Close()
	require.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestIdlePausesThenDisconnects(t *testing.T) {
	start := time.Now()
	p := &player{paused: true}
	p.touch(start)

	require.Equal(t, idleNone, p.checkIdle(start.Add(60*time.Second)))
	require.Equal(t, idleWarn, p.checkIdle(start.Add(95*time.Second)), "player pause still counts as idle")
	require.True(t, p.inactive)
	require.Equal(t, idleNone, p.checkIdle(start.Add(100*time.Second)), "warning is sent once")

	p.touch(start.Add(110 * time.Second))
	require.False(t, p.inactive)
	require.Equal(t, idleNone, p.checkIdle(start.Add(200*time.Second)))
	require.Equal(t, idleDisconnect, p.checkIdle(start.Add(231*time.Second)))
}
