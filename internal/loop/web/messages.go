package web

import (
	"math"

	"github.com/tomz197/glitchhunter/internal/loop/engine"
	"github.com/tomz197/glitchhunter/internal/object"
	"github.com/tomz197/glitchhunter/internal/progression"
	"github.com/tomz197/glitchhunter/internal/storage"
)

// Command types sent by the browser.
const (
	CmdLeft     = "left"
	CmdRight    = "right"
	CmdUp       = "up"
	CmdDown     = "down"
	CmdFire     = "fire"
	CmdAim      = "aim"
	CmdPause    = "pause"
	CmdResume   = "resume"
	CmdContinue = "continue"
	CmdQuit     = "quit"
)

// Command is a message from the browser. X and Y are used by aim only.
type Command struct {
	Type string  `json:"type"`
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
}

// Message types sent to the browser.
const (
	MsgHello    = "hello"
	MsgFrame    = "frame"
	MsgSummary  = "summary"
	MsgWarning  = "warning"
	MsgShutdown = "shutdown"
	MsgError    = "error"
)

// Message is a server message. Exactly one payload is set, matching Type.
type Message struct {
	Type    string       `json:"type"`
	Player  string       `json:"player,omitempty"`
	Frame   *FrameView   `json:"frame,omitempty"`
	Summary *SummaryView `json:"summary,omitempty"`
	Text    string       `json:"text,omitempty"`
}

type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type TargetView struct {
	Box
	Primary bool   `json:"primary"`
	Tier    string `json:"tier"`
}

type ParticleView struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Fade    float64 `json:"fade"`
	Success bool    `json:"success"`
}

// FrameView is the field and HUD of one tick.
type FrameView struct {
	Shooter     Box            `json:"shooter"`
	Projectiles []Box          `json:"projectiles"`
	Targets     []TargetView   `json:"targets"`
	Particles   []ParticleView `json:"particles"`

	Level        string `json:"level"`
	Score        int    `json:"score"`
	Kills        int    `json:"kills"`
	Quota        int    `json:"quota"`
	Shots        int    `json:"shots"`
	Allowance    int    `json:"allowance"`
	Mistakes     int    `json:"mistakes"`
	MistakeLimit int    `json:"mistakeLimit"`
	Accuracy     int    `json:"accuracy"`
	TimeLeft     int    `json:"timeLeft"` // whole seconds, rounded up
	Combo        int    `json:"combo,omitempty"`
	Paused       bool   `json:"paused,omitempty"`
}

// SummaryView reports a finished level.
type SummaryView struct {
	Outcome    string `json:"outcome"`
	GameOver   bool   `json:"gameOver"`
	Won        bool   `json:"won"`
	Plateau    bool   `json:"plateau"`
	NewBest    bool   `json:"newBest"`
	Next       string `json:"next"`
	NextBudget int    `json:"nextBudget"` // seconds
	Score      int    `json:"score"`
	Kills      int    `json:"kills"`
	Shots      int    `json:"shots"`
	Accuracy   int    `json:"accuracy"`
}

// LeaderboardRow is one entry of GET /leaderboard.
type LeaderboardRow struct {
	Rank       int    `json:"rank"`
	Player     string `json:"player"`
	Bullets    int    `json:"bullets"`
	Level      string `json:"level"`
	TimeBudget int    `json:"timeBudget"` // seconds
}

func boxOf(r object.Rect) Box {
	return Box{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

// frameView converts f, reusing the slices of dst.
func frameView(dst *FrameView, f engine.Frame, paused bool) {
	e := f.Entities
	dst.Shooter = boxOf(e.Shooter.Bounds())

	dst.Projectiles = dst.Projectiles[:0]
	for _, p := range e.Projectiles {
		dst.Projectiles = append(dst.Projectiles, boxOf(p.Bounds()))
	}
	dst.Targets = dst.Targets[:0]
	for _, t := range e.Targets {
		dst.Targets = append(dst.Targets, TargetView{Box: boxOf(t.Bounds()), Primary: t.Primary, Tier: t.Tier.String()})
	}
	dst.Particles = dst.Particles[:0]
	for i := range e.Particles {
		p := &e.Particles[i]
		dst.Particles = append(dst.Particles, ParticleView{X: p.X, Y: p.Y, Fade: p.Fade(), Success: p.Color == object.ColorSuccess})
	}

	ls := f.LevelStats
	dst.Level = f.Level.Ref().String()
	dst.Score = f.Stats.Score
	dst.Kills = ls.Kills
	dst.Quota = f.Level.BotQuota
	dst.Shots = ls.Shots
	dst.Allowance = f.Level.BulletAllowance
	dst.Mistakes = f.Mistakes
	dst.MistakeLimit = f.MistakeLimit
	dst.Accuracy = ls.Accuracy()
	dst.TimeLeft = int(math.Ceil(f.TimeRemaining.Seconds()))
	dst.Combo = f.Combo
	dst.Paused = paused
}

func summaryView(f engine.Frame, r progression.Result) *SummaryView {
	ls := f.LevelStats
	return &SummaryView{
		Outcome:    f.Outcome.String(),
		GameOver:   f.Signal == engine.SignalGameOver,
		Won:        r.Won,
		Plateau:    r.Plateau,
		NewBest:    r.BestRunUpdated,
		Next:       r.Progression.CurrentLevel.String(),
		NextBudget: int(r.Progression.BudgetFor(r.NextLevel).Seconds()),
		Score:      f.Stats.Score,
		Kills:      ls.Kills,
		Shots:      ls.Shots,
		Accuracy:   ls.Accuracy(),
	}
}

func leaderboardRows(entries []storage.LeaderboardEntry) []LeaderboardRow {
	rows := make([]LeaderboardRow, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, LeaderboardRow{
			Rank:       i + 1,
			Player:     e.PlayerID,
			Bullets:    e.LeastBullets,
			Level:      e.Level.String(),
			TimeBudget: int(e.TimeBudget.Seconds()),
		})
	}
	return rows
}
