// Package web is the browser host. It serves a landing page and the
// leaderboard, and runs one game session per websocket on /play.
package web

import (
	"context"
	_ "embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/glitchhunter/internal/audio"
	"github.com/tomz197/glitchhunter/internal/loop/config"
	"github.com/tomz197/glitchhunter/internal/session"
)

//go:embed index.html
var indexHTML string

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

// Options configures the web host.
type Options struct {
	SSHHost string // shown in the landing page's ssh command
	SSHPort string
	Logger  *log.Logger
	// InsecureSkipVerify disables the websocket origin check.
	InsecureSkipVerify bool
}

// Server serves the landing page, the leaderboard and /play.
type Server struct {
	manager *session.Manager
	opts    Options
	log     *log.Logger
	// Browsers play their own cues from frame data.
	notifier audio.Notifier
}

// NewServer creates a web host backed by m.
func NewServer(m *session.Manager, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		manager:  m,
		opts:     opts,
		log:      logger,
		notifier: audio.Nop{},
	}
}

// Handler routes the host's endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /leaderboard", s.handleLeaderboard)
	mux.HandleFunc("/play", s.handlePlay)
	return mux
}

func (s *Server) leaderboard(ctx context.Context) ([]LeaderboardRow, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	entries, err := s.manager.Leaderboard(ctx, config.LeaderboardSize)
	if err != nil {
		return nil, err
	}
	return leaderboardRows(entries), nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	rows, err := s.leaderboard(r.Context())
	if err != nil {
		s.log.Warn("leaderboard unavailable", "err", err)
	}
	sshCmd := "ssh " + s.opts.SSHHost
	if s.opts.SSHPort != "" && s.opts.SSHPort != "22" {
		sshCmd = "ssh -p " + s.opts.SSHPort + " " + s.opts.SSHHost
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = indexTmpl.Execute(w, struct {
		SSHCommand  string
		Leaderboard []LeaderboardRow
	}{sshCmd, rows})
	if err != nil {
		s.log.Error("render index", "err", err)
	}
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.leaderboard(r.Context())
	if err != nil {
		s.log.Warn("leaderboard unavailable", "err", err)
		http.Error(w, "leaderboard unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "max-age=5")
	if err := json.NewEncoder(w).Encode(rows); err != nil {
		s.log.Debug("write leaderboard", "err", err)
	}
}
