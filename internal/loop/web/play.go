package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/tomz197/glitchhunter/internal/loop/config"
	"github.com/tomz197/glitchhunter/internal/loop/engine"
	"github.com/tomz197/glitchhunter/internal/session"
)

const (
	writeTimeout = time.Second
	commandQueue = 32
)

// guestID returns the player ID for a browser. A valid uuid from the
// browser's storage keeps the same guest across visits.
func guestID(raw string) string {
	if u, err := uuid.Parse(raw); err == nil {
		return "guest-" + u.String()
	}
	return "guest-" + uuid.NewString()
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	playerID := guestID(r.URL.Query().Get("guest"))
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: s.opts.InsecureSkipVerify,
	})
	if err != nil {
		s.log.Error("failed to accept", "err", err)
		return
	}
	defer ws.CloseNow()

	ctx := r.Context()
	logger := s.log.With("player", playerID)
	sess, err := s.manager.Open(ctx, playerID, s.notifier)
	if err != nil {
		logger.Warn("open session", "err", err)
		p := &player{ws: ws, log: logger}
		_ = p.send(ctx, Message{Type: MsgError, Text: err.Error()})
		status := websocket.StatusInternalError
		if errors.Is(err, session.ErrSessionActive) {
			status = websocket.StatusPolicyViolation
		} else if errors.Is(err, session.ErrShutdown) {
			status = websocket.StatusGoingAway
		}
		ws.Close(status, "session unavailable")
		return
	}
	defer sess.Close()

	p := &player{ws: ws, sess: sess, log: logger}
	if err := p.run(ctx); err != nil {
		logger.Warn("play ended", "err", err)
	}
}

// player runs one browser's game. Every session call happens on the run
// goroutine; the read loop only forwards commands.
type player struct {
	ws        *websocket.Conn
	sess      *session.Session
	log       *log.Logger
	playing   bool
	paused    bool
	inactive  bool // idle long enough to be paused
	lastInput time.Time
	view      FrameView
}

type idleAction int

const (
	idleNone idleAction = iota
	idleWarn
	idleDisconnect
)

// checkIdle applies the inactivity limits at now, the same as the terminal
// host: the level pauses after the warning limit and the player is dropped
// after the disconnect limit. Time paused by the player counts as idle.
func (p *player) checkIdle(now time.Time) idleAction {
	idle := now.Sub(p.lastInput).Seconds()
	switch {
	case idle > config.InactivityDisconnectUser:
		return idleDisconnect
	case idle > config.InactivityWarnUser && !p.inactive:
		p.inactive = true
		return idleWarn
	}
	return idleNone
}

func (p *player) touch(now time.Time) {
	p.lastInput = now
	p.inactive = false
}

func (p *player) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmds := make(chan Command, commandQueue)
	go p.readLoop(ctx, cmds)

	if err := p.send(ctx, Message{Type: MsgHello, Player: p.sess.PlayerID()}); err != nil {
		return err
	}
	if err := p.start(ctx, p.sess.Start); err != nil {
		return err
	}

	ticker := time.NewTicker(config.ClientTargetFrameTime)
	defer ticker.Stop()
	last := time.Now()
	p.touch(last)

	for {
		select {
		case <-ctx.Done():
			p.quit(ctx)
			return nil

		case cmd, ok := <-cmds:
			if !ok {
				p.quit(ctx)
				return nil
			}
			p.touch(time.Now())
			if done := p.handle(ctx, cmd); done {
				return nil
			}

		case <-p.sess.Done():
			_ = p.send(ctx, Message{Type: MsgShutdown, Text: "The server is restarting. Please reconnect in a moment."})
			p.quit(ctx)
			p.ws.Close(websocket.StatusGoingAway, "server shutting down")
			return nil

		case err := <-p.sess.Warnings():
			if err := p.send(ctx, Message{Type: MsgWarning, Text: "Progress not saved: " + err.Error()}); err != nil {
				return err
			}

		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			switch p.checkIdle(now) {
			case idleDisconnect:
				p.quit(ctx)
				p.ws.Close(websocket.StatusPolicyViolation, "inactive")
				return nil
			case idleWarn:
				text := fmt.Sprintf("No input for %ds: paused. Disconnecting at %ds.",
					int(config.InactivityWarnUser), int(config.InactivityDisconnectUser))
				if err := p.send(ctx, Message{Type: MsgWarning, Text: text}); err != nil {
					return err
				}
			}
			if err := p.tick(ctx, delta); err != nil {
				return err
			}
		}
	}
}

func (p *player) readLoop(ctx context.Context, cmds chan<- Command) {
	defer close(cmds)
	for {
		var cmd Command
		if err := wsjson.Read(ctx, p.ws, &cmd); err != nil {
			if ctx.Err() == nil && websocket.CloseStatus(err) == -1 {
				p.log.Debug("read", "err", err)
			}
			return
		}
		select {
		case cmds <- cmd:
		case <-ctx.Done():
			return
		}
	}
}

// handle applies one command and reports whether the connection is done.
func (p *player) handle(ctx context.Context, cmd Command) bool {
	queue := func(ev engine.Event) {
		if p.playing {
			p.sess.Queue(ev)
		}
	}
	switch cmd.Type {
	case CmdLeft:
		queue(engine.Event{Kind: engine.MoveLeft})
	case CmdRight:
		queue(engine.Event{Kind: engine.MoveRight})
	case CmdUp:
		queue(engine.Event{Kind: engine.MoveUp})
	case CmdDown:
		queue(engine.Event{Kind: engine.MoveDown})
	case CmdFire:
		queue(engine.Event{Kind: engine.Fire})
	case CmdAim:
		queue(engine.Event{Kind: engine.Aim, X: cmd.X, Y: cmd.Y})
	case CmdPause:
		p.paused = true
	case CmdResume:
		p.paused = false
	case CmdContinue:
		if !p.playing {
			if err := p.start(ctx, p.sess.Continue); err != nil {
				p.log.Error("continue", "err", err)
				return true
			}
		}
	case CmdQuit:
		p.quit(ctx)
		p.ws.Close(websocket.StatusNormalClosure, "bye")
		return true
	default:
		p.log.Debug("unknown command", "type", cmd.Type)
	}
	return false
}

func (p *player) start(ctx context.Context, start func() error) error {
	if err := start(); err != nil {
		_ = p.send(ctx, Message{Type: MsgError, Text: err.Error()})
		p.ws.Close(websocket.StatusInternalError, "cannot start level")
		return err
	}
	p.playing = true
	p.paused = false
	return nil
}

func (p *player) tick(ctx context.Context, delta time.Duration) error {
	if !p.playing {
		return nil
	}
	paused := p.paused || p.inactive
	f, err := p.sess.Tick(delta, paused)
	if err != nil {
		_ = p.send(ctx, Message{Type: MsgError, Text: err.Error()})
		return err
	}
	frameView(&p.view, f, paused)
	if err := p.send(ctx, Message{Type: MsgFrame, Frame: &p.view}); err != nil {
		return err
	}
	if f.Signal == engine.SignalNone {
		return nil
	}
	p.playing = false
	r, _ := p.sess.Result()
	return p.send(ctx, Message{Type: MsgSummary, Summary: summaryView(f, r)})
}

// quit writes the session record. It outlives ctx so a closed tab still
// saves.
func (p *player) quit(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.SaveTimeout)
	defer cancel()
	if err := p.sess.Quit(ctx); err != nil {
		p.log.Warn("quit and save", "err", err)
	}
}

func (p *player) send(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, p.ws, msg)
}
