// Package client is the terminal host: it reads keys, drives a game session
// at a fixed frame rate and renders the playfield with ANSI half-blocks.
package client

import (
	"context"
	"io"
	"time"

	"github.com/tomz197/glitchhunter/internal/draw"
	"github.com/tomz197/glitchhunter/internal/input"
	"github.com/tomz197/glitchhunter/internal/loop/config"
	"github.com/tomz197/glitchhunter/internal/loop/engine"
	"github.com/tomz197/glitchhunter/internal/progression"
	"github.com/tomz197/glitchhunter/internal/session"
)

// Game is the session surface the client drives.
type Game interface {
	Start() error
	Continue() error
	Queue(ev engine.Event)
	Tick(delta time.Duration, paused bool) (engine.Frame, error)
	Quit(ctx context.Context) error
	Result() (progression.Result, bool)
	Progression() progression.Progression
	Warnings() <-chan error
	Done() <-chan struct{}
}

var _ Game = (*session.Session)(nil)

// Client handles rendering and input for a single connection.
type Client struct {
	game         Game
	state        *ClientState
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	username     string
	termSizeFunc draw.TermSizeFunc
	now          func() time.Time
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
}

// NewClient creates a client that plays g, reading keys from r.
func NewClient(g Game, r io.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}

	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, config.FieldWidth, config.FieldHeight)
	canvas.SetOffset(offsetCol, offsetRow)

	var stream *input.Stream
	if r != nil {
		stream = input.StartStream(r)
	}
	return &Client{
		game:         g,
		state:        NewClientState(),
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		writer:       w,
		inputStream:  stream,
		lastInput:    time.Now(),
		username:     opts.Username,
		termSizeFunc: termSizeFunc,
		now:          time.Now,
	}
}

// Run starts the client loop. Blocks until the player leaves, the input
// closes or ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)

	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		delta := frameStart.Sub(lastTime)
		lastTime = frameStart

		if ctx.Err() != nil {
			c.quitAndSave(context.Background())
			break
		}

		c.state.Keys = c.state.Keys[:0]
		if c.inputStream != nil {
			c.state.Keys = c.inputStream.Read(c.state.Keys)
			if c.inputStream.Closed() {
				c.quitAndSave(ctx)
			}
		}
		c.updateScreen()
		c.update(ctx, delta)

		if err := c.drawFrame(); err != nil {
			return err
		}

		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	draw.ClearScreen(c.writer)
	return nil
}

// update runs one frame of client logic on the keys in state.
func (c *Client) update(ctx context.Context, delta time.Duration) {
	c.state.delta = delta
	c.processActivity()
	c.processSessionEvents()

	switch c.state.GameState {
	case GameStateStart:
		c.updateStartState()
	case GameStatePlaying:
		c.updatePlayingState(ctx)
	case GameStateSummary:
		c.updateSummaryState(ctx)
	case GameStateShutdown:
		c.updateShutdownState(ctx)
	case GameStateError:
		if c.pressed(input.KeyQuit, input.KeyEnter, input.KeyEscape) {
			c.state.Running = false
		}
	}

	if c.state.warningTimer > 0 {
		c.state.warningTimer -= delta.Seconds()
		if c.state.warningTimer <= 0 {
			c.state.warning = ""
		}
	}
}

func (c *Client) pressed(keys ...input.Key) bool {
	for _, k := range c.state.Keys {
		for _, want := range keys {
			if k == want {
				return true
			}
		}
	}
	return false
}

// processActivity tracks inactivity and disconnects idle players.
func (c *Client) processActivity() {
	now := c.now()
	if len(c.state.Keys) > 0 {
		c.lastInput = now
		c.state.isInactive = false
		return
	}
	idle := now.Sub(c.lastInput).Seconds()
	switch {
	case idle > config.InactivityDisconnectUser:
		c.quitAndSave(context.Background())
	case idle > config.InactivityWarnUser:
		c.state.isInactive = true
	}
}

// processSessionEvents picks up persistence warnings and shutdown.
func (c *Client) processSessionEvents() {
	for drained := false; !drained; {
		select {
		case err := <-c.game.Warnings():
			c.state.warning = "Progress not saved: " + err.Error()
			c.state.warningTimer = config.WarningDisplaySeconds
		default:
			drained = true
		}
	}
	if c.state.GameState == GameStateShutdown {
		return
	}
	select {
	case <-c.game.Done():
		c.state.GameState = GameStateShutdown
		c.state.shutdownTimer = config.ShutdownDisplaySeconds
	default:
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, config.MaxTermWidth)
	renderHeight = min(termHeight, config.MaxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

func (c *Client) updateStartState() {
	switch {
	case c.pressed(input.KeyQuit):
		c.state.Running = false
	case c.pressed(input.KeyEnter, input.KeyFire):
		c.startLevel(c.game.Start)
	}
}

func (c *Client) startLevel(start func() error) {
	if err := start(); err != nil {
		c.state.GameState = GameStateError
		c.state.errMsg = err.Error()
		return
	}
	// A paused zero tick yields the level's opening frame for the HUD.
	f, err := c.game.Tick(0, true)
	if err != nil {
		c.state.GameState = GameStateError
		c.state.errMsg = err.Error()
		return
	}
	c.state.Frame = f
	c.state.Paused = false
	c.state.GameState = GameStatePlaying
}

// updatePlayingState forwards keys to the session and ticks it.
func (c *Client) updatePlayingState(ctx context.Context) {
	for _, k := range c.state.Keys {
		switch k {
		case input.KeyLeft:
			c.game.Queue(engine.Event{Kind: engine.MoveLeft})
		case input.KeyRight:
			c.game.Queue(engine.Event{Kind: engine.MoveRight})
		case input.KeyUp:
			c.game.Queue(engine.Event{Kind: engine.MoveUp})
		case input.KeyDown:
			c.game.Queue(engine.Event{Kind: engine.MoveDown})
		case input.KeyFire:
			c.game.Queue(engine.Event{Kind: engine.Fire})
		case input.KeyPause, input.KeyEscape:
			c.state.Paused = !c.state.Paused
		case input.KeyQuit:
			c.quitAndSave(ctx)
			return
		}
	}

	// Inactivity pauses the level so the clock does not run out unseen.
	paused := c.state.Paused || c.state.isInactive
	f, err := c.game.Tick(c.state.delta, paused)
	c.state.Frame = f
	if err != nil {
		c.state.GameState = GameStateError
		c.state.errMsg = err.Error()
		return
	}
	if f.Signal != engine.SignalNone {
		c.state.Result, _ = c.game.Result()
		c.state.GameState = GameStateSummary
	}
}

func (c *Client) updateSummaryState(ctx context.Context) {
	switch {
	case c.pressed(input.KeyQuit):
		c.quitAndSave(ctx)
	case c.pressed(input.KeyEnter, input.KeyFire):
		c.startLevel(c.game.Continue)
	}
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState(ctx context.Context) {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 || c.pressed(input.KeyQuit) {
		c.quitAndSave(ctx)
	}
}

// quitAndSave records the session and stops the loop.
func (c *Client) quitAndSave(ctx context.Context) {
	if !c.state.Running {
		return
	}
	c.state.Running = false
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.SaveTimeout)
	defer cancel()
	if err := c.game.Quit(ctx); err != nil {
		c.state.warning = "Progress not saved: " + err.Error()
	}
}
