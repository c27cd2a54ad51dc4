package client

import (
	"time"

	"github.com/tomz197/glitchhunter/internal/input"
	"github.com/tomz197/glitchhunter/internal/loop/engine"
	"github.com/tomz197/glitchhunter/internal/progression"
)

// GameState represents the current screen of a client.
type GameState int

const (
	GameStateStart    GameState = iota // Title screen
	GameStatePlaying                   // Level in progress
	GameStateSummary                   // Level ended, waiting to continue
	GameStateShutdown                  // Server is shutting down
	GameStateError                     // The catalog cannot supply a level
)

// ClientState holds everything the client shows between frames.
type ClientState struct {
	Keys      []input.Key
	GameState GameState
	Paused    bool
	Frame     engine.Frame       // last frame from the session
	Result    progression.Result // valid in GameStateSummary
	Running   bool

	errMsg        string  // GameStateError
	warning       string  // persistence warning banner
	warningTimer  float64 // seconds left on the banner
	delta         time.Duration
	shutdownTimer float64 // Countdown before auto-disconnect on shutdown
	isInactive    bool
	prevGameState GameState
	wasInactive   bool
	hadWarning    bool
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		GameState:     GameStateStart,
		Running:       true,
		prevGameState: GameStateStart,
	}
}
