package client

import (
	"fmt"
	"math"
	"time"

	"github.com/tomz197/glitchhunter/internal/draw"
	"github.com/tomz197/glitchhunter/internal/loop/config"
	"github.com/tomz197/glitchhunter/internal/loop/engine"
	"github.com/tomz197/glitchhunter/internal/object"
)

// Half-block glyphs dim a dying particle below this share of its life.
const particleDimFade = 0.4

var titleArt = []string{
	"  ___  _     _  _____   ___  _  _ ",
	" / __|| |   | ||_   _| / __|| || |",
	"| (_ || |__ |_|  | |  | (__ | __ |",
	" \\___||____|(_)  |_|   \\___||_||_|",
	" _  _  _   _  _  _  _____  ___  ___ ",
	"| || || | | || \\| ||_   _|| __|| _ \\",
	"| __ || |_| || .` |  | |  | _| |   /",
	"|_||_| \\___/ |_|\\_|  |_|  |___||_|_\\",
}

var decoyColors = [...]draw.Color{
	object.CorruptionLow:      draw.ColorBlue,
	object.CorruptionModerate: draw.ColorMagenta,
	object.CorruptionCritical: draw.ColorGreen,
}

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On screen, inactivity or banner transitions, do a full terminal clear
	// so text from the previous state doesn't persist.
	stateChanged := c.state.GameState != c.state.prevGameState
	inactiveChanged := c.state.isInactive != c.state.wasInactive
	warningChanged := (c.state.warning != "") != c.state.hadWarning
	if stateChanged || inactiveChanged || warningChanged {
		draw.ClearScreen(c.chunkWriter)
		c.canvas.ForceRedraw()
		c.state.prevGameState = c.state.GameState
		c.state.wasInactive = c.state.isInactive
		c.state.hadWarning = c.state.warning != ""
	}

	c.canvas.Clear()
	if c.state.GameState == GameStatePlaying && !c.state.isInactive {
		c.drawEntities(c.state.Frame.Entities)
	}

	c.canvas.Render(c.chunkWriter)

	// Draw border when terminal exceeds max render resolution
	c.canvas.RenderBorder(c.chunkWriter)

	c.drawUI()

	return c.chunkWriter.Flush()
}

// drawEntities paints the field into the canvas.
func (c *Client) drawEntities(e engine.Entities) {
	cv := c.canvas
	for _, t := range e.Targets {
		color := draw.ColorRed
		if !t.Primary {
			color = decoyColors[t.Tier]
		}
		cv.FillRect(t.X, t.Y, t.Size, t.Size, color)
	}
	for _, p := range e.Projectiles {
		cv.FillRect(p.X, p.Y, object.ProjectileWidth, object.ProjectileHeight, draw.ColorYellow)
	}

	s := e.Shooter
	cv.FillRect(s.X, s.Y+s.Size/3, s.Size, s.Size*2/3, draw.ColorCyan)
	mx, my := s.Muzzle()
	cv.FillRect(mx-s.Size/6, my, s.Size/3, s.Size/3, draw.ColorCyan)

	for i := range e.Particles {
		p := &e.Particles[i]
		color := draw.ColorGreen
		if p.Color == object.ColorFailure {
			color = draw.ColorMagenta
		}
		if p.Fade() < particleDimFade {
			color = draw.ColorGray
		}
		cv.SetFloat(p.X, p.Y, color)
	}
}

// drawUI draws the text overlay for the current screen.
func (c *Client) drawUI() {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	switch {
	case c.state.GameState == GameStateShutdown:
		c.drawShutdownScreen(centerX, centerY)
	case c.state.isInactive:
		c.drawInactivityScreen(centerX, centerY)
	default:
		switch c.state.GameState {
		case GameStateStart:
			c.drawStartScreen(centerX, centerY)
		case GameStatePlaying:
			c.drawPlayingHUD(termWidth)
		case GameStateSummary:
			c.drawSummaryScreen(centerX, centerY)
		case GameStateError:
			c.drawErrorScreen(centerX, centerY)
		}
	}

	if c.state.warning != "" {
		msg := c.state.warning
		if len(msg) > termWidth-2 {
			msg = msg[:max(termWidth-2, 0)]
		}
		c.chunkWriter.WriteAt(2, termHeight, draw.Colorize(draw.ColorYellow, msg))
		c.canvas.MarkTextDirty(2, termHeight, len(msg))
	}
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerX, centerY int) {
	cw := c.chunkWriter
	cw.WriteCentered(centerX, centerY-2, "INACTIVITY WARNING")

	left := int(config.InactivityDisconnectUser - c.now().Sub(c.lastInput).Seconds())
	msg := fmt.Sprintf("The level is paused. You will be disconnected in %d seconds.", max(left, 0))
	cw.WriteCentered(centerX, centerY, msg)

	cw.WriteCentered(centerX, centerY+2, "Press any key to continue")
}

func blinkOn() bool {
	return time.Now().UnixMilli()/600%2 == 0
}

// drawStartScreen draws the title screen.
func (c *Client) drawStartScreen(centerX, centerY int) {
	titleWidth := 0
	for _, line := range titleArt {
		titleWidth = max(titleWidth, len(line))
	}

	cw := c.chunkWriter
	titleStartY := centerY - 10
	for i, line := range titleArt {
		cw.WriteAt(centerX-titleWidth/2, titleStartY+i, line)
	}

	row := titleStartY + len(titleArt) + 1
	tagline := "~ shoot red glitches, spare the rest ~"
	cw.WriteAt(centerX-len(tagline)/2, row, draw.Colorize(draw.ColorRed, tagline))

	p := c.game.Progression()
	who := c.username
	if who == "" {
		who = "player"
	}
	cw.WriteCentered(centerX, row+2, fmt.Sprintf("%s  |  next: level %s", who, p.CurrentLevel))

	controlsY := row + 4
	cw.WriteCentered(centerX, controlsY, "Controls")
	controlLines := []string{
		"A D / < >  . . . . .  Move",
		"W S / ^ v  . . . . .  Move",
		"SPACE  . . . . . . .  Fire",
		"P / ESC  . . . . . . Pause",
		"Q  . . . . . . . . .  Quit",
	}
	for i, line := range controlLines {
		cw.WriteCentered(centerX, controlsY+1+i, line)
	}

	if blinkOn() {
		cw.WriteCentered(centerX, controlsY+len(controlLines)+2, ">>  Press ENTER to Start  <<")
	}
}

// drawPlayingHUD draws the in-game HUD.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen.
func (c *Client) drawPlayingHUD(termWidth int) {
	cw := c.chunkWriter
	f := c.state.Frame
	ls := f.LevelStats

	left := fmt.Sprintf("Lv %-9s Score %-8d Kills %3d/%-3d", f.Level.Ref(), f.Stats.Score, ls.Kills, f.Level.BotQuota)
	cw.WriteAt(2, 1, left)
	c.canvas.MarkTextDirty(2, 1, len(left))

	secs := int(math.Ceil(f.TimeRemaining.Seconds()))
	right := fmt.Sprintf("Time %3ds", secs)
	cw.WriteAt(termWidth-len(right), 1, right)
	c.canvas.MarkTextDirty(termWidth-len(right), 1, len(right))

	second := fmt.Sprintf("Shots %3d/%-3d Mistakes %d/%d Acc %3d%%",
		ls.Shots, f.Level.BulletAllowance, f.Mistakes, f.MistakeLimit, ls.Accuracy())
	cw.WriteAt(2, 2, second)
	c.canvas.MarkTextDirty(2, 2, len(second))

	combo := "        "
	if f.Combo > 1 {
		combo = fmt.Sprintf("Combo x%d", f.Combo)
	}
	cw.WriteAt(termWidth-len(combo), 2, combo)
	c.canvas.MarkTextDirty(termWidth-len(combo), 2, len(combo))

	if c.state.Paused {
		msg := "PAUSED  press P to resume"
		cw.WriteCentered(termWidth/2, c.canvas.TerminalHeight()/2, msg)
		c.canvas.MarkTextDirty(termWidth/2-len(msg)/2, c.canvas.TerminalHeight()/2, len(msg))
	}
}

// drawSummaryScreen shows how the level went and where the player goes next.
func (c *Client) drawSummaryScreen(centerX, centerY int) {
	cw := c.chunkWriter
	f := c.state.Frame
	r := c.state.Result
	ls := f.LevelStats

	title, color := "LEVEL COMPLETE", draw.ColorGreen
	if f.Signal == engine.SignalGameOver {
		title, color = "GAME OVER", draw.ColorRed
	}
	title = fmt.Sprintf("%s  (%s)", title, f.Outcome)
	row := centerY - 7
	cw.WriteAt(centerX-len(title)/2, row, draw.Colorize(color, title))

	verdict := "Level lost"
	if r.Won {
		verdict = "Level won"
	}
	cw.WriteCentered(centerX, row+2, fmt.Sprintf("%s: level %s", verdict, f.Level.Ref()))

	lines := []string{
		fmt.Sprintf("Kills     %d / %d", ls.Kills, f.Level.BotQuota),
		fmt.Sprintf("Shots     %d / %d", ls.Shots, f.Level.BulletAllowance),
		fmt.Sprintf("Accuracy  %d%%", ls.Accuracy()),
		fmt.Sprintf("Mistakes  %d", f.Mistakes),
		fmt.Sprintf("Time      %.1fs", ls.Elapsed.Seconds()),
		fmt.Sprintf("Score     %d", f.Stats.Score),
	}
	for i, line := range lines {
		cw.WriteCentered(centerX, row+4+i, line)
	}

	row += 5 + len(lines)
	next := r.Progression
	if r.Plateau {
		cw.WriteCentered(centerX, row, "No further level available")
		row++
	}
	cw.WriteCentered(centerX, row, fmt.Sprintf("Next: level %s with %ds", next.CurrentLevel, int(next.BudgetFor(r.NextLevel).Seconds())))
	if r.BestRunUpdated && next.BestRun != nil {
		best := fmt.Sprintf("New best run: %d bullets on %s", next.BestRun.Bullets, next.BestRun.Level)
		cw.WriteAt(centerX-len(best)/2, row+1, draw.Colorize(draw.ColorYellow, best))
	}

	if blinkOn() {
		cw.WriteCentered(centerX, row+3, ">>  ENTER to continue, Q to quit  <<")
	}
}

func (c *Client) drawErrorScreen(centerX, centerY int) {
	cw := c.chunkWriter
	title := "CANNOT START LEVEL"
	cw.WriteAt(centerX-len(title)/2, centerY-2, draw.Colorize(draw.ColorRed, title))
	cw.WriteCentered(centerX, centerY, c.state.errMsg)
	cw.WriteCentered(centerX, centerY+2, "Press Q to disconnect")
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerX, centerY int) {
	cw := c.chunkWriter
	cw.WriteCentered(centerX, centerY-3, "SERVER SHUTTING DOWN")
	cw.WriteCentered(centerX, centerY-1, "Your progress is saved when you leave.")
	cw.WriteCentered(centerX, centerY, "Please reconnect in a moment.")

	remaining := int(c.state.shutdownTimer) + 1
	cw.WriteCentered(centerX, centerY+2, fmt.Sprintf("Disconnecting in %d seconds...", remaining))
	cw.WriteCentered(centerX, centerY+4, "Press Q to disconnect now")
}
