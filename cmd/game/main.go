package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/tomz197/glitchhunter/internal/app"
	"github.com/tomz197/glitchhunter/internal/audio"
	"github.com/tomz197/glitchhunter/internal/config"
	"github.com/tomz197/glitchhunter/internal/draw"
	"github.com/tomz197/glitchhunter/internal/loop/client"
	loopcfg "github.com/tomz197/glitchhunter/internal/loop/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, "game")
	if err != nil {
		return err
	}
	defer a.Close()

	// The terminal belongs to the game; logs go to GLITCH_LOG_FILE or nowhere.
	closeLog, err := redirectLog(a.Log, config.GetEnv("GLITCH_LOG_FILE", ""))
	if err != nil {
		return err
	}
	defer closeLog()

	notifier, closeAudio := localAudio(a.Log)
	defer closeAudio()

	player := playerName()
	s, err := a.Manager.Open(ctx, player, notifier)
	if err != nil {
		return err
	}
	defer s.Close()

	restore, err := draw.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	defer restore()

	c := client.NewClient(s, bufio.NewReader(os.Stdin), os.Stdout, client.ClientOptions{Username: player})
	return c.Run(ctx)
}

func playerName() string {
	name := strings.TrimSpace(config.GetEnv("USER", ""))
	if name == "" {
		name = "player"
	}
	if len(name) > loopcfg.MaxUsernameLength {
		name = name[:loopcfg.MaxUsernameLength]
	}
	return name
}

func redirectLog(logger *log.Logger, path string) (func(), error) {
	if path == "" {
		logger.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	return func() { _ = f.Close() }, nil
}

// localAudio picks the cue sink from GLITCH_AUDIO: "on" plays tones through
// the speaker, "bell" rings the terminal bell and anything else is silent.
func localAudio(logger *log.Logger) (audio.Notifier, func()) {
	switch strings.ToLower(config.GetEnv("GLITCH_AUDIO", "off")) {
	case "on", "1", "true":
		synth := audio.NewSynth()
		if err := synth.Init(); err != nil {
			logger.Warn("speaker unavailable, audio off", "err", err)
			return audio.Nop{}, func() {}
		}
		a := audio.NewAsync(synth, loopcfg.AudioBuffer)
		return a, func() {
			a.Close()
			synth.Close()
		}
	case "bell":
		a := audio.NewAsync(audio.NewBell(os.Stdout, loopcfg.BellInterval), loopcfg.AudioBuffer)
		return a, a.Close
	}
	return audio.Nop{}, func() {}
}
