package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tomz197/glitchhunter/internal/app"
	"github.com/tomz197/glitchhunter/internal/audio"
	"github.com/tomz197/glitchhunter/internal/config"
	"github.com/tomz197/glitchhunter/internal/draw"
	"github.com/tomz197/glitchhunter/internal/loop/client"
	loopcfg "github.com/tomz197/glitchhunter/internal/loop/config"
	"github.com/tomz197/glitchhunter/internal/session"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"

	shutdownTimeout = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ssh server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, "ssh")
	if err != nil {
		return err
	}
	defer a.Close()

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	a.Log.Info("SSH config", "host", host, "port", port, "hostKeyPath", hostKeyPath)

	h := &gameHandler{manager: a.Manager, log: a.Log}
	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			h.middleware,
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(a.Log),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.WatchLevels(gctx)
	})
	g.Go(func() error {
		a.Log.Info("Starting SSH server", "addr", s.Addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutting down, notifying connected players")
		a.Manager.Shutdown(shutdownTimeout)

		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(sctx)
	})
	return g.Wait()
}

// gameHandler runs one terminal client per SSH session.
type gameHandler struct {
	manager *session.Manager
	log     *log.Logger
}

func (h *gameHandler) middleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		defer next(sess)

		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		player := playerID(sess.User())
		logger := h.log.With("player", player)
		logger.Info("new game session", "term", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		notifier := audio.NewAsync(audio.NewBell(sess, loopcfg.BellInterval), loopcfg.AudioBuffer)
		defer notifier.Close()

		gs, err := h.manager.Open(sess.Context(), player, notifier)
		switch {
		case errors.Is(err, session.ErrSessionActive):
			fmt.Fprintf(sess, "%s is already playing in another session.\r\n", player)
			return
		case errors.Is(err, session.ErrShutdown):
			fmt.Fprintln(sess, "The server is shutting down. Please reconnect in a moment.")
			return
		case err != nil:
			logger.Error("open session", "err", err)
			fmt.Fprintf(sess, "Cannot start the game: %v\r\n", err)
			return
		}
		defer gs.Close()

		c := client.NewClient(gs, bufio.NewReader(sess), sess, client.ClientOptions{
			TermSizeFunc: sizeTracker.getSize,
			Username:     player,
		})
		if err := c.Run(sess.Context()); err != nil {
			logger.Error("game error", "err", err)
		}
		logger.Info("session ended")
	}
}

// playerID is the SSH user name, cut to the display limit. Anonymous
// connections get a guest ID.
func playerID(user string) string {
	if user == "" {
		return "guest-" + uuid.NewString()
	}
	if len(user) > loopcfg.MaxUsernameLength {
		user = user[:loopcfg.MaxUsernameLength]
	}
	return user
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
