package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomz197/glitchhunter/internal/app"
	"github.com/tomz197/glitchhunter/internal/config"
	"github.com/tomz197/glitchhunter/internal/loop/web"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"

	shutdownTimeout = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "web server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, "web")
	if err != nil {
		return err
	}
	defer a.Close()

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	ws := web.NewServer(a.Manager, web.Options{
		SSHHost:            config.GetEnv("SSH_DISPLAY_HOST", "your-server.com"),
		SSHPort:            config.GetEnv("SSH_DISPLAY_PORT", "22"),
		Logger:             a.Log,
		InsecureSkipVerify: config.GetEnvBool("WEB_INSECURE_ORIGIN", false),
	})
	srv := &http.Server{
		Addr:              net.JoinHostPort(host, port),
		Handler:           ws.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.WatchLevels(gctx)
	})
	g.Go(func() error {
		a.Log.Info("Starting web server", "addr", "http://"+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
