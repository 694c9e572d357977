// Package main runs the matchmaking server, which queues sessions into games and issues join tokens.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/permutationlock/catacrawl/game/tictactoe"
	"github.com/permutationlock/catacrawl/server/action"
	"github.com/permutationlock/catacrawl/server/auth"
	"github.com/permutationlock/catacrawl/server/matchsrv"
	"github.com/permutationlock/catacrawl/server/socket"
	"github.com/permutationlock/catacrawl/server/socket/gorilla"
)

// stopDur is how long the http server has to stop serving upgrades when shutting down.
const stopDur = 5 * time.Second

func main() {
	logFlags := log.Ldate | log.Ltime | log.LUTC | log.Lshortfile | log.Lmsgprefix
	l := log.New(os.Stderr, "matchmaker ", logFlags)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	var cfg config
	if err := newCmd(&cfg, l).ExecuteContext(ctx); err != nil {
		l.Fatalf("running matchmaking server: %v", err)
	}
}

// run serves websocket upgrades at the configured address until ctx is canceled.
func run(ctx context.Context, cfg *config, l *log.Logger) error {
	timeFunc := func() int64 {
		return time.Now().UTC().Unix()
	}
	authCfg := auth.Config{
		Secret:   []byte(cfg.secret),
		TimeFunc: timeFunc,
		ValidSec: int64(cfg.tokenValidFor.Seconds()),
	}
	verifier, err := authCfg.NewVerifier(auth.AuthIssuer)
	if err != nil {
		return err
	}
	signer, err := authCfg.NewSigner(auth.MatchmakerIssuer)
	if err != nil {
		return err
	}
	queue := action.NewQueue()
	srvCfg := matchsrv.Config{
		Debug:      cfg.debug,
		Log:        l,
		TickPeriod: cfg.matchPeriod,
		Verifier:   verifier,
		Signer:     signer,
		Matchmaker: tictactoe.NewMatchmaker(),
	}
	srv, err := srvCfg.NewServer(queue)
	if err != nil {
		return err
	}
	socketCfg := socket.Config{
		Debug:      cfg.debug,
		Log:        l,
		ReadWait:   60 * time.Second,
		WriteWait:  10 * time.Second,
		PingPeriod: 54 * time.Second, // readWait * 0.9
		QueueLen:   16,
	}
	h, err := socketCfg.NewHandler(gorilla.NewUpgrader(), queue)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/", h)
	httpServer := http.Server{
		Addr:    cfg.addr,
		Handler: mux,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		srv.Run(gctx) // BLOCKING
		return nil
	})
	g.Go(func() error {
		l.Printf("serving matchmaking at ws://%v", cfg.addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving websocket upgrades: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), stopDur)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
