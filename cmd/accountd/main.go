// Package main runs the account server, which stores users and signs the tokens that admit them to matchmaking.
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

	"github.com/permutationlock/catacrawl/db/bcrypt"
	"github.com/permutationlock/catacrawl/db/user"
	"github.com/permutationlock/catacrawl/server/auth"
	"github.com/permutationlock/catacrawl/server/web"
)

func main() {
	logFlags := log.Ldate | log.Ltime | log.LUTC | log.Lshortfile | log.Lmsgprefix
	l := log.New(os.Stderr, "accountd ", logFlags)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	var cfg config
	if err := newCmd(&cfg, l).ExecuteContext(ctx); err != nil {
		l.Fatalf("running account server: %v", err)
	}
}

// run creates the user store and serves the account endpoints until ctx is canceled.
func run(ctx context.Context, cfg *config, l *log.Logger) error {
	backend, err := newUserBackend(ctx, cfg.databaseURL)
	if err != nil {
		return err
	}
	dao, err := user.NewDao(backend, bcrypt.NewPasswordHandler())
	if err != nil {
		return err
	}
	tokenizerCfg := auth.Config{
		Secret: []byte(cfg.secret),
		TimeFunc: func() int64 {
			return time.Now().UTC().Unix()
		},
		ValidSec: int64(cfg.tokenValidFor.Seconds()),
	}
	tokenizer, err := tokenizerCfg.NewAccountTokenizer()
	if err != nil {
		return err
	}
	srvCfg := web.Config{
		Addr:    cfg.addr,
		StopDur: time.Second,
		JoinURL: cfg.joinURL,
	}
	p := web.Parameters{
		Logger:    l,
		Tokenizer: tokenizer,
		UserDao:   dao,
	}
	srv, err := srvCfg.NewServer(p)
	if err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := <-srv.Run(gctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("running account server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return srv.Stop(context.Background())
	})
	return g.Wait()
}
