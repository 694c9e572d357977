// Package web serves the account endpoints that store users, sign login tokens, and hand out the join QR code.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/permutationlock/catacrawl/db/user"
	"github.com/permutationlock/catacrawl/game"
	"github.com/permutationlock/catacrawl/server/log"
)

type (
	// Server runs the account service.
	Server struct {
		log        log.Logger
		HTTPServer *http.Server
		Config
	}

	// Config contains fields which describe the server.
	Config struct {
		// Addr is the TCP address to listen on.
		Addr string
		// StopDur is the maximum amount of time to wait for in-flight requests when stopping.
		StopDur time.Duration
		// JoinURL is the matchmaking server address the join QR code encodes.
		JoinURL string
	}

	// Parameters contains the interfaces needed to create a new server.
	Parameters struct {
		log.Logger
		Tokenizer
		UserDao
	}

	// Tokenizer creates account tokens on login and reads the usernames they were signed for.
	Tokenizer interface {
		Create(username string, id game.PlayerID) (string, error)
		ReadUsername(tokenString string) (string, error)
	}

	// UserDao performs the account operations on the user store.
	UserDao interface {
		Create(ctx context.Context, u user.User) error
		Login(ctx context.Context, u user.User) (*user.User, error)
		UpdatePassword(ctx context.Context, u user.User, newP string) error
		Delete(ctx context.Context, u user.User) error
	}
)

// NewServer creates a Server from the Config.
func (cfg Config) NewServer(p Parameters) (*Server, error) {
	if err := cfg.validate(p); err != nil {
		return nil, fmt.Errorf("creating account server: validation: %w", err)
	}
	s := Server{
		log: p.Logger,
		HTTPServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      p.handler(cfg),
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Config: cfg,
	}
	return &s, nil
}

// validate ensures the configuration and parameters have no errors.
func (cfg Config) validate(p Parameters) error {
	if err := p.validate(); err != nil {
		return err
	}
	switch {
	case len(cfg.Addr) == 0:
		return fmt.Errorf("listen address required")
	case cfg.StopDur <= 0:
		return fmt.Errorf("stop timeout duration required")
	case len(cfg.JoinURL) == 0:
		return fmt.Errorf("join url required")
	}
	return nil
}

// validate ensures that all of the parameters are present.
func (p Parameters) validate() error {
	switch {
	case p.Logger == nil:
		return fmt.Errorf("log required")
	case p.Tokenizer == nil:
		return fmt.Errorf("tokenizer required")
	case p.UserDao == nil:
		return fmt.Errorf("user dao required")
	}
	return nil
}

// handler builds the route table.  Routes that change stored users require a bearer token.
func (p Parameters) handler(cfg Config) http.Handler {
	mux := httprouter.New()
	mux.POST("/user_create", userCreateHandler(p.UserDao, p.Logger))
	mux.POST("/user_login", userLoginHandler(p.UserDao, p.Tokenizer, p.Logger))
	mux.POST("/user_update_password", authHandler(userUpdatePasswordHandler(p.UserDao, p.Logger), p.Tokenizer, p.Logger))
	mux.POST("/user_delete", authHandler(userDeleteHandler(p.UserDao, p.Logger), p.Tokenizer, p.Logger))
	mux.GET("/join_qr", joinQRHandler(cfg.JoinURL, p.Logger))
	mux.GET("/monitor", monitorHandler())
	mux.GET("/healthz", healthzHandler())
	return mux
}

// Run starts the server.  Errors from the listener are reported on the returned channel.
func (s *Server) Run(ctx context.Context) <-chan error {
	errC := make(chan error, 1)
	s.log.Printf("starting account server at http://%v", s.HTTPServer.Addr)
	go func() {
		errC <- s.HTTPServer.ListenAndServe()
	}()
	return errC
}

// Stop asks the server to shut down and waits for in-flight requests, up to the stop duration.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancelFunc := context.WithTimeout(ctx, s.StopDur)
	defer cancelFunc()
	if err := s.HTTPServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("stopping account server: %w", err)
	}
	return nil
}
