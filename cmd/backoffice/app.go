package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/ambikamber/ambikamber.com/internal/adapter/api"
	"github.com/ambikamber/ambikamber.com/internal/adapter/storage"
	"github.com/ambikamber/ambikamber.com/internal/config"
	"github.com/ambikamber/ambikamber.com/internal/core/service"
	"github.com/ambikamber/ambikamber.com/internal/logging"
)

// app is everything a command needs, wired from the config file.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	out      io.Writer
	prompt   prompter
	sessions *storage.FileSessionStore
	client   *api.Client
	notify   termNotifier
	auth     *service.AuthService
}

func newApp(cfgPath string, verbose bool, out, errOut io.Writer) (*app, error) {
	logger, err := logging.NewCLI(verbose)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	notify := termNotifier{out: out}
	sessions := storage.NewFileSessionStore(cfg.Session.File)
	client := api.New(cfg.API.BaseURL, sessions,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithLogger(logger),
		api.WithUnauthorizedHook(func(context.Context) {
			fmt.Fprintln(errOut, styles.Warning.Render("⚠ Session expired, please log in again"))
		}),
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		out:      out,
		prompt:   huhPrompter{},
		sessions: sessions,
		client:   client,
		notify:   notify,
		auth:     service.NewAuthService(client, sessions, notify),
	}, nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *app) cart() *service.CartService {
	return service.NewCartService(a.client, a.sessions, a.notify, a.cfg.Pricing.Cart)
}
