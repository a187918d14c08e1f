package main

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/naveenspark/finadmin/internal/config"
	"github.com/naveenspark/finadmin/internal/logging"
	"github.com/naveenspark/finadmin/internal/query"
	"github.com/naveenspark/finadmin/internal/session"
	"github.com/naveenspark/finadmin/internal/tui"
	"github.com/naveenspark/finadmin/pkg/client"
)

// environment carries the persistent flags every command wires from.
type environment struct {
	dir string
}

// settingsDir returns --config-dir or ~/.finadmin.
func (e *environment) settingsDir() (string, error) {
	if e.dir != "" {
		return e.dir, nil
	}
	return config.DefaultDir()
}

// with wires the app, runs fn and releases the log file.
func (e *environment) with(fn func(*app) error) error {
	a, err := e.wire()
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}

type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	closeLog func() error
	store    session.TokenStore
	gate     *session.Gate
	client   *client.Client
	cache    *query.Cache
}

func (e *environment) wire() (*app, error) {
	dir, err := e.settingsDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(viper.New(), dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, closeLog, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	// FINADMIN_TOKEN wins over the token file and is never written to disk.
	var store session.TokenStore
	if cfg.Token != "" {
		store = session.NewMemoryStore(cfg.Token)
	} else {
		store = session.NewFileStore(cfg.Dir)
	}

	gate := session.NewGate(store, session.WithLogger(log.With().Str("component", "session").Logger()))
	c := client.New(cfg.APIURL,
		client.WithTokenSource(gate),
		client.WithUnauthorizedHandler(gate.Expire),
		client.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		client.WithLogger(log.With().Str("component", "client").Logger()),
	)
	cache := query.New(
		query.WithStaleTime(cfg.StaleTime),
		query.WithLogger(log.With().Str("component", "query").Logger()),
	)

	log.Debug().Str("api_url", cfg.APIURL).Str("dir", cfg.Dir).Msg("wired")

	return &app{
		cfg:      cfg,
		log:      log,
		closeLog: closeLog,
		store:    store,
		gate:     gate,
		client:   c,
		cache:    cache,
	}, nil
}

func (a *app) services() *tui.Services {
	return &tui.Services{
		Client:  a.client,
		Gate:    a.gate,
		Cache:   a.cache,
		Log:     a.log.With().Str("component", "tui").Logger(),
		WebURL:  a.cfg.WebURL,
		Refresh: a.cfg.RefreshInterval,
		Days:    a.cfg.Days,
	}
}

func (a *app) close() {
	a.cache.Reset()
	if a.closeLog != nil {
		_ = a.closeLog()
	}
}
