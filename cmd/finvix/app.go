package main

import (
	"fmt"

	"github.com/finvix/finvix/internal/api"
	"github.com/finvix/finvix/internal/config"
	"github.com/finvix/finvix/internal/history"
	"github.com/finvix/finvix/internal/session"
)

// app wires the pieces every command needs: config, the persisted
// session, the auth state machine, and the API client bound to them.
type app struct {
	cfg    config.Config
	store  *session.Store
	auth   *session.Auth
	client *api.Client
}

// Swappable in tests.
var newApp = func() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	store, err := session.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	a := &app{cfg: cfg, store: store}
	a.auth = session.NewAuth(store, func() {
		printWarning("Session expired. Please log in again.")
	})
	a.client = api.New(cfg.API.BaseURL, cfg.Timeout(),
		api.WithTokenSource(store.Token),
		api.WithAuthExpiredHandler(a.auth.Expire),
	)
	return a, nil
}

// requireSession rejects protected commands before any request goes
// out, mirroring the login redirect a missing session causes anyway.
func (a *app) requireSession() error {
	if a.store.Token() == "" {
		return fmt.Errorf("not logged in — run `finvix login <username>` first")
	}
	return nil
}

func (a *app) openHistory() (*history.Store, error) {
	return history.Open(a.cfg.Storage.DataDir)
}
