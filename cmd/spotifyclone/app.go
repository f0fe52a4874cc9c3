package cmd

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/toozej/spotifyclone/internal/auth"
	"github.com/toozej/spotifyclone/internal/browse"
	"github.com/toozej/spotifyclone/internal/library"
	"github.com/toozej/spotifyclone/internal/search"
	"github.com/toozej/spotifyclone/internal/spotify"
	"github.com/toozej/spotifyclone/internal/store"
	"github.com/toozej/spotifyclone/pkg/config"
)

var errNotSignedIn = errors.New("not signed in: run 'spotifyclone login' first")

// app bundles the services a command needs. It owns the settings store and
// must be closed.
type app struct {
	settings store.Settings
	tokens   *auth.Manager
	client   *spotify.Client
	browse   *browse.Service
	search   *search.Searcher
	library  *library.Service
}

// newApp initializes all services from cfg.
func newApp(cfg config.Config) (*app, error) {
	logger := log.StandardLogger()

	settings, err := store.Open(cfg.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}

	tokens := auth.NewManager(cfg.Spotify, settings, logger)
	client := spotify.NewClient(cfg.Spotify, tokens, logger)

	return &app{
		settings: settings,
		tokens:   tokens,
		client:   client,
		browse:   browse.NewService(client, logger),
		search:   search.NewSearcher(client, logger),
		library:  library.NewService(client, logger),
	}, nil
}

// signedInApp is newApp for commands that call the Web API.
func signedInApp(cfg config.Config) (*app, error) {
	a, err := newApp(cfg)
	if err != nil {
		return nil, err
	}
	if !a.tokens.IsSignedIn() {
		a.Close()
		return nil, errNotSignedIn
	}
	return a, nil
}

func (a *app) Close() {
	if err := a.settings.Close(); err != nil {
		log.WithError(err).Warn("Failed to close settings store")
	}
}
