package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/smart-review/smart-review-cli/api/services"
	"github.com/smart-review/smart-review-cli/api/transport"
	"github.com/smart-review/smart-review-cli/internal/appconfig"
	"github.com/smart-review/smart-review-cli/internal/routing"
	"github.com/smart-review/smart-review-cli/internal/session"
	"github.com/smart-review/smart-review-cli/internal/signal"
	"github.com/smart-review/smart-review-cli/internal/ui"
	"github.com/spf13/cobra"
)

// app holds the process-wide dependencies every command shares.
type app struct {
	ctx         context.Context
	log         *zerolog.Logger
	config      *appconfig.Config
	store       *session.Store
	invalidated *signal.Signal
	svc         *services.Service
}

// commonSetUp loads the config, sets up logging and rehydrates the session
// before any command output is produced.
func commonSetUp(cmd *cobra.Command) (*app, error) {
	setLogging(logLevel)
	logger := log.Logger.With().Str("command", cmd.Name()).Logger()

	config, err := appconfig.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	storage, err := newStorage(config.Storage)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(storage, &logger)
	if err := store.Rehydrate(); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	invalidated := signal.New("session-invalidated")
	api := transport.New(config.API.BaseURL, config.API.Timeout, store, invalidated)

	return &app{
		ctx:         logger.WithContext(cmd.Context()),
		log:         &logger,
		config:      config,
		store:       store,
		invalidated: invalidated,
		svc:         services.New(api, store),
	}, nil
}

func newStorage(cfg appconfig.StorageConfig) (session.Storage, error) {
	switch cfg.Backend {
	case appconfig.BackendKeyring:
		return session.NewKeyringStorage(cfg.Dir, cfg.KeyringPassword)
	default:
		return session.NewFileStorage(cfg.Dir)
	}
}

// enter navigates to a screen and fails unless the guard lets the current
// identity stay on it.
func (a *app) enter(path string) (*routing.Navigator, error) {
	nav := routing.NewNavigator(a.store, a.invalidated, a.log, path)
	if nav.Current() != routing.Clean(path) {
		nav.Close()
		return nil, screenError(path, nav.Current())
	}
	return nav, nil
}

// Prompt hooks. interactive reports whether prompts can be shown at all.
var (
	interactive  = ui.IsInteractive
	chooseAction = ui.ChooseAction
	confirm      = ui.Confirm
)

var errNotLoggedIn = errors.New("not logged in; run `smart-review login`")

func screenError(requested, landed string) error {
	if landed == routing.LoginPath {
		return fmt.Errorf("%s: %w", requested, errNotLoggedIn)
	}
	return fmt.Errorf("%s is not available to your role (redirected to %s)", requested, landed)
}

// explain turns a failed call into a message for the terminal.
func explain(err error) error {
	switch {
	case errors.Is(err, transport.ErrUnauthorized):
		return fmt.Errorf("your session has expired: %w", errNotLoggedIn)
	case errors.Is(err, transport.ErrNetwork):
		return fmt.Errorf("cannot reach the review API: %w", err)
	default:
		return err
	}
}
