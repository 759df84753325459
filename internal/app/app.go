package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat-server/internal/config"
	"github.com/vovakirdan/linechat-server/internal/core"
	"github.com/vovakirdan/linechat-server/internal/transport/admin"
	"github.com/vovakirdan/linechat-server/internal/transport/tcp"
)

// App wires together the store and the transport layers.
type App struct {
	chat            *tcp.Server
	adminServer     *stdhttp.Server
	state           *core.State
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New constructs the application and seeds the configured channels into the
// store before the acceptor starts.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	state := core.NewState()

	for _, seed := range cfg.Channels {
		kind, err := core.ParseChannelKind(seed.Kind)
		if err != nil {
			return nil, fmt.Errorf("seed channel %q: %w", seed.Name, err)
		}
		id := state.SeedChannel(seed.Name, kind)
		logger.Info().
			Uint64("channel_id", uint64(id)).
			Str("name", seed.Name).
			Str("kind", kind.String()).
			Msg("seeded channel")
	}

	a := &App{
		chat:            tcp.NewServer(cfg.Addr, state, logger),
		state:           state,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}
	if cfg.AdminAddr != "" {
		a.adminServer = admin.NewServer(cfg.AdminAddr, state, logger)
	}
	return a, nil
}

// State exposes the store, for the admin surface and tests.
func (a *App) State() *core.State {
	return a.state
}

// Run starts the chat acceptor and the admin server and blocks until context
// cancellation or a fatal error. A chat bind failure is fatal; so is an
// admin bind failure, since a half-started process is worse than a loud one.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 2)

	go func() {
		serverErr <- a.chat.Run(ctx)
	}()

	if a.adminServer != nil {
		a.log.Info().Str("addr", a.adminServer.Addr).Msg("starting admin server")
		go func() {
			if err := a.adminServer.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
				serverErr <- fmt.Errorf("admin server: %w", err)
				return
			}
			serverErr <- nil
		}()
	}

	select {
	case err := <-serverErr:
		a.shutdownAdmin()
		return err
	case <-ctx.Done():
		a.shutdownAdmin()
		return <-serverErr
	}
}

func (a *App) shutdownAdmin() {
	if a.adminServer == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	a.log.Info().Msg("shutting down admin server")
	if err := a.adminServer.Shutdown(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("admin server shutdown")
	}
}
