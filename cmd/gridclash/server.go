package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/gridclash/cmd/gridclash/shared"
	"github.com/lox/gridclash/internal/game"
	"github.com/lox/gridclash/internal/server"
)

// ServerCmd contains core server configuration
type ServerCmd struct {
	Config   string `kong:"short='c',default='gridclash-server.hcl',help='Path to HCL configuration file'"`
	Addr     string `kong:"short='a',help='Server address to bind to (overrides config)'"`
	Debug    bool   `kong:"help='Enable debug logging'"`
	GridSize int    `kong:"help='Active grid size, 5 to 7 (overrides config)'"`
	Seed     *int64 `kong:"help='Deterministic RNG seed for new sessions (optional)'"`
}

func (c *ServerCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Apply command line overrides
	if c.GridSize != 0 {
		cfg.Game.GridSize = c.GridSize
	}
	if c.Seed != nil {
		cfg.Game.Seed = c.Seed
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !c.Debug {
		shared.SetLevelFromString(logger, cfg.Server.LogLevel)
	}

	addr := cfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	settings, err := buildSettings(cfg)
	if err != nil {
		return err
	}

	wsServer := server.NewServer(logger)
	gameService := server.NewGameService(wsServer, logger, nil, settings)
	wsServer.SetGameService(gameService)

	logger.Info("Starting gridclash server",
		"addr", addr,
		"gridSize", cfg.Game.GridSize,
		"handSize", cfg.Game.HandSize,
		"deck", cfg.Game.Deck)

	ctx := shared.SetupSignalHandlerWithLogger(logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := wsServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return wsServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildSettings resolves card set and deck files into service settings.
func buildSettings(cfg *server.ServerConfig) (server.Settings, error) {
	settings := server.Settings{
		GridSize:     cfg.Game.GridSize,
		HandSize:     cfg.Game.HandSize,
		ReadyTimeout: time.Duration(cfg.Game.ReadyTimeoutSeconds) * time.Second,
		Seed:         cfg.Game.Seed,
	}

	if cfg.Game.CardSetFile != "" {
		set, err := game.LoadCardSet(cfg.Game.CardSetFile)
		if err != nil {
			return settings, fmt.Errorf("load card set: %w", err)
		}
		settings.CardSet = set
	}

	if cfg.Game.DeckFile != "" {
		df, err := game.LoadDeckFile(cfg.Game.DeckFile)
		if err != nil {
			return settings, fmt.Errorf("load deck file: %w", err)
		}
		deck, ok := df.DeckByName(cfg.Game.Deck)
		if !ok {
			return settings, fmt.Errorf("deck %q not found in %s", cfg.Game.Deck, cfg.Game.DeckFile)
		}
		settings.Deck = deck
	}

	return settings, nil
}
