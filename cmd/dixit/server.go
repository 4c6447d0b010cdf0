package main

import (
	"fmt"

	"github.com/coder/quartz"

	"github.com/lox/dixit/cmd/dixit/shared"
	"github.com/lox/dixit/internal/chat"
	"github.com/lox/dixit/internal/config"
	"github.com/lox/dixit/internal/game"
	"github.com/lox/dixit/internal/randutil"
	"github.com/lox/dixit/internal/server"
	"github.com/lox/dixit/internal/users"
)

// ServerCmd runs the HTTP and websocket server
type ServerCmd struct {
	Config   string `short:"c" default:"dixit.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Seed     *int64 `help:"Deterministic RNG seed for the server (optional)"`
}

func (c *ServerCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := shared.SetupLogger(cfg.Server.LogLevel)
	if err != nil {
		return err
	}

	rng, seed := randutil.FromFlag(c.Seed)
	logger.Info("Using seed", "seed", seed)

	sets, err := cfg.LoadCardSets()
	if err != nil {
		return fmt.Errorf("failed to load card sets: %w", err)
	}
	for _, cs := range sets {
		if cs.Size() < game.HandSize {
			logger.Warn("Card set is too small to deal a hand", "set", cs.Name, "cards", cs.Size())
		}
		logger.Info("Loaded card set", "set", cs.Name, "cards", cs.Size(), "default", cs.Default)
	}

	clock := quartz.NewReal()
	limits := cfg.GameLimits()
	reg := users.NewRegistry(limits.MinUserName, limits.MaxUserName, clock)
	names := func(id game.UserID) string {
		if u, ok := reg.ByPublicID(string(id)); ok {
			return u.Name
		}
		return string(id)
	}
	lobby := server.NewLobby(logger, rng, clock, names, limits, sets)
	s := server.New(logger, clock, lobby, reg, chat.NewLog(cfg.Server.ChatCapacity, clock), server.Options{
		Addr:          cfg.Server.Address,
		StaticDir:     cfg.Server.StaticDir,
		GameTTL:       cfg.GameTTL(),
		SweepInterval: cfg.SweepInterval(),
	})

	logger.Info("Starting Dixit server",
		"addr", cfg.Server.Address,
		"cardSets", len(sets),
		"gameTTL", cfg.GameTTL(),
		"minPlayers", limits.MinPlayers,
		"maxPlayers", limits.MaxPlayers)

	return s.Run(shared.SetupSignalHandler(logger))
}
