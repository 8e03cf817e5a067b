package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/quartz"

	"schwimmen/cmd/schwimmen/shared"
	"schwimmen/internal/randutil"
	"schwimmen/internal/server"
)

// ServerCmd runs the game server
type ServerCmd struct {
	Addr          string        `kong:"help='Listen address, overrides the config file'"`
	Config        string        `kong:"default='schwimmen.hcl',help='HCL config file (missing file means defaults)'"`
	Debug         bool          `kong:"help='Enable debug logging'"`
	Seed          *int64        `kong:"help='Deterministic RNG seed (optional)'"`
	StartingLives int           `kong:"default='0',help='Override starting lives'"`
	AIDelayMin    time.Duration `kong:"default='0',help='Override minimum AI think time'"`
	AIDelayMax    time.Duration `kong:"default='0',help='Override maximum AI think time'"`
}

func (c *ServerCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	fileCfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return err
	}
	if err := fileCfg.Validate(); err != nil {
		return err
	}
	if !c.Debug {
		shared.ParseLevel(logger, fileCfg.Server.LogLevel)
	}

	addr := fileCfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	cfg := fileCfg.GameConfig()
	if c.StartingLives > 0 {
		cfg.StartingLives = c.StartingLives
	}
	if c.AIDelayMin > 0 {
		cfg.MinAIDelay = c.AIDelayMin
	}
	if c.AIDelayMax > 0 {
		cfg.MaxAIDelay = c.AIDelayMax
	}
	if cfg.MinAIDelay > cfg.MaxAIDelay {
		return fmt.Errorf("AI delay minimum %s exceeds maximum %s", cfg.MinAIDelay, cfg.MaxAIDelay)
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	}
	rng := randutil.New(seed)

	gameService := server.NewGameService(cfg, quartz.NewReal(), rng, logger)
	srv := server.NewServer(addr, gameService, logger)

	logger.Info("Starting Schwimmen server",
		"addr", addr,
		"startingLives", cfg.StartingLives,
		"aiDelayMin", cfg.MinAIDelay,
		"aiDelayMax", cfg.MaxAIDelay)

	ctx := shared.SetupSignalHandler(logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		return srv.Stop()
	case err := <-serverErr:
		return err
	}
}
