package root

import (
	"context"
	"strings"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/config"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/engine"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/logging"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/random"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/storage"
)

func loadConfig() (config.Config, error) {
	var cfg config.Config
	if err := config.ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if v := strings.TrimSpace(globalFlags.dbPath); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(globalFlags.store); v != "" {
		cfg.Store = v
	}
	if v := strings.TrimSpace(globalFlags.logLevel); v != "" {
		cfg.LogLevel = v
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.Store == config.StoreMemory {
		return storage.NewMemoryStore(), nil
	}
	path, err := storage.ResolveDBPath(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return storage.Open(ctx, path)
}

// openService wires config, logger, store and engine for one command.
func openService(ctx context.Context) (*engine.Service, config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, nil, err
	}
	logger := logging.NewLogger(logging.LogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat})
	loc, err := cfg.Location()
	if err != nil {
		return nil, cfg, nil, err
	}
	src, err := random.New(cfg.Seed)
	if err != nil {
		return nil, cfg, nil, err
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, cfg, nil, err
	}
	logger.Debug("store opened", "backend", cfg.Store, "path", cfg.DBPath)

	svc := engine.NewService(store,
		engine.WithLogger(logger),
		engine.WithLocation(loc),
		engine.WithRandom(src),
	)
	cleanup := func() {
		_ = store.Close()
	}
	return svc, cfg, cleanup, nil
}
