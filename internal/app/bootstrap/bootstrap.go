package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"time"

	marketengine "mediex/contexts/exchange-core/market-engine"
	"mediex/contexts/exchange-core/market-engine/adapters/memory"
	postgresadapter "mediex/contexts/exchange-core/market-engine/adapters/postgres"
	"mediex/contexts/exchange-core/market-engine/adapters/registryhttp"
	workerapp "mediex/contexts/exchange-core/market-engine/application/workers"
	"mediex/contexts/exchange-core/market-engine/ports"
	"mediex/internal/platform/config"
	"mediex/internal/platform/db"
	"mediex/internal/platform/httpserver"
	"mediex/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  workerapp.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	var app APIApp
	deps := marketengine.Dependencies{
		Deployer: cfg.DeployerID,
		Logger:   logger,
	}

	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err := db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		app.postgres = pg

		repo := postgresadapter.NewRepository(pg.DB, logger)
		deps.Bids = repo
		deps.Asks = repo
		deps.Shares = repo
		deps.Binding = repo
		deps.Vault = repo
		deps.Outbox = repo
		deps.Clock = postgresadapter.SystemClock{}
		deps.IDGen = postgresadapter.UUIDGenerator{}
	} else {
		store := memory.NewStore()
		deps.Bids = store
		deps.Asks = store
		deps.Shares = store
		deps.Binding = store
		deps.Vault = store
		deps.Outbox = store
		deps.Clock = store
		deps.IDGen = store
	}

	deps.Registry = buildRegistry(cfg)

	module := marketengine.NewModule(deps)
	app.server = httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	app.logger = logger
	return &app, nil
}

func buildRegistry(cfg config.Config) ports.MediaRegistry {
	if strings.TrimSpace(cfg.RegistryBaseURL) != "" {
		return registryhttp.NewClient(cfg.RegistryBaseURL, cfg.RegistryTimeout)
	}
	return memory.NewRegistry()
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	relay := workerapp.OutboxRelay{
		Publisher: kafka,
		Topic:     cfg.OutboxTopic,
		BatchSize: cfg.OutboxBatchSize,
		Logger:    logger,
	}

	var app WorkerApp
	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err := db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		app.postgres = pg

		repo := postgresadapter.NewRepository(pg.DB, logger)
		relay.Outbox = repo
		relay.Clock = postgresadapter.SystemClock{}
	} else {
		store := memory.NewStore()
		relay.Outbox = store
		relay.Clock = store
	}

	app.outboxRelay = relay
	app.pollInterval = cfg.OutboxPollInterval
	app.logger = logger
	return &app, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
