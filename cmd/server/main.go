package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"vaultgate/internal/event"
	httpapi "vaultgate/internal/http"
	"vaultgate/internal/platform/config"
	"vaultgate/internal/platform/httpserver"
	"vaultgate/internal/platform/logger"
	"vaultgate/internal/platform/metrics"
	"vaultgate/internal/platform/postgres"
	platformredis "vaultgate/internal/platform/redis"
	"vaultgate/internal/platform/token"
	"vaultgate/internal/treasury"
	treasuryhandler "vaultgate/internal/treasury/handler"
	wallethandler "vaultgate/internal/wallet/handler"
	"vaultgate/internal/wallet/lock"
	walletmetrics "vaultgate/internal/wallet/metrics"
	"vaultgate/internal/wallet/registry"
	"vaultgate/internal/wallet/service"
	"vaultgate/internal/wallet/store"
	id "vaultgate/pkg/domain"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	owners := make([]id.Address, 0, len(cfg.Owners))
	for _, raw := range cfg.Owners {
		owner, err := id.ParseAddress(raw)
		if err != nil {
			return err
		}
		owners = append(owners, owner)
	}

	// Events go to kafka when brokers are configured, otherwise to an
	// in-memory sink so the rest of the wiring stays identical.
	var publisher event.Publisher
	var kafkaPublisher *event.KafkaPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		var err error
		kafkaPublisher, err = event.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return err
		}
		publisher = kafkaPublisher
	} else {
		publisher = event.NewMemorySink()
		log.Warn("kafka not configured, events stay in memory")
	}

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	var ledger service.Ledger
	var treasuryStore treasury.Store
	if pool != nil {
		ledgerStore := store.NewPostgres(pool)
		if err := ledgerStore.Migrate(ctx); err != nil {
			return err
		}
		pgTreasury := treasury.NewPostgresStore(pool)
		if err := pgTreasury.Migrate(ctx); err != nil {
			return err
		}
		ledger = ledgerStore
		treasuryStore = pgTreasury
	} else {
		ledger = store.NewMemory()
		treasuryStore = treasury.NewMemoryStore()
		log.Warn("postgres not configured, ledger and treasury stay in memory")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	reg, err := registry.New(ctx, owners, cfg.RequiredApprovals,
		registry.WithLogger(log),
		registry.WithPublisher(publisher),
	)
	if err != nil {
		return err
	}

	treasurySvc := treasury.NewService(treasuryStore,
		treasury.WithLogger(log),
		treasury.WithPublisher(publisher),
		treasury.WithMetrics(treasury.NewMetrics()),
	)

	walletOpts := []service.Option{
		service.WithLogger(log),
		service.WithPublisher(publisher),
		service.WithMetrics(walletmetrics.New()),
	}
	if redisClient != nil {
		walletOpts = append(walletOpts,
			service.WithExecutionLock(lock.NewRedisLocker(redisClient.Client, cfg.ExecutionLockTTL)))
	}
	walletSvc := service.New(reg, ledger, treasurySvc, walletOpts...)

	platformMetrics := metrics.New()
	validator := token.NewValidator(cfg.JWTSigningKey)
	router := httpapi.NewRouter(
		wallethandler.New(walletSvc, log, platformMetrics, validator),
		treasuryhandler.New(treasurySvc, log, platformMetrics, validator),
	)

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting vaultgate",
		"addr", cfg.Addr,
		"owners", len(owners),
		"required_approvals", cfg.RequiredApprovals,
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if kafkaPublisher != nil {
			if err := kafkaPublisher.Close(shutdownCtx); err != nil {
				log.Warn("failed to flush event publisher", "error", err)
			}
		}
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
