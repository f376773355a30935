package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"aggregator/config"
	"aggregator/consumer"
	"aggregator/driver"
	"aggregator/events"
	"aggregator/fetcher"
	"aggregator/pipeline"
	"aggregator/pubsub"
	"aggregator/repository"
	"aggregator/scheduler"
)

// Dependencies holds all application dependencies.
type Dependencies struct {
	Config     *config.Config
	DBPool     *pgxpool.Pool
	Publisher  pubsub.Publisher
	Subscriber pubsub.Subscriber
	Emitter    *events.Emitter
	Scheduler  *scheduler.Scheduler
	Consumer   *consumer.CommandConsumer
	Logger     *slog.Logger
}

// BuildDependencies constructs all application dependencies.
// Returns a cleanup function that should be deferred.
func BuildDependencies(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Dependencies, func(), error) {
	dbPool, err := driver.Init(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	publisher, err := pubsub.NewRedisPublisher(ctx, cfg.Redis.URL, log)
	if err != nil {
		dbPool.Close()
		return nil, nil, fmt.Errorf("failed to connect publisher: %w", err)
	}

	// The subscriber holds its own connection: a client in subscribe mode
	// cannot issue publishes.
	subscriber, err := pubsub.NewRedisSubscriber(ctx, cfg.Redis.URL, log)
	if err != nil {
		publisher.Close()
		dbPool.Close()
		return nil, nil, fmt.Errorf("failed to connect subscriber: %w", err)
	}

	feedRepo := repository.NewFeedRepository(dbPool, log)
	itemRepo := repository.NewItemRepository(dbPool, log)
	errorRepo := repository.NewErrorRepository(dbPool, log)

	emitter := events.NewEmitter(publisher, errorRepo, log)
	fetchClient := fetcher.NewClient(cfg.Fetch, log)
	processor := pipeline.NewProcessor(itemRepo, emitter, log)
	sched := scheduler.New(feedRepo, fetchClient, processor, emitter, log, cfg.Scheduler.MinRefresh)
	commandConsumer := consumer.NewCommandConsumer(subscriber, sched, emitter, log)

	cleanup := func() {
		if err := subscriber.Close(); err != nil {
			log.Error("failed to close subscriber", "error", err)
		}
		if err := publisher.Close(); err != nil {
			log.Error("failed to close publisher", "error", err)
		}
		dbPool.Close()
	}

	return &Dependencies{
		Config:     cfg,
		DBPool:     dbPool,
		Publisher:  publisher,
		Subscriber: subscriber,
		Emitter:    emitter,
		Scheduler:  sched,
		Consumer:   commandConsumer,
		Logger:     log,
	}, cleanup, nil
}

// pingDependencies reports store and broker health for the ops endpoint.
func pingDependencies(ctx context.Context, deps *Dependencies) map[string]string {
	status := map[string]string{"database": "ok"}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := deps.DBPool.Ping(pingCtx); err != nil {
		status["database"] = err.Error()
	}

	return status
}
