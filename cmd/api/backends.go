package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"agendaapi/internal/cache"
	"agendaapi/internal/config"
	"agendaapi/internal/database"
	"agendaapi/internal/database/migration"
	"agendaapi/internal/notify"
	"agendaapi/internal/repository/postgres"
	"agendaapi/internal/service"
	"agendaapi/internal/storage"
)

// backends holds every external dependency the agenda needs.
// Optional backends are replaced by no-op implementations when unconfigured.
type backends struct {
	db          *sql.DB
	rdb         *redis.Client
	publisher   notify.Publisher
	agenda      service.AgendaService
	attachments service.AttachmentService
}

// openBackends connects to PostgreSQL, applies migrations and wires the
// optional MinIO, Redis and AMQP clients into the services.
func openBackends(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*backends, error) {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	b := &backends{db: db, publisher: notify.NopPublisher{}}

	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		return nil, multierr.Append(fmt.Errorf("migrate database: %w", err), b.Close())
	}

	var store storage.Storage
	if cfg.MinIO.Enabled() {
		store, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("init object storage: %w", err), b.Close())
		}
		logger.Info("storage_enabled", zap.String("endpoint", cfg.MinIO.Endpoint), zap.String("bucket", cfg.MinIO.Bucket))
	} else {
		logger.Warn("storage_disabled")
	}

	var viewCache cache.ViewCache = cache.NopCache{}
	if cfg.Redis.Enabled() {
		b.rdb, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("init redis: %w", err), b.Close())
		}
		rc, err := cache.NewRedisCache(b.rdb, cfg.Redis.Prefix, cfg.Redis.TTL, logger)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("init view cache: %w", err), b.Close())
		}
		viewCache = rc
		logger.Info("cache_enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.TTL))
	}

	if cfg.AMQP.Enabled() {
		pub, err := notify.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("init publisher: %w", err), b.Close())
		}
		b.publisher = pub
		logger.Info("notifications_enabled", zap.String("queue", cfg.AMQP.Queue))
	}

	events := postgres.NewAgendaEventPostgres(db)
	attachmentRepo := postgres.NewAttachmentPostgres(db)

	b.agenda = service.NewAgendaService(service.AgendaDeps{
		Events:      events,
		Attachments: attachmentRepo,
		Store:       store,
		Cache:       viewCache,
		Publisher:   b.publisher,
		Location:    cfg.Location(),
		Logger:      logger,
	})
	b.attachments = service.NewAttachmentService(store, events, attachmentRepo)

	return b, nil
}

// Close releases every open connection, collecting all errors.
func (b *backends) Close() error {
	var err error
	if b.publisher != nil {
		err = multierr.Append(err, b.publisher.Close())
	}
	if b.rdb != nil {
		err = multierr.Append(err, b.rdb.Close())
	}
	if b.db != nil {
		err = multierr.Append(err, b.db.Close())
	}
	return err
}
