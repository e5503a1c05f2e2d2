// Package app wires configuration into a ready ReminderService. Both the
// HTTP server and the scheduler binary build on it.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/segyhp/reminder-engine/internal/config"
	"github.com/segyhp/reminder-engine/internal/mailer"
	"github.com/segyhp/reminder-engine/internal/repository"
	"github.com/segyhp/reminder-engine/internal/service"
	"github.com/segyhp/reminder-engine/pkg/utils"
)

const runSummaryTTL = 7 * 24 * time.Hour

type App struct {
	DB      *sqlx.DB
	Redis   *redis.Client
	Runs    repository.RunSummaryCache
	Service *service.ReminderService
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := initDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	a := &App{DB: db}

	var locker repository.Locker
	if cfg.RedisEnabled() {
		a.Redis, err = initRedis(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("initialize redis: %w", err)
		}
		locker = repository.NewRedisLocker(a.Redis, cfg.Dispatch.ClaimTTL)
		a.Runs = repository.NewRunSummaryCache(a.Redis, runSummaryTTL)
	} else {
		logger.Warn("REDIS_URL not set, claims are only coordinated within this process")
		locker = repository.NewMemoryLocker()
		a.Runs = repository.NewMemoryRunSummaryCache()
	}

	transport, err := NewTransport(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	renderer, err := mailer.NewRenderer()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Service = service.NewReminderService(service.Dependencies{
		LoanRepo:     repository.NewLoanRepository(db),
		SettingsRepo: repository.NewSettingsRepository(db),
		AuditRepo:    repository.NewAuditLogRepository(db),
		Locker:       locker,
		RunCache:     a.Runs,
		Renderer:     renderer,
		Transport:    transport,
		Clock:        utils.SystemClock,
		Logger:       logger.Named("dispatch"),
	}, service.Options{
		Workers:     cfg.Dispatch.Workers,
		SendTimeout: cfg.Dispatch.SendTimeout,
		Location:    cfg.Location(),
	})

	return a, nil
}

// NewTransport selects the mail transport named by MAIL_PROVIDER
func NewTransport(ctx context.Context, cfg *config.Config) (mailer.Transport, error) {
	switch cfg.Mail.Provider {
	case config.MailProviderSES:
		transport, err := mailer.NewSESTransportFromRegion(ctx, cfg.Mail.AWSRegion)
		if err != nil {
			return nil, err
		}
		return transport, nil
	case config.MailProviderSMTP, "":
		return mailer.NewSMTPTransport(cfg.Mail.ImplicitTLS), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Mail.Provider)
	}
}

func (a *App) Close() {
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
