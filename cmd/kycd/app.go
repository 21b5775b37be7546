package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kycgate/internal/events"
	jwttoken "kycgate/internal/jwt_token"
	"kycgate/internal/kyc/handler"
	kycmetrics "kycgate/internal/kyc/metrics"
	"kycgate/internal/kyc/service"
	"kycgate/internal/kyc/store/application"
	"kycgate/internal/notify"
	"kycgate/internal/platform/config"
	"kycgate/internal/platform/metrics"
	"kycgate/internal/platform/postgres"
	"kycgate/internal/platform/redis"
	"kycgate/internal/provider/fourstop"
	"kycgate/internal/provider/ratebudget"
	"kycgate/internal/users"
	"kycgate/internal/whitelist/chain"
	whitelistmetrics "kycgate/internal/whitelist/metrics"
	whitelistservice "kycgate/internal/whitelist/service"
	whiteliststore "kycgate/internal/whitelist/store"
)

// app holds the wired dependency graph shared by every command.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	metrics   *metrics.Metrics
	kyc       *service.Service
	whitelist *whitelistservice.Service
	users     userStore
	jwt       *jwttoken.JWTService
	db        *sql.DB
	redis     *redis.Client
	closers   []func()
}

type userStore interface {
	service.UserDirectory
	handler.UserLookup
}

// storeSet groups the record stores so the postgres and in-memory variants
// are chosen in one place.
type storeSet struct {
	apps      service.ApplicationStore
	users     userStore
	payloads  fourstop.PayloadStore
	whitelist whitelistservice.Store
}

func buildApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
		jwt:     jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer),
	}

	stores, err := a.openStores(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.users = stores.users

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := events.NewKafkaPublisher(ctx, cfg.Kafka)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect kafka: %w", err)
		}
		a.closers = append(a.closers, kp.Close)
		publisher = kp
		logger.Info("publishing lifecycle events", "topic", cfg.Kafka.Topic)
	}

	var whitelister whitelistservice.Whitelister
	if cfg.Chain.RPCURL != "" {
		rpc, err := chain.NewRPC(cfg.Chain, chain.WithLogger(logger), chain.WithMaxBatch(cfg.Whitelist.MaxBatch))
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("configure chain: %w", err)
		}
		whitelister = rpc
	} else {
		logger.Warn("no chain RPC configured, whitelisting is logged only")
		whitelister = chain.NewStub(logger)
	}
	a.whitelist = whitelistservice.New(stores.whitelist, whitelister, cfg.Whitelist,
		whitelistservice.WithLogger(logger),
		whitelistservice.WithMetrics(whitelistmetrics.New()),
		whitelistservice.WithPublisher(publisher),
	)

	var sender notify.Sender
	if cfg.Email.Host != "" {
		sender = notify.NewSMTPSender(cfg.Email)
	} else {
		logger.Warn("no SMTP host configured, emails are logged only")
		sender = notify.NewLogSender(logger)
	}

	verifier := fourstop.New(cfg.Provider, stores.payloads,
		fourstop.WithLogger(logger),
		fourstop.WithMetrics(fourstop.NewMetrics()),
		fourstop.WithConcurrency(cfg.Lifecycle.Concurrency),
	)

	var budget service.Budget
	if a.redis != nil {
		budget = ratebudget.NewRedis(a.redis.Client, cfg.Provider.RequestsPerSecond, time.Second, ratebudget.WithLogger(logger))
	} else {
		budget = ratebudget.NewLocal(cfg.Provider.RequestsPerSecond, time.Second)
	}

	a.kyc = service.New(stores.apps, verifier, stores.users, notify.New(sender, notify.WithLogger(logger)), a.whitelist, cfg.Lifecycle,
		service.WithLogger(logger),
		service.WithMetrics(kycmetrics.New()),
		service.WithPublisher(publisher),
		service.WithBudget(budget),
		service.WithBatchSize(cfg.Provider.RequestsPerSecond),
	)
	return a, nil
}

func (a *app) openStores(ctx context.Context) (storeSet, error) {
	if a.cfg.Redis.URL != "" {
		client, err := redis.New(ctx, a.cfg.Redis)
		if err != nil {
			return storeSet{}, err
		}
		a.redis = client
		a.closers = append(a.closers, func() { _ = client.Close() })
	}

	if a.cfg.Postgres.DSN == "" {
		a.logger.Warn("no DATABASE_URL configured, using in-memory stores")
		return storeSet{
			apps:      application.NewInMemory(),
			users:     users.NewInMemory(),
			payloads:  fourstop.NewInMemory(),
			whitelist: whiteliststore.NewInMemory(),
		}, nil
	}

	db, err := postgres.Open(ctx, a.cfg.Postgres)
	if err != nil {
		return storeSet{}, fmt.Errorf("open postgres: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, func() { _ = db.Close() })
	return storeSet{
		apps:      application.NewPostgres(db),
		users:     users.NewPostgres(db),
		payloads:  fourstop.NewPostgres(db),
		whitelist: whiteliststore.NewPostgres(db),
	}, nil
}

// Health reports whether the backing stores answer.
func (a *app) Health(ctx context.Context) error {
	var errs []error
	if a.db != nil {
		if err := a.db.PingContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Health(ctx); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Close releases connections in reverse order of opening.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
