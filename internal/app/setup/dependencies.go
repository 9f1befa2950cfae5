package setup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/LavaJover/shvark-payment-service/internal/config"
	"github.com/LavaJover/shvark-payment-service/internal/domain"
	publisher "github.com/LavaJover/shvark-payment-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/lock"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/wechatpay"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config        *config.PaymentConfig
	DB            *gorm.DB
	Publisher     domain.PublisherPort
	Locker        domain.OrderLocker
	Gateway       domain.PaymentGateway
	Registry      *prometheus.Registry
	Metrics       *metrics.PaymentMetrics
	ServerMetrics *metrics.ServerMetrics
	Repositories  *Repositories

	closers []func() error
}

type Repositories struct {
	OrderRepo       domain.OrderRepository
	TransactionRepo domain.TransactionRepository
	OutboxRepo      domain.OutboxRepository
}

func InitializeDependencies(cfg *config.PaymentConfig) (*Dependencies, error) {
	db := postgres.MustInitDB(cfg)
	deps := &Dependencies{Config: cfg, DB: db}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	deps.Registry = registry
	deps.Metrics = metrics.NewPaymentMetrics(registry)
	deps.ServerMetrics = metrics.NewServerMetrics(registry)

	deps.Repositories = &Repositories{
		OrderRepo:       repository.NewDefaultOrderRepository(db, cfg.Kafka.Topic),
		TransactionRepo: repository.NewDefaultTransactionRepository(db),
		OutboxRepo:      repository.NewDefaultOutboxRepository(db),
	}

	deps.Publisher = initPublisher(cfg, deps)

	locker, err := initLocker(cfg, deps)
	if err != nil {
		return nil, fmt.Errorf("order locker: %w", err)
	}
	deps.Locker = locker

	gateway, err := wechatpay.NewClient(cfg.WechatPay)
	if err != nil {
		return nil, fmt.Errorf("wechat pay client: %w", err)
	}
	deps.Gateway = gateway

	return deps, nil
}

// Ping reports whether the database answers.
func (d *Dependencies) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases connections in reverse order of creation.
func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	}
	return errors.Join(errs...)
}

func initPublisher(cfg *config.PaymentConfig, deps *Dependencies) domain.PublisherPort {
	if !cfg.Kafka.Enabled || len(cfg.Kafka.Brokers) == 0 {
		slog.Warn("kafka disabled, order events are logged instead of published")
		return publisher.LogPublisher{Log: slog.Info}
	}

	pub := publisher.NewDefaultKafkaPublisher(cfg.Kafka.Brokers)
	deps.closers = append(deps.closers, pub.Close)
	return pub
}

func initLocker(cfg *config.PaymentConfig, deps *Dependencies) (domain.OrderLocker, error) {
	switch strings.ToLower(cfg.Lock.Driver) {
	case "", "memory":
		return lock.NewMemoryLocker(), nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
		}
		deps.closers = append(deps.closers, rdb.Close)
		return lock.NewRedisLocker(lock.NewRedsync(rdb), cfg.Lock.Expiry, cfg.Lock.Tries), nil
	default:
		return nil, fmt.Errorf("unknown lock driver %q", cfg.Lock.Driver)
	}
}
