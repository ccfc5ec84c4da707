package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"storefront/internal/company"
	"storefront/internal/config"
	"storefront/internal/infrastructure/idempotency"
	"storefront/internal/infrastructure/logger"
	"storefront/internal/infrastructure/messaging"
	"storefront/internal/infrastructure/mysql"
	"storefront/internal/infrastructure/telemetry"
	"storefront/internal/order"
	"storefront/internal/order/usecase"
	"storefront/internal/payment"
	"storefront/internal/product"
	"storefront/internal/server"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "Apply pending migrations before serving")
}

type eventPublisher interface {
	usecase.EventPublisher
	Close() error
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	zapLogger, err := logger.New(cfg.Log, cfg.Telemetry.ServiceName)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer zapLogger.Sync()

	ctx := cmd.Context()

	shutdownTracing, err := telemetry.InitTracerProvider(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("initialising tracing: %w", err)
	}
	metricsHandler, shutdownMetrics, err := telemetry.InitMeterProvider(cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("initialising metrics: %w", err)
	}
	metrics, err := telemetry.NewMetrics(otel.Meter("storefront"))
	if err != nil {
		return fmt.Errorf("creating instruments: %w", err)
	}

	if migrateOnStart {
		if err := withMigrator(applyMigrations); err != nil {
			return err
		}
		zapLogger.Info("migrations applied")
	}

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()
	zapLogger.Info("database connected")

	txManager := mysql.NewTxManager(db, cfg.Order.TxTimeout, cfg.Order.LockWaitTimeout)

	store, closeStore := newIdempotencyStore(ctx, cfg.Redis, zapLogger)
	defer closeStore()

	events := newEventPublisher(cfg.Kafka, zapLogger)
	defer func() {
		if err := events.Close(); err != nil {
			zapLogger.Warn("closing event publisher", zap.Error(err))
		}
	}()

	companies := company.NewModule(db, txManager, metrics, cfg, zapLogger)
	orders := order.NewModule(db, order.Infrastructure{
		TxManager:   txManager,
		Metrics:     metrics,
		Ledger:      companies.Ledger,
		Idempotency: store,
		Events:      events,
		Payments:    payment.NewStubGateway(zapLogger),
	}, cfg, zapLogger)

	router := server.NewRouter(server.Routes{
		Products: product.NewModule(db, zapLogger),
		Orders:   orders,
		Balances: companies.Controller,
		Metrics:  metricsHandler,
		DB:       db,
	}, zapLogger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg.Server, router, zapLogger).Run(ctx); err != nil {
		return err
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := shutdownMetrics(flushCtx); err != nil {
		zapLogger.Warn("meter provider shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(flushCtx); err != nil {
		zapLogger.Warn("tracer provider shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
	return nil
}

// newIdempotencyStore connects to Redis when an address is configured. An
// unreachable Redis at startup is logged; order creation then runs without
// idempotency until it recovers.
func newIdempotencyStore(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (usecase.IdempotencyStore, func()) {
	if cfg.Addr == "" {
		logger.Info("redis not configured, idempotency keys are ignored")
		return idempotency.NopStore{}, func() {}
	}

	client := idempotency.NewRedisClient(cfg.Addr)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable at startup", zap.String("addr", cfg.Addr), zap.Error(err))
	}

	return idempotency.NewRedisStore(client, cfg.IdempotencyTTL), func() {
		if err := client.Close(); err != nil {
			logger.Warn("closing redis client", zap.Error(err))
		}
	}
}

func newEventPublisher(cfg config.KafkaConfig, logger *zap.Logger) eventPublisher {
	if len(cfg.Brokers) == 0 {
		logger.Info("kafka not configured, order events are dropped")
		return messaging.NopPublisher{}
	}
	return messaging.NewKafkaPublisher(cfg.Brokers, cfg.OrderTopic, logger)
}
