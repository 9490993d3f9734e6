package wealthapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/wealth-management/internal/cache"
	"github.com/magabrotheeeer/wealth-management/internal/config"
	"github.com/magabrotheeeer/wealth-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wealth-management/internal/lib/jwt"
	"github.com/magabrotheeeer/wealth-management/internal/lib/password"
	"github.com/magabrotheeeer/wealth-management/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/wealth-management/internal/lib/sl"
	"github.com/magabrotheeeer/wealth-management/internal/migrations"
	"github.com/magabrotheeeer/wealth-management/internal/services/asset"
	"github.com/magabrotheeeer/wealth-management/internal/services/auth"
	"github.com/magabrotheeeer/wealth-management/internal/services/goal"
	"github.com/magabrotheeeer/wealth-management/internal/services/portfolio"
	"github.com/magabrotheeeer/wealth-management/internal/services/subscription"
	"github.com/magabrotheeeer/wealth-management/internal/services/transaction"
	"github.com/magabrotheeeer/wealth-management/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App HTTP API со всеми зависимостями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключает хранилище, применяет миграции, поднимает кеш и канал
// RabbitMQ и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "wealthapi.New"

	tokens, err := jwt.NewJWTMaker(cfg.Auth.SecretKey, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.PaymentsExchange, rabbitmq.PaymentQueues())
	if err != nil {
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	authService := auth.New(logger, db, password.NewHasher(cfg.Auth.HashCost), tokens)
	services := Services{
		Resolver:      authService,
		Users:         authService,
		Portfolios:    portfolio.New(logger, db),
		Assets:        asset.New(logger, db, db),
		Goals:         goal.New(logger, db),
		Transactions:  transaction.New(logger, db, db),
		Subscriptions: subscription.New(logger, db, cacheRedis, rabbitmq.NewPublisher(ch, rabbitmq.PaymentsExchange), cfg.RedisConnection.PlansTTL),
		Ready: func(ctx context.Context) error {
			return repository.CheckDatabaseReady(ctx, db)
		},
	}

	origins := cfg.HTTPServer.AllowedOrigins
	if len(origins) == 0 {
		origins = config.DefaultAllowedOrigins
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, services, RouterOptions{
		AllowedOrigins: origins,
		Metrics:        middlewarectx.NewMetrics(prometheus.DefaultRegisterer),
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run обслуживает запросы до отмены ctx, затем останавливает сервер
// с таймаутом и закрывает зависимости.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
