// Package notifier собирает сервис уведомлений: читает события о платежах
// из RabbitMQ и отправляет письма через SMTP.
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/wealth-management/internal/config"
	"github.com/magabrotheeeer/wealth-management/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/wealth-management/internal/lib/sl"
	"github.com/magabrotheeeer/wealth-management/internal/lib/smtp"
	notifierservice "github.com/magabrotheeeer/wealth-management/internal/services/notifier"
)

// App потребитель очереди payment.submitted.
type App struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	notifier *notifierservice.Service
	logger   *slog.Logger
}

// New подключается к брокеру и объявляет очереди платежей.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "notifier.New"

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.PaymentsExchange, rabbitmq.PaymentQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)

	return &App{
		conn:     conn,
		ch:       ch,
		notifier: notifierservice.New(logger, transport),
		logger:   logger,
	}, nil
}

// Run обрабатывает события до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.QueuePaymentSubmitted, a.notifier.PaymentSubmitted)
	if err != nil {
		a.logger.Error("failed to start payment.submitted consumer", sl.Err(err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("notifier shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}

	return nil
}
