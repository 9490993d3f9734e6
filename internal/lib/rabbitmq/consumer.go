package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/wealth-management/internal/lib/sl"
)

// ErrPermanent помечает ошибку обработчика, после которой повторная доставка
// бессмысленна: сообщение отбрасывается без возврата в очередь.
var ErrPermanent = errors.New("permanent message failure")

// ConsumerMessage запускает чтение очереди queueName. Каждое сообщение
// обрабатывается handler в отдельной горутине, одновременно не больше 10.
// Ошибка handler возвращает сообщение в очередь, кроме ErrPermanent.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	go consume(ctx, log, delivery, maxInFlight, handler)
	return nil
}

const maxInFlight = 10

// consume читает deliveries до закрытия канала или отмены ctx. Сообщение,
// для которого не нашлось свободного слота до отмены, возвращается в очередь.
func consume(ctx context.Context, log *slog.Logger, deliveries <-chan amqp.Delivery, limit int, handler func([]byte) error) {
	sem := make(chan struct{}, limit)
	for {
		select {
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				if nackErr := d.Nack(false, true); nackErr != nil {
					log.Error("failed to nack message", sl.Err(nackErr))
				}
				return
			}
			go func(delivery amqp.Delivery) {
				defer func() { <-sem }()
				settle(log, delivery, delivery.Body, handler)
			}(d)
		case <-ctx.Done():
			return
		}
	}
}

// Acknowledger подтверждает или возвращает сообщение.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func settle(log *slog.Logger, ack Acknowledger, body []byte, handler func([]byte) error) {
	if err := handler(body); err != nil {
		if errors.Is(err, ErrPermanent) {
			log.Error("message handler failed permanently, drop", sl.Err(err))
			if nackErr := ack.Nack(false, false); nackErr != nil {
				log.Error("failed to nack message", sl.Err(nackErr))
			}
			return
		}
		log.Warn("message handler failed, requeue", sl.Err(err))
		if nackErr := ack.Nack(false, true); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
		return
	}
	if ackErr := ack.Ack(false); ackErr != nil {
		log.Error("failed to ack message", sl.Err(ackErr))
	}
}
