package rabbitmq

// PaymentsExchange обменник событий о платежах за подписку.
const PaymentsExchange = "payments"

// Ключи маршрутизации событий о платежах.
const (
	RoutingPaymentSubmitted = "submitted"
)

// QueuePaymentSubmitted очередь писем о принятых платежах.
const QueuePaymentSubmitted = "payment.submitted"

// QueueConfig очередь и ключ, с которым она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// PaymentQueues очереди, которые слушает сервис уведомлений.
func PaymentQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueuePaymentSubmitted, RoutingKey: RoutingPaymentSubmitted},
	}
}
