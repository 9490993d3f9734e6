package models

import "time"

// Статусы платежа за подписку.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusVerified = "verified"
)

// SubscriptionPlan тарифный план платного уровня.
type SubscriptionPlan struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Price       float64    `json:"price"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// SubscriptionPayment заявка пользователя об оплате плана (номер перевода или UTR).
type SubscriptionPayment struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	PlanID           int64     `json:"plan_id"`
	PaymentReference string    `json:"payment_reference"`
	Status           string    `json:"status"`
	Timestamp        time.Time `json:"timestamp"`
}

// OwnerID плательщик.
func (p *SubscriptionPayment) OwnerID() int64 { return p.UserID }

// PaymentInput тело запроса отправки платежа.
type PaymentInput struct {
	PlanID           int64  `json:"plan_id" validate:"required,gt=0"`
	PaymentReference string `json:"payment_reference" validate:"required,max=100"`
}

// PaymentSubmitted событие, публикуемое в RabbitMQ после записи платежа.
type PaymentSubmitted struct {
	PaymentID        int64     `json:"payment_id"`
	UserID           int64     `json:"user_id"`
	Email            string    `json:"email"`
	FirstName        string    `json:"first_name"`
	PlanName         string    `json:"plan_name"`
	Price            float64   `json:"price"`
	PaymentReference string    `json:"payment_reference"`
	Timestamp        time.Time `json:"timestamp"`
}
