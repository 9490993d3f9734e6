package models

import "time"

// Приоритеты финансовой цели.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Goal финансовая цель пользователя.
type Goal struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Description   *string    `json:"description"`
	TargetAmount  float64    `json:"target_amount"`
	CurrentAmount float64    `json:"current_amount"`
	TargetDate    time.Time  `json:"target_date"`
	Priority      string     `json:"priority"`
	UserID        int64      `json:"user_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// OwnerID владелец цели.
func (g *Goal) OwnerID() int64 { return g.UserID }

// GoalInput тело запросов создания и изменения цели.
type GoalInput struct {
	Name          string    `json:"name" validate:"required,max=200"`
	Description   *string   `json:"description"`
	TargetAmount  float64   `json:"target_amount" validate:"gt=0"`
	CurrentAmount float64   `json:"current_amount" validate:"gte=0"`
	TargetDate    time.Time `json:"target_date" validate:"required"`
	Priority      string    `json:"priority" validate:"required,oneof=high medium low"`
}

// GoalProgressInput тело запроса обновления накопленной суммы.
type GoalProgressInput struct {
	CurrentAmount *float64 `json:"current_amount" validate:"required"`
}
