package models

import "time"

// Portfolio группа активов пользователя.
type Portfolio struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	UserID      int64      `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// OwnerID владелец портфеля.
func (p *Portfolio) OwnerID() int64 { return p.UserID }

// PortfolioInput тело запросов создания и изменения портфеля.
type PortfolioInput struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description"`
}
