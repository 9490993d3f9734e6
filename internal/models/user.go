// Package models содержит доменные записи: пользователя, портфели, активы,
// финансовые цели, транзакции и подписки, а также входные структуры запросов.
// Поведения у записей нет, кроме указания владельца для проверки доступа.
package models

import "time"

// User зарегистрированный пользователь. Пользователи не удаляются, а деактивируются.
type User struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	HashedPassword string     `json:"-"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// RegisterInput данные регистрации.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Password  string `json:"password" validate:"required,min=3,max=72"`
}

// ProfileInput изменяемые поля профиля. Пустые значения не меняют поле.
type ProfileInput struct {
	FirstName string `json:"first_name" validate:"omitempty,max=100"`
	LastName  string `json:"last_name" validate:"omitempty,max=100"`
}

// LoginInput учётные данные для выдачи токена. Username содержит email.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
