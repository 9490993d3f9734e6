package models

import "time"

// Типы транзакций.
const (
	TransactionBuy        = "buy"
	TransactionSell       = "sell"
	TransactionDividend   = "dividend"
	TransactionDeposit    = "deposit"
	TransactionWithdrawal = "withdrawal"
)

// Transaction движение денег пользователя, опционально привязанное к активу.
type Transaction struct {
	ID              int64     `json:"id"`
	TransactionType string    `json:"transaction_type"`
	Amount          float64   `json:"amount"`
	AssetID         *int64    `json:"asset_id"`
	UserID          int64     `json:"user_id"`
	TransactionDate time.Time `json:"transaction_date"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
}

// OwnerID владелец транзакции.
func (t *Transaction) OwnerID() int64 { return t.UserID }

// TransactionInput тело запроса создания транзакции.
type TransactionInput struct {
	TransactionType string  `json:"transaction_type" validate:"required,oneof=buy sell dividend deposit withdrawal"`
	Amount          float64 `json:"amount" validate:"gt=0"`
	AssetID         *int64  `json:"asset_id" validate:"omitempty,gt=0"`
	Notes           *string `json:"notes"`
}

// TransactionFilter фильтр списка транзакций.
type TransactionFilter struct {
	AssetID         *int64
	TransactionType string
}
