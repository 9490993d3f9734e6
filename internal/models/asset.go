package models

import "time"

// Asset финансовый актив внутри портфеля. Владелец определяется через портфель.
type Asset struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	AssetType     string     `json:"asset_type"`
	TickerSymbol  *string    `json:"ticker_symbol"`
	Quantity      float64    `json:"quantity"`
	PurchasePrice float64    `json:"purchase_price"`
	CurrentPrice  float64    `json:"current_price"`
	PurchaseDate  time.Time  `json:"purchase_date"`
	PortfolioID   int64      `json:"portfolio_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`

	// PortfolioOwnerID portfolios.user_id, выбирается вместе с активом.
	PortfolioOwnerID int64 `json:"-"`
}

// OwnerID владелец портфеля, в котором лежит актив.
func (a *Asset) OwnerID() int64 { return a.PortfolioOwnerID }

// AssetInput тело запросов создания и изменения актива.
type AssetInput struct {
	Name          string    `json:"name" validate:"required,max=200"`
	AssetType     string    `json:"asset_type" validate:"required,max=50"`
	TickerSymbol  *string   `json:"ticker_symbol"`
	Quantity      float64   `json:"quantity" validate:"gte=0"`
	PurchasePrice float64   `json:"purchase_price" validate:"gte=0"`
	CurrentPrice  float64   `json:"current_price" validate:"gte=0"`
	PurchaseDate  time.Time `json:"purchase_date" validate:"required"`
	PortfolioID   int64     `json:"portfolio_id" validate:"required,gt=0"`
}

// AssetFilter фильтр списка активов.
type AssetFilter struct {
	PortfolioID *int64
}
