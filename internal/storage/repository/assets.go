package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/wealth-management/internal/models"
)

const assetColumns = `a.id, a.name, a.asset_type, a.ticker_symbol, a.quantity, a.purchase_price,
			      a.current_price, a.purchase_date, a.portfolio_id, a.created_at, a.updated_at, p.user_id`

func scanAsset(row rowScanner) (*models.Asset, error) {
	a := &models.Asset{}
	if err := row.Scan(&a.ID, &a.Name, &a.AssetType, &a.TickerSymbol, &a.Quantity, &a.PurchasePrice,
		&a.CurrentPrice, &a.PurchaseDate, &a.PortfolioID, &a.CreatedAt, &a.UpdatedAt,
		&a.PortfolioOwnerID); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateAsset добавляет актив в портфель. Владение портфелем проверяет вызывающий.
func (s *Storage) CreateAsset(ctx context.Context, in models.AssetInput) (*models.Asset, error) {
	const op = "storage.CreateAsset"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `WITH a AS (
			      INSERT INTO assets (name, asset_type, ticker_symbol, quantity, purchase_price,
			          current_price, purchase_date, portfolio_id)
			      VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			      RETURNING *
			  )
			  SELECT ` + assetColumns + `
			  FROM a JOIN portfolios p ON p.id = a.portfolio_id`
	a, err := scanAsset(s.DB.QueryRowContext(ctx, query,
		in.Name, in.AssetType, in.TickerSymbol, in.Quantity, in.PurchasePrice,
		in.CurrentPrice, in.PurchaseDate, in.PortfolioID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return a, nil
}

// GetAsset возвращает актив вместе с владельцем его портфеля.
func (s *Storage) GetAsset(ctx context.Context, id int64) (*models.Asset, error) {
	const op = "storage.GetAsset"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + assetColumns + `
			  FROM assets a JOIN portfolios p ON p.id = a.portfolio_id
			  WHERE a.id = $1`
	a, err := scanAsset(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return a, nil
}

// ListAssets возвращает активы из портфелей пользователя, опционально одного портфеля.
func (s *Storage) ListAssets(ctx context.Context, userID int64, filter models.AssetFilter, page models.Page) ([]*models.Asset, error) {
	const op = "storage.ListAssets"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + assetColumns + `
			  FROM assets a JOIN portfolios p ON p.id = a.portfolio_id
			  WHERE p.user_id = $1 AND ($2::BIGINT IS NULL OR a.portfolio_id = $2)
			  ORDER BY a.id
			  LIMIT $3 OFFSET $4`
	rows, err := s.DB.QueryContext(ctx, query, userID, filter.PortfolioID, page.Limit, page.Skip)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Asset, 0)
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateAsset меняет актив id, если его текущий портфель принадлежит ownerID.
// Целевой портфель in.PortfolioID проверяет вызывающий.
func (s *Storage) UpdateAsset(ctx context.Context, id, ownerID int64, in models.AssetInput) (*models.Asset, error) {
	const op = "storage.UpdateAsset"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `WITH a AS (
			      UPDATE assets
			      SET name = $3, asset_type = $4, ticker_symbol = $5, quantity = $6,
			          purchase_price = $7, current_price = $8, purchase_date = $9,
			          portfolio_id = $10, updated_at = NOW()
			      WHERE id = $1
			        AND portfolio_id IN (SELECT id FROM portfolios WHERE user_id = $2)
			      RETURNING *
			  )
			  SELECT ` + assetColumns + `
			  FROM a JOIN portfolios p ON p.id = a.portfolio_id`
	a, err := scanAsset(s.DB.QueryRowContext(ctx, query, id, ownerID,
		in.Name, in.AssetType, in.TickerSymbol, in.Quantity, in.PurchasePrice,
		in.CurrentPrice, in.PurchaseDate, in.PortfolioID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return a, nil
}

// DeleteAsset удаляет актив id из портфелей ownerID и возвращает число удалённых строк.
func (s *Storage) DeleteAsset(ctx context.Context, id, ownerID int64) (int, error) {
	const op = "storage.DeleteAsset"
	if err := ctxErr(ctx, op); err != nil {
		return 0, err
	}

	query := `DELETE FROM assets
			  WHERE id = $1
			    AND portfolio_id IN (SELECT id FROM portfolios WHERE user_id = $2)`
	res, err := s.DB.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(n), nil
}
