package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/wealth-management/internal/models"
)

const portfolioColumns = `id, name, description, user_id, created_at, updated_at`

func scanPortfolio(row rowScanner) (*models.Portfolio, error) {
	p := &models.Portfolio{}
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.UserID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

// CreatePortfolio создаёт портфель пользователя userID.
func (s *Storage) CreatePortfolio(ctx context.Context, userID int64, in models.PortfolioInput) (*models.Portfolio, error) {
	const op = "storage.CreatePortfolio"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO portfolios (name, description, user_id)
			  VALUES ($1, $2, $3)
			  RETURNING ` + portfolioColumns
	p, err := scanPortfolio(s.DB.QueryRowContext(ctx, query, in.Name, in.Description, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return p, nil
}

// GetPortfolio возвращает портфель по ID независимо от владельца.
func (s *Storage) GetPortfolio(ctx context.Context, id int64) (*models.Portfolio, error) {
	const op = "storage.GetPortfolio"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + portfolioColumns + `
			  FROM portfolios
			  WHERE id = $1`
	p, err := scanPortfolio(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return p, nil
}

// ListPortfolios возвращает портфели пользователя.
func (s *Storage) ListPortfolios(ctx context.Context, userID int64, page models.Page) ([]*models.Portfolio, error) {
	const op = "storage.ListPortfolios"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + portfolioColumns + `
			  FROM portfolios
			  WHERE user_id = $1
			  ORDER BY id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userID, page.Limit, page.Skip)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Portfolio, 0)
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdatePortfolio меняет портфель id, если он принадлежит userID.
func (s *Storage) UpdatePortfolio(ctx context.Context, id, userID int64, in models.PortfolioInput) (*models.Portfolio, error) {
	const op = "storage.UpdatePortfolio"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE portfolios
			  SET name = $3, description = $4, updated_at = NOW()
			  WHERE id = $1 AND user_id = $2
			  RETURNING ` + portfolioColumns
	p, err := scanPortfolio(s.DB.QueryRowContext(ctx, query, id, userID, in.Name, in.Description))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return p, nil
}

// DeletePortfolio удаляет портфель id пользователя userID вместе с активами
// и возвращает число удалённых портфелей.
func (s *Storage) DeletePortfolio(ctx context.Context, id, userID int64) (int, error) {
	const op = "storage.DeletePortfolio"
	if err := ctxErr(ctx, op); err != nil {
		return 0, err
	}

	query := `DELETE FROM portfolios
			  WHERE id = $1 AND user_id = $2`
	res, err := s.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(n), nil
}
