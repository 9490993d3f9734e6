// Package asset управляет активами внутри портфелей.
// Владелец актива определяется владельцем его портфеля.
package asset

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/wealth-management/internal/lib/ownership"
	"github.com/magabrotheeeer/wealth-management/internal/models"
)

// Repository хранилище активов.
type Repository interface {
	CreateAsset(ctx context.Context, in models.AssetInput) (*models.Asset, error)
	GetAsset(ctx context.Context, id int64) (*models.Asset, error)
	ListAssets(ctx context.Context, userID int64, filter models.AssetFilter, page models.Page) ([]*models.Asset, error)
	UpdateAsset(ctx context.Context, id, ownerID int64, in models.AssetInput) (*models.Asset, error)
	DeleteAsset(ctx context.Context, id, ownerID int64) (int, error)
}

// Portfolios выборка родительского портфеля.
type Portfolios interface {
	GetPortfolio(ctx context.Context, id int64) (*models.Portfolio, error)
}

// Service операции над активами от имени пользователя.
type Service struct {
	repo       Repository
	portfolios Portfolios
	log        *slog.Logger
}

// New создаёт Service.
func New(log *slog.Logger, repo Repository, portfolios Portfolios) *Service {
	return &Service{repo: repo, portfolios: portfolios, log: log}
}

func (s *Service) guardPortfolio(ctx context.Context, actorID, portfolioID int64) error {
	p, err := s.portfolios.GetPortfolio(ctx, portfolioID)
	_, err = ownership.Guard(p, err, actorID)
	return err
}

// Create добавляет актив в портфель actorID. Чужой портфель даёт ownership.ErrNotFound до записи.
func (s *Service) Create(ctx context.Context, actorID int64, in models.AssetInput) (*models.Asset, error) {
	const op = "asset.Create"

	if err := s.guardPortfolio(ctx, actorID, in.PortfolioID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a, err := s.repo.CreateAsset(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("asset created", slog.Int64("asset_id", a.ID), slog.Int64("portfolio_id", in.PortfolioID))
	return a, nil
}

// Get возвращает актив, если его портфель принадлежит actorID.
func (s *Service) Get(ctx context.Context, actorID, id int64) (*models.Asset, error) {
	const op = "asset.Get"

	a, err := s.repo.GetAsset(ctx, id)
	if a, err = ownership.Guard(a, err, actorID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// List возвращает активы actorID. Фильтр по чужому портфелю даёт ownership.ErrNotFound.
func (s *Service) List(ctx context.Context, actorID int64, filter models.AssetFilter, page models.Page) ([]*models.Asset, error) {
	const op = "asset.List"

	if filter.PortfolioID != nil {
		if err := s.guardPortfolio(ctx, actorID, *filter.PortfolioID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	list, err := s.repo.ListAssets(ctx, actorID, filter, page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Update меняет актив actorID. Перенос возможен только в другой портфель actorID.
func (s *Service) Update(ctx context.Context, actorID, id int64, in models.AssetInput) (*models.Asset, error) {
	const op = "asset.Update"

	current, err := s.Get(ctx, actorID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if in.PortfolioID != current.PortfolioID {
		if err := s.guardPortfolio(ctx, actorID, in.PortfolioID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	a, err := s.repo.UpdateAsset(ctx, id, actorID, in)
	if a, err = ownership.Guard(a, err, actorID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// Delete удаляет актив actorID.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	const op = "asset.Delete"

	if _, err := s.Get(ctx, actorID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := ownership.Affected(s.repo.DeleteAsset(ctx, id, actorID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("asset deleted", slog.Int64("asset_id", id))
	return nil
}
