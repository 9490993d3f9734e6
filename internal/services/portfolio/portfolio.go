// Package portfolio управляет портфелями пользователя.
package portfolio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/wealth-management/internal/lib/ownership"
	"github.com/magabrotheeeer/wealth-management/internal/models"
)

// Repository хранилище портфелей.
type Repository interface {
	CreatePortfolio(ctx context.Context, userID int64, in models.PortfolioInput) (*models.Portfolio, error)
	GetPortfolio(ctx context.Context, id int64) (*models.Portfolio, error)
	ListPortfolios(ctx context.Context, userID int64, page models.Page) ([]*models.Portfolio, error)
	UpdatePortfolio(ctx context.Context, id, userID int64, in models.PortfolioInput) (*models.Portfolio, error)
	DeletePortfolio(ctx context.Context, id, userID int64) (int, error)
}

// Service операции над портфелями от имени пользователя.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создаёт Service.
func New(log *slog.Logger, repo Repository) *Service {
	return &Service{repo: repo, log: log}
}

// Create создаёт портфель, владельцем становится actorID.
func (s *Service) Create(ctx context.Context, actorID int64, in models.PortfolioInput) (*models.Portfolio, error) {
	const op = "portfolio.Create"

	p, err := s.repo.CreatePortfolio(ctx, actorID, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("portfolio created", slog.Int64("portfolio_id", p.ID), slog.Int64("user_id", actorID))
	return p, nil
}

// Get возвращает портфель, если он принадлежит actorID.
func (s *Service) Get(ctx context.Context, actorID, id int64) (*models.Portfolio, error) {
	const op = "portfolio.Get"

	p, err := s.repo.GetPortfolio(ctx, id)
	if p, err = ownership.Guard(p, err, actorID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// List возвращает портфели actorID.
func (s *Service) List(ctx context.Context, actorID int64, page models.Page) ([]*models.Portfolio, error) {
	const op = "portfolio.List"

	list, err := s.repo.ListPortfolios(ctx, actorID, page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Update меняет название и описание портфеля actorID.
func (s *Service) Update(ctx context.Context, actorID, id int64, in models.PortfolioInput) (*models.Portfolio, error) {
	const op = "portfolio.Update"

	if _, err := s.Get(ctx, actorID, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p, err := s.repo.UpdatePortfolio(ctx, id, actorID, in)
	if p, err = ownership.Guard(p, err, actorID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Delete удаляет портфель actorID вместе со всеми его активами.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	const op = "portfolio.Delete"

	if _, err := s.Get(ctx, actorID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := ownership.Affected(s.repo.DeletePortfolio(ctx, id, actorID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("portfolio deleted", slog.Int64("portfolio_id", id), slog.Int64("user_id", actorID))
	return nil
}
