// Package goal управляет финансовыми целями пользователя.
package goal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/wealth-management/internal/lib/ownership"
	"github.com/magabrotheeeer/wealth-management/internal/models"
)

// Repository хранилище целей.
type Repository interface {
	CreateGoal(ctx context.Context, userID int64, in models.GoalInput) (*models.Goal, error)
	GetGoal(ctx context.Context, id int64) (*models.Goal, error)
	ListGoals(ctx context.Context, userID int64, page models.Page) ([]*models.Goal, error)
	UpdateGoal(ctx context.Context, id, userID int64, in models.GoalInput) (*models.Goal, error)
	UpdateGoalProgress(ctx context.Context, id, userID int64, currentAmount float64) (*models.Goal, error)
	DeleteGoal(ctx context.Context, id, userID int64) (int, error)
}

// Service операции над целями от имени пользователя.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создаёт Service.
func New(log *slog.Logger, repo Repository) *Service {
	return &Service{repo: repo, log: log}
}

// Create создаёт цель, владельцем становится actorID.
func (s *Service) Create(ctx context.Context, actorID int64, in models.GoalInput) (*models.Goal, error) {
	const op = "goal.Create"

	g, err := s.repo.CreateGoal(ctx, actorID, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("goal created", slog.Int64("goal_id", g.ID), slog.Int64("user_id", actorID))
	return g, nil
}

// Get возвращает цель actorID.
func (s *Service) Get(ctx context.Context, actorID, id int64) (*models.Goal, error) {
	const op = "goal.Get"

	g, err := s.repo.GetGoal(ctx, id)
	if g, err = ownership.Guard(g, err, actorID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return g, nil
}

// List возвращает цели actorID.
func (s *Service) List(ctx context.Context, actorID int64, page models.Page) ([]*models.Goal, error) {
	const op = "goal.List"

	list, err := s.repo.ListGoals(ctx, actorID, page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Update перезаписывает цель actorID.
func (s *Service) Update(ctx context.Context, actorID, id int64, in models.GoalInput) (*models.Goal, error) {
	const op = "goal.Update"

	if _, err := s.Get(ctx, actorID, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	g, err := s.repo.UpdateGoal(ctx, id, actorID, in)
	if g, err = ownership.Guard(g, err, actorID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return g, nil
}

// UpdateProgress меняет накопленную сумму цели actorID.
func (s *Service) UpdateProgress(ctx context.Context, actorID, id int64, currentAmount float64) (*models.Goal, error) {
	const op = "goal.UpdateProgress"

	if _, err := s.Get(ctx, actorID, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	g, err := s.repo.UpdateGoalProgress(ctx, id, actorID, currentAmount)
	if g, err = ownership.Guard(g, err, actorID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if g.CurrentAmount >= g.TargetAmount {
		s.log.Info("goal reached", slog.Int64("goal_id", g.ID))
	}
	return g, nil
}

// Delete удаляет цель actorID.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	const op = "goal.Delete"

	if _, err := s.Get(ctx, actorID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := ownership.Affected(s.repo.DeleteGoal(ctx, id, actorID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
