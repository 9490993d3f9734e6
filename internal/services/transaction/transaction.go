// Package transaction ведёт журнал денежных движений пользователя.
package transaction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/wealth-management/internal/lib/ownership"
	"github.com/magabrotheeeer/wealth-management/internal/models"
)

// Repository хранилище транзакций.
type Repository interface {
	CreateTransaction(ctx context.Context, userID int64, in models.TransactionInput) (*models.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID int64, filter models.TransactionFilter, page models.Page) ([]*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id, userID int64) (int, error)
}

// Assets выборка актива, на который ссылается транзакция.
type Assets interface {
	GetAsset(ctx context.Context, id int64) (*models.Asset, error)
}

// Service операции над транзакциями от имени пользователя.
type Service struct {
	repo   Repository
	assets Assets
	log    *slog.Logger
}

// New создаёт Service.
func New(log *slog.Logger, repo Repository, assets Assets) *Service {
	return &Service{repo: repo, assets: assets, log: log}
}

func (s *Service) guardAsset(ctx context.Context, actorID, assetID int64) error {
	a, err := s.assets.GetAsset(ctx, assetID)
	_, err = ownership.Guard(a, err, actorID)
	return err
}

// Create записывает транзакцию actorID. Ссылка на чужой актив даёт ownership.ErrNotFound до записи.
func (s *Service) Create(ctx context.Context, actorID int64, in models.TransactionInput) (*models.Transaction, error) {
	const op = "transaction.Create"

	if in.AssetID != nil {
		if err := s.guardAsset(ctx, actorID, *in.AssetID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	t, err := s.repo.CreateTransaction(ctx, actorID, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("transaction recorded",
		slog.Int64("transaction_id", t.ID),
		slog.String("type", t.TransactionType),
	)
	return t, nil
}

// Get возвращает транзакцию actorID.
func (s *Service) Get(ctx context.Context, actorID, id int64) (*models.Transaction, error) {
	const op = "transaction.Get"

	t, err := s.repo.GetTransaction(ctx, id)
	if t, err = ownership.Guard(t, err, actorID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// List возвращает транзакции actorID, новые первыми.
func (s *Service) List(ctx context.Context, actorID int64, filter models.TransactionFilter, page models.Page) ([]*models.Transaction, error) {
	const op = "transaction.List"

	list, err := s.repo.ListTransactions(ctx, actorID, filter, page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Delete удаляет транзакцию actorID.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	const op = "transaction.Delete"

	if _, err := s.Get(ctx, actorID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := ownership.Affected(s.repo.DeleteTransaction(ctx, id, actorID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
