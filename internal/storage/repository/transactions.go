package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/wealth-management/internal/models"
)

const transactionColumns = `id, transaction_type, amount, asset_id, user_id, transaction_date, notes, created_at`

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	t := &models.Transaction{}
	if err := row.Scan(&t.ID, &t.TransactionType, &t.Amount, &t.AssetID, &t.UserID,
		&t.TransactionDate, &t.Notes, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTransaction записывает транзакцию пользователя userID. Дата ставится базой.
func (s *Storage) CreateTransaction(ctx context.Context, userID int64, in models.TransactionInput) (*models.Transaction, error) {
	const op = "storage.CreateTransaction"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO transactions (transaction_type, amount, asset_id, user_id, notes)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING ` + transactionColumns
	t, err := scanTransaction(s.DB.QueryRowContext(ctx, query,
		in.TransactionType, in.Amount, in.AssetID, userID, in.Notes))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return t, nil
}

// GetTransaction возвращает транзакцию по ID независимо от владельца.
func (s *Storage) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	const op = "storage.GetTransaction"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + transactionColumns + `
			  FROM transactions
			  WHERE id = $1`
	t, err := scanTransaction(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return t, nil
}

// ListTransactions возвращает транзакции пользователя, новые первыми.
func (s *Storage) ListTransactions(ctx context.Context, userID int64, filter models.TransactionFilter, page models.Page) ([]*models.Transaction, error) {
	const op = "storage.ListTransactions"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + transactionColumns + `
			  FROM transactions
			  WHERE user_id = $1
			    AND ($2::BIGINT IS NULL OR asset_id = $2)
			    AND ($3::TEXT = '' OR transaction_type = $3)
			  ORDER BY transaction_date DESC, id DESC
			  LIMIT $4 OFFSET $5`
	rows, err := s.DB.QueryContext(ctx, query, userID, filter.AssetID, filter.TransactionType, page.Limit, page.Skip)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteTransaction удаляет транзакцию id пользователя userID и возвращает число удалённых строк.
func (s *Storage) DeleteTransaction(ctx context.Context, id, userID int64) (int, error) {
	const op = "storage.DeleteTransaction"
	if err := ctxErr(ctx, op); err != nil {
		return 0, err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(n), nil
}
