package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/wealth-management/internal/models"
)

const goalColumns = `id, name, description, target_amount, current_amount, target_date,
			      priority, user_id, created_at, updated_at`

func scanGoal(row rowScanner) (*models.Goal, error) {
	g := &models.Goal{}
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &g.TargetAmount, &g.CurrentAmount,
		&g.TargetDate, &g.Priority, &g.UserID, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	return g, nil
}

// CreateGoal создаёт финансовую цель пользователя userID.
func (s *Storage) CreateGoal(ctx context.Context, userID int64, in models.GoalInput) (*models.Goal, error) {
	const op = "storage.CreateGoal"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO financial_goals (name, description, target_amount, current_amount,
			      target_date, priority, user_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING ` + goalColumns
	g, err := scanGoal(s.DB.QueryRowContext(ctx, query,
		in.Name, in.Description, in.TargetAmount, in.CurrentAmount, in.TargetDate, in.Priority, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return g, nil
}

// GetGoal возвращает цель по ID независимо от владельца.
func (s *Storage) GetGoal(ctx context.Context, id int64) (*models.Goal, error) {
	const op = "storage.GetGoal"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + goalColumns + `
			  FROM financial_goals
			  WHERE id = $1`
	g, err := scanGoal(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return g, nil
}

// ListGoals возвращает цели пользователя.
func (s *Storage) ListGoals(ctx context.Context, userID int64, page models.Page) ([]*models.Goal, error) {
	const op = "storage.ListGoals"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + goalColumns + `
			  FROM financial_goals
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

	result := make([]*models.Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateGoal перезаписывает поля цели id пользователя userID.
func (s *Storage) UpdateGoal(ctx context.Context, id, userID int64, in models.GoalInput) (*models.Goal, error) {
	const op = "storage.UpdateGoal"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE financial_goals
			  SET name = $3, description = $4, target_amount = $5, current_amount = $6,
			      target_date = $7, priority = $8, updated_at = NOW()
			  WHERE id = $1 AND user_id = $2
			  RETURNING ` + goalColumns
	g, err := scanGoal(s.DB.QueryRowContext(ctx, query, id, userID,
		in.Name, in.Description, in.TargetAmount, in.CurrentAmount, in.TargetDate, in.Priority))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return g, nil
}

// UpdateGoalProgress меняет только накопленную сумму.
func (s *Storage) UpdateGoalProgress(ctx context.Context, id, userID int64, currentAmount float64) (*models.Goal, error) {
	const op = "storage.UpdateGoalProgress"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE financial_goals
			  SET current_amount = $3, updated_at = NOW()
			  WHERE id = $1 AND user_id = $2
			  RETURNING ` + goalColumns
	g, err := scanGoal(s.DB.QueryRowContext(ctx, query, id, userID, currentAmount))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return g, nil
}

// DeleteGoal удаляет цель id пользователя userID и возвращает число удалённых строк.
func (s *Storage) DeleteGoal(ctx context.Context, id, userID int64) (int, error) {
	const op = "storage.DeleteGoal"
	if err := ctxErr(ctx, op); err != nil {
		return 0, err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM financial_goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(n), nil
}
