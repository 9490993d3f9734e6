package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/wealth-management/internal/models"
)

const (
	planColumns    = `id, name, price, COALESCE(description, ''), created_at, updated_at`
	paymentColumns = `id, user_id, plan_id, payment_reference, status, timestamp`
)

func scanPlan(row rowScanner) (*models.SubscriptionPlan, error) {
	p := &models.SubscriptionPlan{}
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func scanPayment(row rowScanner) (*models.SubscriptionPayment, error) {
	p := &models.SubscriptionPayment{}
	if err := row.Scan(&p.ID, &p.UserID, &p.PlanID, &p.PaymentReference, &p.Status, &p.Timestamp); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPlans возвращает все тарифные планы.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	const op = "storage.ListPlans"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+planColumns+` FROM subscription_plans ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.SubscriptionPlan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
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

// GetPlan возвращает план по ID.
func (s *Storage) GetPlan(ctx context.Context, id int64) (*models.SubscriptionPlan, error) {
	const op = "storage.GetPlan"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	p, err := scanPlan(s.DB.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM subscription_plans WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return p, nil
}

// CreatePayment записывает заявку об оплате в статусе pending.
// Повторный payment_reference даёт ErrAlreadyExists.
func (s *Storage) CreatePayment(ctx context.Context, userID int64, in models.PaymentInput) (*models.SubscriptionPayment, error) {
	const op = "storage.CreatePayment"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO subscription_payments (user_id, plan_id, payment_reference, status)
			  VALUES ($1, $2, $3, $4)
			  RETURNING ` + paymentColumns
	p, err := scanPayment(s.DB.QueryRowContext(ctx, query,
		userID, in.PlanID, in.PaymentReference, models.PaymentStatusPending))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return p, nil
}

// GetPayment возвращает платёж по ID независимо от плательщика.
func (s *Storage) GetPayment(ctx context.Context, id int64) (*models.SubscriptionPayment, error) {
	const op = "storage.GetPayment"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	p, err := scanPayment(s.DB.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM subscription_payments WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return p, nil
}

// ListPayments возвращает платежи пользователя, новые первыми.
func (s *Storage) ListPayments(ctx context.Context, userID int64, page models.Page) ([]*models.SubscriptionPayment, error) {
	const op = "storage.ListPayments"
	if err := ctxErr(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + paymentColumns + `
			  FROM subscription_payments
			  WHERE user_id = $1
			  ORDER BY timestamp DESC, id DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userID, page.Limit, page.Skip)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.SubscriptionPayment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
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
