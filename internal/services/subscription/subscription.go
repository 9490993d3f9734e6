// Package subscription отдаёт тарифные планы платного уровня и принимает
// от пользователя заявки об их оплате.
//
// Список планов кешируется в Redis. После записи заявки в RabbitMQ
// публикуется событие payment.submitted для сервиса уведомлений.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/wealth-management/internal/lib/ownership"
	"github.com/magabrotheeeer/wealth-management/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/wealth-management/internal/lib/sl"
	"github.com/magabrotheeeer/wealth-management/internal/models"
	"github.com/magabrotheeeer/wealth-management/internal/storage/repository"
)

// PlansCacheKey ключ списка планов в кеше.
const PlansCacheKey = "subscription:plans"

// DefaultPlansTTL время жизни списка планов в кеше.
const DefaultPlansTTL = 10 * time.Minute

var (
	// ErrPlanNotFound план с таким ID не существует.
	ErrPlanNotFound = errors.New("subscription plan not found")
	// ErrDuplicateReference номер платежа уже был отправлен.
	ErrDuplicateReference = errors.New("payment reference already submitted")
)

// Repository хранилище планов и платежей.
type Repository interface {
	ListPlans(ctx context.Context) ([]*models.SubscriptionPlan, error)
	GetPlan(ctx context.Context, id int64) (*models.SubscriptionPlan, error)
	CreatePayment(ctx context.Context, userID int64, in models.PaymentInput) (*models.SubscriptionPayment, error)
	GetPayment(ctx context.Context, id int64) (*models.SubscriptionPayment, error)
	ListPayments(ctx context.Context, userID int64, page models.Page) ([]*models.SubscriptionPayment, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Publisher отправляет события в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service реализует работу с планами и платежами.
type Service struct {
	repo      Repository
	cache     Cache
	publisher Publisher
	plansTTL  time.Duration
	log       *slog.Logger
}

// New создаёт Service. Нулевой plansTTL заменяется на DefaultPlansTTL.
func New(log *slog.Logger, repo Repository, cache Cache, publisher Publisher, plansTTL time.Duration) *Service {
	if plansTTL <= 0 {
		plansTTL = DefaultPlansTTL
	}
	return &Service{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		plansTTL:  plansTTL,
		log:       log,
	}
}

// Plans возвращает все тарифные планы, сначала из кеша.
// Сбой кеша не мешает ответу: план читается из хранилища.
func (s *Service) Plans(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	const op = "subscription.Plans"

	var cached []*models.SubscriptionPlan
	found, err := s.cache.Get(ctx, PlansCacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read plans from cache", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(ctx, PlansCacheKey, plans, s.plansTTL); err != nil {
		s.log.Warn("failed to cache plans", sl.Err(err))
	}
	return plans, nil
}

// SubmitPayment записывает заявку actor об оплате плана в статусе pending.
// Плательщиком всегда становится actor.
func (s *Service) SubmitPayment(ctx context.Context, actor *models.User, in models.PaymentInput) (*models.SubscriptionPayment, error) {
	const op = "subscription.SubmitPayment"

	plan, err := s.repo.GetPlan(ctx, in.PlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPlanNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	payment, err := s.repo.CreatePayment(ctx, actor.ID, in)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicateReference)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("payment submitted",
		slog.Int64("payment_id", payment.ID),
		slog.Int64("user_id", actor.ID),
		slog.Int64("plan_id", plan.ID),
	)

	event := models.PaymentSubmitted{
		PaymentID:        payment.ID,
		UserID:           actor.ID,
		Email:            actor.Email,
		FirstName:        actor.FirstName,
		PlanName:         plan.Name,
		Price:            plan.Price,
		PaymentReference: payment.PaymentReference,
		Timestamp:        payment.Timestamp,
	}
	if err := s.publisher.Publish(ctx, rabbitmq.RoutingPaymentSubmitted, event); err != nil {
		s.log.Error("failed to publish payment event", slog.Int64("payment_id", payment.ID), sl.Err(err))
	}
	return payment, nil
}

// Payments возвращает платежи actorID, новые первыми.
func (s *Service) Payments(ctx context.Context, actorID int64, page models.Page) ([]*models.SubscriptionPayment, error) {
	const op = "subscription.Payments"

	list, err := s.repo.ListPayments(ctx, actorID, page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Payment возвращает платёж, если его отправил actorID.
func (s *Service) Payment(ctx context.Context, actorID, id int64) (*models.SubscriptionPayment, error) {
	const op = "subscription.Payment"

	p, err := s.repo.GetPayment(ctx, id)
	if p, err = ownership.Guard(p, err, actorID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}
