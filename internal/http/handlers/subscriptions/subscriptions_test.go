package subscriptions_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/wealth-management/internal/http/handlers/subscriptions"
	"github.com/magabrotheeeer/wealth-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wealth-management/internal/lib/ownership"
	"github.com/magabrotheeeer/wealth-management/internal/models"
	"github.com/magabrotheeeer/wealth-management/internal/services/subscription"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Plans(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]*models.SubscriptionPlan)
	return list, args.Error(1)
}

func (m *MockService) SubmitPayment(ctx context.Context, actor *models.User, in models.PaymentInput) (*models.SubscriptionPayment, error) {
	args := m.Called(ctx, actor, in)
	p, _ := args.Get(0).(*models.SubscriptionPayment)
	return p, args.Error(1)
}

func (m *MockService) Payments(ctx context.Context, actorID int64, page models.Page) ([]*models.SubscriptionPayment, error) {
	args := m.Called(ctx, actorID, page)
	list, _ := args.Get(0).([]*models.SubscriptionPayment)
	return list, args.Error(1)
}

func (m *MockService) Payment(ctx context.Context, actorID, id int64) (*models.SubscriptionPayment, error) {
	args := m.Called(ctx, actorID, id)
	p, _ := args.Get(0).(*models.SubscriptionPayment)
	return p, args.Error(1)
}

var alice = &models.User{ID: 1, Email: "alice@example.com", IsActive: true}

func newRouter(svc subscriptions.Service) http.Handler {
	h := subscriptions.New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	r.Get("/subscriptions/plans", h.Plans)
	r.Post("/subscriptions/payment", h.SubmitPayment)
	r.Get("/subscriptions/payments", h.Payments)
	r.Get("/subscriptions/payments/{id}", h.Payment)
	return r
}

func do(h http.Handler, method, target, body string, user *models.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req = req.WithContext(middlewarectx.WithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPlans_Public(t *testing.T) {
	svc := new(MockService)
	svc.On("Plans", mock.Anything).Return([]*models.SubscriptionPlan{{ID: 1, Name: "Pro", Price: 9.99}}, nil)

	rec := do(newRouter(svc), http.MethodGet, "/subscriptions/plans", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Pro"`)
}

func TestSubmitPayment(t *testing.T) {
	in := models.PaymentInput{PlanID: 1, PaymentReference: "UTR123"}
	body := `{"plan_id":1,"payment_reference":"UTR123"}`

	tests := []struct {
		name       string
		body       string
		result     *models.SubscriptionPayment
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "платёж принят",
			body:       body,
			result:     &models.SubscriptionPayment{ID: 9, UserID: alice.ID, PlanID: 1, PaymentReference: "UTR123", Status: models.PaymentStatusPending},
			wantStatus: http.StatusCreated,
			wantBody:   `"status":"pending"`,
		},
		{
			name:       "неизвестный план",
			body:       body,
			err:        fmt.Errorf("subscription.SubmitPayment: %w", subscription.ErrPlanNotFound),
			wantStatus: http.StatusNotFound,
			wantBody:   `"error":"subscription plan not found"`,
		},
		{
			name:       "повторный номер перевода",
			body:       body,
			err:        fmt.Errorf("subscription.SubmitPayment: %w", subscription.ErrDuplicateReference),
			wantStatus: http.StatusConflict,
			wantBody:   `"error":"payment reference already submitted"`,
		},
		{
			name:       "ошибка хранилища",
			body:       body,
			err:        errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `"error":"internal server error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("SubmitPayment", mock.Anything, alice, in).Return(tt.result, tt.err)

			rec := do(newRouter(svc), http.MethodPost, "/subscriptions/payment", tt.body, alice)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestSubmitPayment_RequiresUser(t *testing.T) {
	svc := new(MockService)

	rec := do(newRouter(svc), http.MethodPost, "/subscriptions/payment", `{"plan_id":1,"payment_reference":"UTR123"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "SubmitPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestPayment_Foreign(t *testing.T) {
	svc := new(MockService)
	svc.On("Payment", mock.Anything, alice.ID, int64(9)).Return(nil, ownership.ErrNotFound)

	rec := do(newRouter(svc), http.MethodGet, "/subscriptions/payments/9", "", alice)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":"Error","error":"payment not found"}`, rec.Body.String())
}

func TestPayments(t *testing.T) {
	svc := new(MockService)
	svc.On("Payments", mock.Anything, alice.ID, models.Page{Limit: models.DefaultLimit}).
		Return([]*models.SubscriptionPayment{{ID: 9, UserID: alice.ID}}, nil)

	rec := do(newRouter(svc), http.MethodGet, "/subscriptions/payments", "", alice)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":9`)
}
