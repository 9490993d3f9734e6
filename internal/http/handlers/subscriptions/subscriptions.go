// Package subscriptions реализует HTTP-обработчики платного уровня:
// публичный список планов и отправку платежей от имени пользователя.
package subscriptions

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/wealth-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wealth-management/internal/http/request"
	"github.com/magabrotheeeer/wealth-management/internal/http/response"
	"github.com/magabrotheeeer/wealth-management/internal/lib/sl"
	"github.com/magabrotheeeer/wealth-management/internal/models"
	"github.com/magabrotheeeer/wealth-management/internal/services/subscription"
)

const (
	msgPlanNotFound    = "subscription plan not found"
	msgPaymentNotFound = "payment not found"
	msgDuplicate       = "payment reference already submitted"
)

// Service описывает бизнес-логику подписок.
type Service interface {
	Plans(ctx context.Context) ([]*models.SubscriptionPlan, error)
	SubmitPayment(ctx context.Context, actor *models.User, in models.PaymentInput) (*models.SubscriptionPayment, error)
	Payments(ctx context.Context, actorID int64, page models.Page) ([]*models.SubscriptionPayment, error)
	Payment(ctx context.Context, actorID, id int64) (*models.SubscriptionPayment, error)
}

// Handler обрабатывает запросы /subscriptions.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// Plans godoc
// @Summary Тарифные планы
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /subscriptions/plans [get]
func (h *Handler) Plans(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriptions.Plans"
	log := h.logger(r, op)

	plans, err := h.service.Plans(r.Context())
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		response.FromService(w, r, err, msgPlanNotFound)
		return
	}
	render.JSON(w, r, response.List(plans))
}

// SubmitPayment godoc
// @Summary Отправить платёж за подписку
// @Description Платёж записывается со статусом pending и ждёт проверки.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.PaymentInput true "План и номер перевода"
// @Success 201 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Не аутентифицирован"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Failure 409 {object} response.ErrorResponse "Номер перевода уже отправлен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /subscriptions/payment [post]
func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriptions.SubmitPayment"
	log := h.logger(r, op)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		middlewarectx.Unauthorized(w, r)
		return
	}

	var req models.PaymentInput
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, response.MsgInvalidBody)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return
	}

	payment, err := h.service.SubmitPayment(r.Context(), user, req)
	switch {
	case errors.Is(err, subscription.ErrPlanNotFound):
		log.Info("unknown plan", slog.Int64("plan_id", req.PlanID))
		response.Fail(w, r, http.StatusNotFound, msgPlanNotFound)
		return
	case errors.Is(err, subscription.ErrDuplicateReference):
		log.Info("duplicate payment reference")
		response.Fail(w, r, http.StatusConflict, msgDuplicate)
		return
	case err != nil:
		log.Error("failed to submit payment", sl.Err(err))
		response.FromService(w, r, err, msgPaymentNotFound)
		return
	}

	log.Info("payment submitted", slog.Int64("payment_id", payment.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(payment))
}

// Payments возвращает платежи текущего пользователя.
func (h *Handler) Payments(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriptions.Payments"
	log := h.logger(r, op)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		middlewarectx.Unauthorized(w, r)
		return
	}
	page, err := request.Page(r)
	if err != nil {
		log.Info("invalid pagination", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, response.MsgInvalidQuery)
		return
	}

	list, err := h.service.Payments(r.Context(), user.ID, page)
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		response.FromService(w, r, err, msgPaymentNotFound)
		return
	}
	render.JSON(w, r, response.List(list))
}

// Payment возвращает платёж текущего пользователя.
func (h *Handler) Payment(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriptions.Payment"
	log := h.logger(r, op)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		middlewarectx.Unauthorized(w, r)
		return
	}
	id, err := request.ID(r, "id")
	if err != nil {
		log.Info("failed to decode id from url", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, response.MsgInvalidID)
		return
	}

	p, err := h.service.Payment(r.Context(), user.ID, id)
	if err != nil {
		log.Info("failed to read payment", sl.Err(err))
		response.FromService(w, r, err, msgPaymentNotFound)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(p))
}
