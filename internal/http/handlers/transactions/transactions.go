// Package transactions реализует HTTP-обработчики журнала транзакций.
//
// Транзакция может ссылаться на актив пользователя. Ссылка на чужой или
// несуществующий актив даёт 404 до записи.
package transactions

import (
	"context"
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
)

const msgNotFound = "transaction not found"

// Service описывает бизнес-логику транзакций.
type Service interface {
	Create(ctx context.Context, actorID int64, in models.TransactionInput) (*models.Transaction, error)
	Get(ctx context.Context, actorID, id int64) (*models.Transaction, error)
	List(ctx context.Context, actorID int64, filter models.TransactionFilter, page models.Page) ([]*models.Transaction, error)
	Delete(ctx context.Context, actorID, id int64) error
}

// Handler обрабатывает запросы /transactions.
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

// Create godoc
// @Summary Записать транзакцию
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.TransactionInput true "Транзакция"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Актив не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /transactions [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.transactions.Create"
	log := h.logger(r, op)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		middlewarectx.Unauthorized(w, r)
		return
	}

	var req models.TransactionInput
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

	tx, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		log.Info("failed to create transaction", sl.Err(err))
		response.FromService(w, r, err, "asset not found")
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(tx))
}

// List godoc
// @Summary Список транзакций, новые первыми
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param asset_id query int false "Только транзакции актива"
// @Param transaction_type query string false "buy, sell, dividend, deposit или withdrawal"
// @Param skip query int false "Смещение"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} response.Response
// @Router /transactions [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.transactions.List"
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
	assetID, err := request.OptionalInt64(r, "asset_id")
	if err != nil {
		log.Info("invalid asset filter", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, response.MsgInvalidQuery)
		return
	}
	filter := models.TransactionFilter{
		AssetID:         assetID,
		TransactionType: r.URL.Query().Get("transaction_type"),
	}
	if err := h.validate.Var(filter.TransactionType, "omitempty,oneof=buy sell dividend deposit withdrawal"); err != nil {
		log.Info("invalid transaction type filter", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, response.MsgInvalidQuery)
		return
	}

	list, err := h.service.List(r.Context(), user.ID, filter, page)
	if err != nil {
		log.Error("failed to list transactions", sl.Err(err))
		response.FromService(w, r, err, msgNotFound)
		return
	}
	render.JSON(w, r, response.List(list))
}

// Get возвращает транзакцию пользователя.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.transactions.Get"
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

	tx, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		log.Info("failed to read transaction", sl.Err(err))
		response.FromService(w, r, err, msgNotFound)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(tx))
}

// Delete удаляет транзакцию пользователя.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.transactions.Delete"
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

	if err := h.service.Delete(r.Context(), user.ID, id); err != nil {
		log.Info("failed to delete transaction", sl.Err(err))
		response.FromService(w, r, err, msgNotFound)
		return
	}
	render.NoContent(w, r)
}
