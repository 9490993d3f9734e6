// Package goals реализует HTTP-обработчики финансовых целей.
package goals

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

const msgNotFound = "financial goal not found"

// Service описывает бизнес-логику целей.
type Service interface {
	Create(ctx context.Context, actorID int64, in models.GoalInput) (*models.Goal, error)
	Get(ctx context.Context, actorID, id int64) (*models.Goal, error)
	List(ctx context.Context, actorID int64, page models.Page) ([]*models.Goal, error)
	Update(ctx context.Context, actorID, id int64, in models.GoalInput) (*models.Goal, error)
	UpdateProgress(ctx context.Context, actorID, id int64, currentAmount float64) (*models.Goal, error)
	Delete(ctx context.Context, actorID, id int64) error
}

// Handler обрабатывает запросы /goals.
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

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, response.MsgInvalidBody)
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return false
	}
	return true
}

// Create godoc
// @Summary Создать финансовую цель
// @Tags Goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.GoalInput true "Цель"
// @Success 201 {object} response.Response
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /goals [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.goals.Create"
	log := h.logger(r, op)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		middlewarectx.Unauthorized(w, r)
		return
	}
	var req models.GoalInput
	if !h.decode(w, r, log, &req) {
		return
	}

	g, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		log.Error("failed to create goal", sl.Err(err))
		response.FromService(w, r, err, msgNotFound)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(g))
}

// List возвращает цели пользователя.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.goals.List"
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

	list, err := h.service.List(r.Context(), user.ID, page)
	if err != nil {
		log.Error("failed to list goals", sl.Err(err))
		response.FromService(w, r, err, msgNotFound)
		return
	}
	render.JSON(w, r, response.List(list))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.goals.Get"
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

	g, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		log.Info("failed to read goal", sl.Err(err))
		response.FromService(w, r, err, msgNotFound)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(g))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.goals.Update"
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
	var req models.GoalInput
	if !h.decode(w, r, log, &req) {
		return
	}

	g, err := h.service.Update(r.Context(), user.ID, id, req)
	if err != nil {
		log.Info("failed to update goal", sl.Err(err))
		response.FromService(w, r, err, msgNotFound)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(g))
}

// UpdateProgress godoc
// @Summary Обновить накопленную сумму цели
// @Tags Goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID цели"
// @Param current_amount query number false "Новая сумма"
// @Param request body models.GoalProgressInput false "Новая сумма, если не передана в запросе"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Цель не найдена"
// @Router /goals/{id}/progress [patch]
func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.goals.UpdateProgress"
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
	amount, err := request.OptionalFloat64(r, "current_amount")
	if err != nil {
		log.Info("failed to parse current_amount", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, response.MsgInvalidQuery)
		return
	}
	if amount == nil {
		var req models.GoalProgressInput
		if !h.decode(w, r, log, &req) {
			return
		}
		amount = req.CurrentAmount
	}

	g, err := h.service.UpdateProgress(r.Context(), user.ID, id, *amount)
	if err != nil {
		log.Info("failed to update goal progress", sl.Err(err))
		response.FromService(w, r, err, msgNotFound)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(g))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.goals.Delete"
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
		log.Info("failed to delete goal", sl.Err(err))
		response.FromService(w, r, err, msgNotFound)
		return
	}
	render.NoContent(w, r)
}
