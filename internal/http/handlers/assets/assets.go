// Package assets реализует HTTP-обработчики активов. Владелец актива
// определяется владельцем портфеля, в котором он лежит.
package assets

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

const msgNotFound = "asset not found"

// Service описывает бизнес-логику активов.
type Service interface {
	Create(ctx context.Context, actorID int64, in models.AssetInput) (*models.Asset, error)
	Get(ctx context.Context, actorID, id int64) (*models.Asset, error)
	List(ctx context.Context, actorID int64, filter models.AssetFilter, page models.Page) ([]*models.Asset, error)
	Update(ctx context.Context, actorID, id int64, in models.AssetInput) (*models.Asset, error)
	Delete(ctx context.Context, actorID, id int64) error
}

// Handler обрабатывает запросы /assets.
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

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, log *slog.Logger) (models.AssetInput, bool) {
	var req models.AssetInput
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, response.MsgInvalidBody)
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return req, false
	}
	return req, true
}

// Create godoc
// @Summary Добавить актив в портфель
// @Description Портфель должен принадлежать пользователю, иначе 404.
// @Tags Assets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.AssetInput true "Актив"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Портфель не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /assets [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.assets.Create"
	log := h.logger(r, op)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		middlewarectx.Unauthorized(w, r)
		return
	}
	req, ok := h.decode(w, r, log)
	if !ok {
		return
	}

	a, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		log.Info("failed to create asset", sl.Err(err))
		response.FromService(w, r, err, "portfolio not found")
		return
	}

	log.Info("asset created", slog.Int64("asset_id", a.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(a))
}

// List godoc
// @Summary Список активов
// @Tags Assets
// @Produce json
// @Security BearerAuth
// @Param portfolio_id query int false "Только активы этого портфеля"
// @Param skip query int false "Смещение"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} response.Response
// @Router /assets [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.assets.List"
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
	portfolioID, err := request.OptionalInt64(r, "portfolio_id")
	if err != nil {
		log.Info("invalid portfolio filter", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, response.MsgInvalidQuery)
		return
	}

	list, err := h.service.List(r.Context(), user.ID, models.AssetFilter{PortfolioID: portfolioID}, page)
	if err != nil {
		log.Info("failed to list assets", sl.Err(err))
		response.FromService(w, r, err, "portfolio not found")
		return
	}
	render.JSON(w, r, response.List(list))
}

// Get возвращает актив пользователя.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.assets.Get"
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

	a, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		log.Info("failed to read asset", sl.Err(err))
		response.FromService(w, r, err, msgNotFound)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(a))
}

// Update перезаписывает актив. Перенос возможен только в свой портфель.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.assets.Update"
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
	req, ok := h.decode(w, r, log)
	if !ok {
		return
	}

	a, err := h.service.Update(r.Context(), user.ID, id, req)
	if err != nil {
		log.Info("failed to update asset", sl.Err(err))
		response.FromService(w, r, err, msgNotFound)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(a))
}

// Delete удаляет актив.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.assets.Delete"
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
		log.Info("failed to delete asset", sl.Err(err))
		response.FromService(w, r, err, msgNotFound)
		return
	}
	render.NoContent(w, r)
}
