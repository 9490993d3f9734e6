// Package portfolios реализует HTTP-обработчики портфелей пользователя.
//
// Все обработчики работают от имени пользователя из контекста запроса.
// Чужой и несуществующий портфель дают одинаковый ответ 404.
package portfolios

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

const msgNotFound = "portfolio not found"

// Service описывает бизнес-логику портфелей.
type Service interface {
	Create(ctx context.Context, actorID int64, in models.PortfolioInput) (*models.Portfolio, error)
	Get(ctx context.Context, actorID, id int64) (*models.Portfolio, error)
	List(ctx context.Context, actorID int64, page models.Page) ([]*models.Portfolio, error)
	Update(ctx context.Context, actorID, id int64, in models.PortfolioInput) (*models.Portfolio, error)
	Delete(ctx context.Context, actorID, id int64) error
}

// Handler обрабатывает запросы /portfolios.
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
// @Summary Создать портфель
// @Tags Portfolios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.PortfolioInput true "Портфель"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Не аутентифицирован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /portfolios [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.portfolios.Create"
	log := h.logger(r, op)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		middlewarectx.Unauthorized(w, r)
		return
	}

	var req models.PortfolioInput
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

	p, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		log.Error("failed to create portfolio", sl.Err(err))
		response.FromService(w, r, err, msgNotFound)
		return
	}

	log.Info("portfolio created", slog.Int64("portfolio_id", p.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(p))
}

// List godoc
// @Summary Список портфелей
// @Tags Portfolios
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Смещение"
// @Param limit query int false "Размер страницы (не больше 100)"
// @Success 200 {object} response.Response
// @Router /portfolios [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.portfolios.List"
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
		log.Error("failed to list portfolios", sl.Err(err))
		response.FromService(w, r, err, msgNotFound)
		return
	}
	render.JSON(w, r, response.List(list))
}

// Get godoc
// @Summary Получить портфель
// @Tags Portfolios
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID портфеля"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Портфель не найден"
// @Router /portfolios/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.portfolios.Get"
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

	p, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		log.Info("failed to read portfolio", sl.Err(err))
		response.FromService(w, r, err, msgNotFound)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(p))
}

// Update изменяет название и описание портфеля.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.portfolios.Update"
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

	var req models.PortfolioInput
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

	p, err := h.service.Update(r.Context(), user.ID, id, req)
	if err != nil {
		log.Info("failed to update portfolio", sl.Err(err))
		response.FromService(w, r, err, msgNotFound)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(p))
}

// Delete удаляет портфель вместе с активами и отвечает 204.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.portfolios.Delete"
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
		log.Info("failed to delete portfolio", sl.Err(err))
		response.FromService(w, r, err, msgNotFound)
		return
	}
	log.Info("portfolio deleted", slog.Int64("portfolio_id", id))
	render.NoContent(w, r)
}
