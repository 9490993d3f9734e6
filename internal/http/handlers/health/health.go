// Package health отдаёт приветствие API и проверку готовности хранилища.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wealth-management/internal/http/response"
	"github.com/magabrotheeeer/wealth-management/internal/lib/sl"
)

// Checker проверяет, что зависимость готова обслуживать запросы.
type Checker func(ctx context.Context) error

// Handler обрабатывает / и /health.
type Handler struct {
	log   *slog.Logger
	check Checker
}

// New создает Handler. Пустой check считается всегда успешным.
func New(log *slog.Logger, check Checker) *Handler {
	if check == nil {
		check = func(context.Context) error { return nil }
	}
	return &Handler{log: log, check: check}
}

// Root отдаёт приветствие и адрес документации.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"message": "Welcome to the Wealth Management API",
		"docs":    "/docs/index.html",
	})
}

// Ready godoc
// @Summary Проверка готовности
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /health [get]
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health.Ready"

	if err := h.check(r.Context()); err != nil {
		h.log.Error("storage is not ready",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		response.Fail(w, r, http.StatusServiceUnavailable, "storage is not ready")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": "ok",
	}))
}
