// Package users реализует регистрацию, выдачу токена и работу с профилем
// текущего пользователя.
//
// POST /auth/token принимает OAuth2 password form (username содержит email)
// и, для удобства клиентов, такой же JSON. Ответ токена отдаётся в формате
// OAuth2 без общей обёртки response.Response.
package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/wealth-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wealth-management/internal/http/response"
	"github.com/magabrotheeeer/wealth-management/internal/lib/sl"
	"github.com/magabrotheeeer/wealth-management/internal/models"
	"github.com/magabrotheeeer/wealth-management/internal/services/auth"
)

const (
	msgEmailTaken         = "email already registered"
	msgInvalidCredentials = "incorrect username or password"
	msgNotFound           = "user not found"
)

// Service описывает бизнес-логику пользователей.
type Service interface {
	Register(ctx context.Context, in models.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	UpdateProfile(ctx context.Context, userID int64, in models.ProfileInput) (*models.User, error)
	Deactivate(ctx context.Context, userID int64) error
}

// TokenResponse ответ на выдачу токена.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"bearer"`
}

// Handler обрабатывает запросы /users и /auth/token.
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

// Register godoc
// @Summary Регистрация пользователя
// @Tags Users
// @Accept json
// @Produce json
// @Param request body models.RegisterInput true "Данные пользователя"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или email уже занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.Register"
	log := h.logger(r, op)

	var req models.RegisterInput
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

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Info("email already registered")
			response.Fail(w, r, http.StatusBadRequest, msgEmailTaken)
			return
		}
		log.Error("failed to register user", sl.Err(err))
		response.FromService(w, r, err, msgNotFound)
		return
	}

	log.Info("user registered", slog.Int64("user_id", user.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(user))
}

// Token godoc
// @Summary Выдача токена доступа
// @Description OAuth2 password flow: username это email пользователя.
// @Tags Users
// @Accept x-www-form-urlencoded
// @Accept json
// @Produce json
// @Param username formData string true "Email"
// @Param password formData string true "Пароль"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /auth/token [post]
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.Token"
	log := h.logger(r, op)

	req, err := decodeCredentials(r)
	if err != nil {
		log.Error("failed to decode credentials", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, response.MsgInvalidBody)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Info("login rejected")
			w.Header().Set("WWW-Authenticate", "Bearer")
			response.Fail(w, r, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		log.Error("login failed", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.MsgInternalError)
		return
	}

	log.Info("token issued")
	render.JSON(w, r, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func decodeCredentials(r *http.Request) (models.LoginInput, error) {
	var req models.LoginInput
	if render.GetRequestContentType(r) == render.ContentTypeForm {
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
		return req, nil
	}
	err := render.DecodeJSON(r.Body, &req)
	return req, err
}

// Me godoc
// @Summary Текущий пользователь
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Не аутентифицирован"
// @Router /users/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		middlewarectx.Unauthorized(w, r)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(user))
}

// UpdateMe меняет имя и фамилию текущего пользователя.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.UpdateMe"
	log := h.logger(r, op)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		middlewarectx.Unauthorized(w, r)
		return
	}

	var req models.ProfileInput
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

	updated, err := h.service.UpdateProfile(r.Context(), user.ID, req)
	if err != nil {
		log.Error("failed to update profile", sl.Err(err))
		response.FromService(w, r, err, msgNotFound)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(updated))
}

// Deactivate выключает текущего пользователя и отвечает 204.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.Deactivate"
	log := h.logger(r, op)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		middlewarectx.Unauthorized(w, r)
		return
	}

	if err := h.service.Deactivate(r.Context(), user.ID); err != nil {
		log.Error("failed to deactivate user", sl.Err(err))
		response.FromService(w, r, err, msgNotFound)
		return
	}
	log.Info("user deactivated", slog.Int64("user_id", user.ID))
	render.NoContent(w, r)
}
