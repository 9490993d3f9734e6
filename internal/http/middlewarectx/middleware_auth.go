// Package middlewarectx содержит HTTP middleware: аутентификацию по bearer-токену
// и сбор метрик запросов.
//
// Authenticate извлекает токен из заголовка Authorization, один раз на запрос
// разрешает его в пользователя и кладёт *models.User в контекст запроса.
// Любая неудача даёт одинаковый ответ 401, причина пишется только в лог.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wealth-management/internal/http/response"
	"github.com/magabrotheeeer/wealth-management/internal/lib/sl"
	"github.com/magabrotheeeer/wealth-management/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User ключ действующего пользователя в контексте.
const User Key = "user"

// MsgUnauthorized единственное сообщение для всех отказов аутентификации.
const MsgUnauthorized = "could not validate credentials"

// Resolver разрешает сырой токен в активного пользователя.
type Resolver interface {
	Resolve(ctx context.Context, rawToken string) (*models.User, error)
}

// WithUser возвращает контекст с действующим пользователем.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, User, user)
}

// UserFromContext возвращает пользователя, положенного Authenticate.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(User).(*models.User)
	return user, ok && user != nil
}

// Authenticate возвращает middleware, пропускающее запрос дальше только
// с валидным токеном активного пользователя.
func Authenticate(log *slog.Logger, resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Authenticate"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				log.Info("missing or malformed authorization header")
				Unauthorized(w, r)
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				log.Info("failed to resolve token", sl.Err(err))
				Unauthorized(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// Unauthorized пишет стандартный ответ 401.
func Unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, response.Error(MsgUnauthorized))
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
