// Package wealthapi собирает HTTP API: маршруты, middleware и зависимости.
package wealthapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/wealth-management/internal/http/handlers/assets"
	"github.com/magabrotheeeer/wealth-management/internal/http/handlers/goals"
	"github.com/magabrotheeeer/wealth-management/internal/http/handlers/health"
	"github.com/magabrotheeeer/wealth-management/internal/http/handlers/portfolios"
	"github.com/magabrotheeeer/wealth-management/internal/http/handlers/subscriptions"
	"github.com/magabrotheeeer/wealth-management/internal/http/handlers/transactions"
	"github.com/magabrotheeeer/wealth-management/internal/http/handlers/users"
	"github.com/magabrotheeeer/wealth-management/internal/http/middlewarectx"
)

// Services бизнес-логика, которую обслуживают маршруты.
type Services struct {
	Resolver      middlewarectx.Resolver
	Users         users.Service
	Portfolios    portfolios.Service
	Assets        assets.Service
	Goals         goals.Service
	Transactions  transactions.Service
	Subscriptions subscriptions.Service
	Ready         health.Checker
}

// RouterOptions настройки сквозных middleware.
type RouterOptions struct {
	AllowedOrigins []string
	Metrics        *middlewarectx.Metrics
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services, opts RouterOptions) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.StripSlashes,
		cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"WWW-Authenticate"},
			AllowCredentials: true,
			MaxAge:           int((5 * time.Minute).Seconds()),
		}),
	)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	healthHandler := health.New(logger, svc.Ready)
	usersHandler := users.New(logger, svc.Users)
	portfoliosHandler := portfolios.New(logger, svc.Portfolios)
	assetsHandler := assets.New(logger, svc.Assets)
	goalsHandler := goals.New(logger, svc.Goals)
	transactionsHandler := transactions.New(logger, svc.Transactions)
	subscriptionsHandler := subscriptions.New(logger, svc.Subscriptions)

	// Открытые конечные точки
	r.Get("/", healthHandler.Root)
	r.Get("/health", healthHandler.Ready)
	r.Post("/users", usersHandler.Register)
	r.Post("/auth/token", usersHandler.Token)
	r.Get("/subscriptions/plans", subscriptionsHandler.Plans)

	// Группа с аутентификацией по токену
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.Authenticate(logger, svc.Resolver))

		r.Get("/users/me", usersHandler.Me)
		r.Put("/users/me", usersHandler.UpdateMe)
		r.Post("/users/me/deactivate", usersHandler.Deactivate)

		r.Post("/portfolios", portfoliosHandler.Create)
		r.Get("/portfolios", portfoliosHandler.List)
		r.Get("/portfolios/{id}", portfoliosHandler.Get)
		r.Put("/portfolios/{id}", portfoliosHandler.Update)
		r.Delete("/portfolios/{id}", portfoliosHandler.Delete)

		r.Post("/assets", assetsHandler.Create)
		r.Get("/assets", assetsHandler.List)
		r.Get("/assets/{id}", assetsHandler.Get)
		r.Put("/assets/{id}", assetsHandler.Update)
		r.Delete("/assets/{id}", assetsHandler.Delete)

		r.Post("/goals", goalsHandler.Create)
		r.Get("/goals", goalsHandler.List)
		r.Get("/goals/{id}", goalsHandler.Get)
		r.Put("/goals/{id}", goalsHandler.Update)
		r.Patch("/goals/{id}/progress", goalsHandler.UpdateProgress)
		r.Delete("/goals/{id}", goalsHandler.Delete)

		r.Post("/transactions", transactionsHandler.Create)
		r.Get("/transactions", transactionsHandler.List)
		r.Get("/transactions/{id}", transactionsHandler.Get)
		r.Delete("/transactions/{id}", transactionsHandler.Delete)

		r.Post("/subscriptions/payment", subscriptionsHandler.SubmitPayment)
		r.Get("/subscriptions/payments", subscriptionsHandler.Payments)
		r.Get("/subscriptions/payments/{id}", subscriptionsHandler.Payment)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint. После StripSlashes запрос "/docs/" приходит как "/docs".
	r.Get("/docs", http.RedirectHandler("/docs/index.html", http.StatusMovedPermanently).ServeHTTP)
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
