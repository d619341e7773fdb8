// Package plotreservation собирает приложение: маршруты, зависимости
// и жизненный цикл HTTP-сервера.
package plotreservation

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/plot-reservation/internal/http/handlers/subscription/approve"
	"github.com/magabrotheeeer/plot-reservation/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/plot-reservation/internal/http/handlers/subscription/health"
	"github.com/magabrotheeeer/plot-reservation/internal/http/handlers/subscription/listall"
	"github.com/magabrotheeeer/plot-reservation/internal/http/handlers/subscription/listemail"
	"github.com/magabrotheeeer/plot-reservation/internal/http/handlers/subscription/plotstatus"
	"github.com/magabrotheeeer/plot-reservation/internal/http/handlers/subscription/reject"
	"github.com/magabrotheeeer/plot-reservation/internal/http/middlewarectx"
	"github.com/magabrotheeeer/plot-reservation/internal/lib/upload"
	subservice "github.com/magabrotheeeer/plot-reservation/internal/services/subscription"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, subscriptionService *subservice.SubscriptionService, saver *upload.Saver) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware(),
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger))
		r.Post("/subscriptions", create.New(logger, subscriptionService, saver).ServeHTTP)
		r.Get("/subscriptions/all", listall.New(logger, subscriptionService).ServeHTTP)
		r.Get("/subscriptions", listemail.New(logger, subscriptionService).ServeHTTP)
		r.Put("/subscriptions/{id}/approve", approve.New(logger, subscriptionService).ServeHTTP)
		r.Put("/subscriptions/{id}/reject", reject.New(logger, subscriptionService).ServeHTTP)
		r.Put("/subscriptions/{id}/update-plot-status", plotstatus.New(logger, subscriptionService).ServeHTTP)
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
