// Package listall реализует HTTP-обработчик получения всех заявок.
package listall

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/plot-reservation/internal/http/response"
	"github.com/magabrotheeeer/plot-reservation/internal/lib/sl"
	"github.com/magabrotheeeer/plot-reservation/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	ListAll(ctx context.Context) ([]*models.Subscription, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список всех заявок
// @Description Возвращает все заявки в порядке возрастания ID.
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} response.Response "Список заявок"
// @Failure 500 {object} response.Response "Ошибка сервера"
// @Router /subscriptions/all [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.listall"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	entries, err := h.service.ListAll(r.Context())
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list subscriptions"))
		return
	}
	if entries == nil {
		entries = []*models.Subscription{}
	}

	log.Info("success to list subscriptions", slog.Int("count", len(entries)))
	render.JSON(w, r, response.OK(entries))
}
