// Package listemail реализует HTTP-обработчик поиска заявок по email.
package listemail

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
	FindByEmail(ctx context.Context, email string) ([]*models.Subscription, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Поиск заявок по email
// @Description Возвращает заявки с точным совпадением email. Пустой список — валидный ответ.
// @Tags Subscriptions
// @Produce  json
// @Param email query string true "Email заявителя"
// @Success 200 {object} response.Response "Список заявок"
// @Failure 400 {object} response.Response "Параметр email отсутствует"
// @Failure 500 {object} response.Response "Ошибка сервера"
// @Router /subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.listemail"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email := r.URL.Query().Get("email")
	if email == "" {
		log.Error("email parameter is missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("email parameter is required"))
		return
	}

	entries, err := h.service.FindByEmail(r.Context(), email)
	if err != nil {
		log.Error("failed to find subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not find subscriptions"))
		return
	}
	if entries == nil {
		entries = []*models.Subscription{}
	}

	log.Info("success to find subscriptions",
		slog.String("email", email), slog.Int("count", len(entries)))
	render.JSON(w, r, response.OK(entries))
}
