// Package reject реализует HTTP-обработчик отклонения заявки.
package reject

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/plot-reservation/internal/http/response"
	"github.com/magabrotheeeer/plot-reservation/internal/lib/sl"
	"github.com/magabrotheeeer/plot-reservation/internal/models"
	"github.com/magabrotheeeer/plot-reservation/internal/storage/repository"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Reject(ctx context.Context, id int) (*models.Subscription, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отклонить заявку
// @Description Переводит заявку в статус rejected и возвращает обновлённую запись.
// @Tags Subscriptions
// @Produce  json
// @Param id path int true "ID заявки"
// @Success 200 {object} response.Response "Обновлённая заявка"
// @Failure 400 {object} response.Response "Некорректный ID"
// @Failure 404 {object} response.Response "Заявка не найдена"
// @Failure 500 {object} response.Response "Ошибка сервера"
// @Router /subscriptions/{id}/reject [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.reject"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	updated, err := h.service.Reject(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			log.Info("subscription not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.NotFound("Subscription not found"))
			return
		}
		log.Error("failed to reject subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not reject subscription"))
		return
	}

	log.Info("success to reject subscription", slog.Int("id", id))
	render.JSON(w, r, response.OK(updated))
}
