// Package plotstatus реализует HTTP-обработчик смены статуса участка,
// привязанного к заявке. Значение статуса проверяется по закрытому набору
// до записи; 404 и 400 формируются без открытия транзакции.
package plotstatus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/plot-reservation/internal/http/response"
	"github.com/magabrotheeeer/plot-reservation/internal/lib/sl"
	"github.com/magabrotheeeer/plot-reservation/internal/models"
	services "github.com/magabrotheeeer/plot-reservation/internal/services/subscription"
	"github.com/magabrotheeeer/plot-reservation/internal/storage/repository"
)

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	UpdatePlotStatus(ctx context.Context, subscriptionID int, status string) (*models.Plot, error)
}

// Request — тело запроса со статусом участка.
type Request struct {
	Status string `json:"status" validate:"required"`
}

// plotStatusResponse повторяет форму ответа этого эндпоинта:
// success, message и обновлённый участок.
type plotStatusResponse struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message"`
	UpdatedPlot *models.Plot `json:"updatedPlot"`
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Сменить статус участка заявки
// @Description Записывает новый статус участка, привязанного к заявке. Статус проверяется по закрытому набору значений.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param id path int true "ID заявки"
// @Param request body Request true "Новый статус участка"
// @Success 200 {object} plotStatusResponse "Обновлённый участок"
// @Failure 400 {object} response.Response "Некорректный запрос или участок не привязан"
// @Failure 404 {object} response.Response "Заявка не найдена"
// @Failure 422 {object} response.Response "Недопустимый статус"
// @Failure 500 {object} response.Response "Ошибка сервера"
// @Router /subscriptions/{id}/update-plot-status [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.plotstatus"
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

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	plot, err := h.service.UpdatePlotStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPlotStatus):
			log.Error("invalid plot status", slog.String("status", req.Status))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("unknown plot status"))
		case errors.Is(err, repository.ErrSubscriptionNotFound):
			log.Info("subscription not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.NotFound("Subscription not found"))
		case errors.Is(err, services.ErrNoLinkedPlot):
			log.Info("subscription has no linked plot", slog.Int("id", id))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.NotFound("No plot associated with this subscription"))
		default:
			log.Error("failed to update plot status", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update plot status"))
		}
		return
	}

	log.Info("success to update plot status",
		slog.Int("id", id), slog.String("status", req.Status))
	render.JSON(w, r, plotStatusResponse{
		Success:     true,
		Message:     fmt.Sprintf("Plot status updated to %s", req.Status),
		UpdatedPlot: plot,
	})
}
