// Package create реализует HTTP-обработчик для создания новых заявок
// на бронирование участков.
//
// Handler принимает multipart-форму с данными заявителя и до четырёх
// документов, сохраняет файлы на диск, валидирует поля и вызывает
// бизнес-логику создания заявки. Если в форме указан plotId, участок
// бронируется в одной транзакции со вставкой заявки.
package create

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/plot-reservation/internal/http/response"
	"github.com/magabrotheeeer/plot-reservation/internal/lib/sl"
	"github.com/magabrotheeeer/plot-reservation/internal/models"
	"github.com/magabrotheeeer/plot-reservation/internal/storage/repository"
)

// maxFormMemory ограничивает объём формы, удерживаемый в памяти.
const maxFormMemory = 32 << 20

// Поля формы с документами заявителя.
var documentFields = []string{"passportPhoto", "identificationFile", "utilityBillFile", "signatureFile"}

// Handler управляет HTTP-запросами на создание новых заявок.
type Handler struct {
	log      *slog.Logger
	service  Service
	saver    FileSaver
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания заявки.
type Service interface {
	Create(ctx context.Context, form models.SubscriptionForm) (*models.Subscription, error)
}

// FileSaver сохраняет загруженный документ и возвращает путь к файлу.
type FileSaver interface {
	Save(fh *multipart.FileHeader) (string, error)
}

// New создает новый Handler с переданными логгером, сервисом и хранилищем файлов.
func New(log *slog.Logger, service Service, saver FileSaver) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		saver:    saver,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать новую заявку
// @Description Создает заявку на бронирование участка с документами. Участок из plotId бронируется атомарно с заявкой.
// @Tags Subscriptions
// @Accept  multipart/form-data
// @Produce  json
// @Param fullName formData string true "Полное имя заявителя"
// @Param email formData string true "Email заявителя"
// @Param phone formData string true "Телефон заявителя"
// @Param address formData string false "Адрес заявителя"
// @Param plotId formData int false "Идентификатор участка"
// @Param passportPhoto formData file false "Фото паспорта"
// @Param identificationFile formData file false "Удостоверение личности"
// @Param utilityBillFile formData file false "Квитанция ЖКХ"
// @Param signatureFile formData file false "Подпись"
// @Success 200 {object} response.Response "Созданная заявка"
// @Failure 400 {object} response.Response "Некорректная форма"
// @Failure 409 {object} response.Response "Участок уже занят"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Failure 500 {object} response.Response "Ошибка сервера"
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	form := models.SubscriptionForm{
		FullName: r.FormValue("fullName"),
		Email:    r.FormValue("email"),
		Phone:    r.FormValue("phone"),
		Address:  r.FormValue("address"),
	}

	if raw := r.FormValue("plotId"); raw != "" {
		plotID, err := strconv.Atoi(raw)
		if err != nil {
			log.Error("failed to parse plotId", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("plotId must be a number"))
			return
		}
		form.PlotID = &plotID
	}

	if err := h.validate.Struct(form); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	if err := h.attachDocuments(r, &form); err != nil {
		log.Error("failed to save uploaded document", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not save uploaded documents"))
		return
	}

	created, err := h.service.Create(r.Context(), form)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPlotUnavailable):
			log.Warn("plot already reserved", slog.Any("plot_id", form.PlotID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("plot is not available"))
		default:
			log.Error("failed to create subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create subscription"))
		}
		return
	}

	log.Info("success to create subscription", slog.Int("id", created.ID))
	render.JSON(w, r, response.OK(created))
}

// attachDocuments сохраняет присланные документы и записывает пути в форму.
// Отсутствующий файл не ошибка: документы необязательны.
func (h *Handler) attachDocuments(r *http.Request, form *models.SubscriptionForm) error {
	targets := map[string]**string{
		"passportPhoto":      &form.PassportPhoto,
		"identificationFile": &form.IdentificationFile,
		"utilityBillFile":    &form.UtilityBillFile,
		"signatureFile":      &form.SignatureFile,
	}

	for _, field := range documentFields {
		files := r.MultipartForm.File[field]
		if len(files) == 0 {
			continue
		}
		path, err := h.saver.Save(files[0])
		if err != nil {
			return err
		}
		*targets[field] = &path
	}
	return nil
}
