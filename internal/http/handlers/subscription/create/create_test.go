package create

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/plot-reservation/internal/models"
	"github.com/magabrotheeeer/plot-reservation/internal/storage/repository"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, form models.SubscriptionForm) (*models.Subscription, error) {
	args := m.Called(ctx, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

// MockSaver реализует интерфейс create.FileSaver
type MockSaver struct {
	mock.Mock
}

func (m *MockSaver) Save(fh *multipart.FileHeader) (string, error) {
	args := m.Called(fh)
	return args.String(0), args.Error(1)
}

type formSpec struct {
	fields map[string]string
	files  map[string]string
}

func buildMultipartBody(t *testing.T, spec formSpec) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range spec.fields {
		require.NoError(t, w.WriteField(name, value))
	}
	for field, filename := range spec.files {
		fw, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("file content"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	validFields := map[string]string{
		"fullName": "Ivan Petrov",
		"email":    "ivan@example.com",
		"phone":    "+79990001122",
		"address":  "Moscow",
	}

	tests := []struct {
		name           string
		form           formSpec
		setupMocks     func(s *MockService, f *MockSaver)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное создание заявки без участка",
			form: formSpec{fields: validFields},
			setupMocks: func(s *MockService, _ *MockSaver) {
				s.On("Create", mock.Anything, mock.MatchedBy(func(form models.SubscriptionForm) bool {
					return form.Email == "ivan@example.com" && form.PlotID == nil
				})).Return(&models.Subscription{ID: 1, Email: "ivan@example.com", Status: models.StatusPending}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"success":true`,
		},
		{
			name: "успешное создание заявки с участком и документами",
			form: formSpec{
				fields: map[string]string{
					"fullName": "Ivan Petrov",
					"email":    "ivan@example.com",
					"phone":    "+79990001122",
					"plotId":   "7",
				},
				files: map[string]string{
					"passportPhoto": "passport.png",
					"signatureFile": "signature.jpg",
				},
			},
			setupMocks: func(s *MockService, f *MockSaver) {
				f.On("Save", mock.Anything).Return("uploads/doc.png", nil).Twice()
				s.On("Create", mock.Anything, mock.MatchedBy(func(form models.SubscriptionForm) bool {
					return form.PlotID != nil && *form.PlotID == 7 &&
						form.PassportPhoto != nil && form.SignatureFile != nil
				})).Return(&models.Subscription{ID: 2, Status: models.StatusPending}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"pending"`,
		},
		{
			name: "некорректный plotId",
			form: formSpec{fields: map[string]string{
				"fullName": "Ivan Petrov",
				"email":    "ivan@example.com",
				"phone":    "+79990001122",
				"plotId":   "seven",
			}},
			setupMocks:     func(_ *MockService, _ *MockSaver) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"plotId must be a number"`,
		},
		{
			name: "ошибка валидации",
			form: formSpec{fields: map[string]string{
				"fullName": "Ivan Petrov",
				"email":    "not-an-email",
			}},
			setupMocks:     func(_ *MockService, _ *MockSaver) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Email must be a valid email`,
		},
		{
			name: "участок уже занят",
			form: formSpec{fields: map[string]string{
				"fullName": "Ivan Petrov",
				"email":    "ivan@example.com",
				"phone":    "+79990001122",
				"plotId":   "7",
			}},
			setupMocks: func(s *MockService, _ *MockSaver) {
				s.On("Create", mock.Anything, mock.Anything).Return(nil, repository.ErrPlotUnavailable)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"plot is not available"`,
		},
		{
			name: "несуществующий участок откатывает заявку",
			form: formSpec{fields: map[string]string{
				"fullName": "Ivan Petrov",
				"email":    "ivan@example.com",
				"phone":    "+79990001122",
				"plotId":   "999",
			}},
			setupMocks: func(s *MockService, _ *MockSaver) {
				s.On("Create", mock.Anything, mock.Anything).Return(nil, repository.ErrPlotNotFound)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not create subscription"`,
		},
		{
			name: "ошибка сервиса",
			form: formSpec{fields: validFields},
			setupMocks: func(s *MockService, _ *MockSaver) {
				s.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not create subscription"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			mockSaver := new(MockSaver)
			tt.setupMocks(mockService, mockSaver)

			handler := New(logger, mockService, mockSaver)

			body, contentType := buildMultipartBody(t, tt.form)
			req := httptest.NewRequest(http.MethodPost, "/subscriptions", body)
			req.Header.Set("Content-Type", contentType)
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-id"))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
			mockSaver.AssertExpectations(t)
		})
	}
}

func TestCreateHandler_NotMultipart(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	handler := New(logger, new(MockService), new(MockSaver))

	req := httptest.NewRequest(http.MethodPost, "/subscriptions", bytes.NewReader([]byte(`{"fullName":"Ivan"}`)))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid multipart form")
}
