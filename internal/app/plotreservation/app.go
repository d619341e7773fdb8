package plotreservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/plot-reservation/internal/cache"
	"github.com/magabrotheeeer/plot-reservation/internal/config"
	"github.com/magabrotheeeer/plot-reservation/internal/lib/upload"
	"github.com/magabrotheeeer/plot-reservation/internal/migrations"
	"github.com/magabrotheeeer/plot-reservation/internal/rabbitmq"
	subservice "github.com/magabrotheeeer/plot-reservation/internal/services/subscription"
	"github.com/magabrotheeeer/plot-reservation/internal/storage"
	"github.com/magabrotheeeer/plot-reservation/internal/storage/repository"
)

// App держит зависимости с собственным жизненным циклом.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	rabbit *amqp.Connection
}

// New собирает приложение: хранилище, миграции, кеш, очередь событий,
// бизнес-логику и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err := runMigrations(cfg); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.New(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitConnectionString, 5, 2*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.NotificationQueues())
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(ch, rabbitmq.NotificationsExchange)

	saver, err := upload.New(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	subscriptionService := subservice.NewSubscriptionService(
		db,
		repository.NewSubscriptionRepository(db),
		repository.NewPlotRepository(db),
		cacheRedis,
		publisher,
		logger,
	)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, subscriptionService, saver)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		rabbit: rabbitConn,
	}, nil
}

// runMigrations применяет миграции через отдельное database/sql-подключение:
// golang-migrate работает поверх *sql.DB, основной пул остаётся pgx-овым.
func runMigrations(cfg *config.Config) error {
	const op = "app.runMigrations"

	db, err := sql.Open("pgx", cfg.StorageConnectionString)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := migrations.Run(db, cfg.MigrationsPath); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.Close()
		if rabbitErr := a.rabbit.Close(); rabbitErr != nil {
			a.logger.Warn("failed to close rabbitmq connection", slog.Any("err", rabbitErr))
		}
		return err
	}
}
