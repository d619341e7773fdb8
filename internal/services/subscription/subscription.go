// Package services содержит бизнес-логику работы с заявками на бронирование:
// транзакционное создание заявки с бронированием участка, выборки с
// кешированием, смену статусов и публикацию событий.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/plot-reservation/internal/models"
	"github.com/magabrotheeeer/plot-reservation/internal/storage"
)

// Ошибки уровня бизнес-логики.
var (
	// ErrNoLinkedPlot возвращается, когда к заявке не привязан участок.
	ErrNoLinkedPlot = errors.New("no plot associated with this subscription")
	// ErrInvalidPlotStatus возвращается при попытке записать статус участка
	// вне закрытого набора допустимых значений.
	ErrInvalidPlotStatus = errors.New("invalid plot status")
)

// SubscriptionRepository определяет методы работы с заявками в хранилище.
type SubscriptionRepository interface {
	// CreateTx вставляет заявку в рамках переданного Querier.
	CreateTx(ctx context.Context, q storage.Querier, form models.SubscriptionForm) (*models.Subscription, error)
	// ListAll возвращает все заявки.
	ListAll(ctx context.Context) ([]*models.Subscription, error)
	// FindByEmail возвращает заявки с указанным email.
	FindByEmail(ctx context.Context, email string) ([]*models.Subscription, error)
	// UpdateStatus меняет статус заявки и возвращает обновлённую запись.
	UpdateStatus(ctx context.Context, id int, status string) (*models.Subscription, error)
	// ReadPlotID возвращает plot_id заявки, nil — участок не привязан.
	ReadPlotID(ctx context.Context, id int) (*int, error)
}

// PlotRepository определяет методы работы с участками в хранилище.
type PlotRepository interface {
	// ReserveTx переводит участок в Reserved в рамках переданного Querier.
	ReserveTx(ctx context.Context, q storage.Querier, plotID, subscriptionID int) error
	// UpdateStatusTx записывает статус участка в рамках переданного Querier.
	UpdateStatusTx(ctx context.Context, q storage.Querier, plotID int, status string) (*models.Plot, error)
}

// TxRunner выполняет функцию внутри одной транзакции хранилища.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(q storage.Querier) error) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// EventPublisher публикует доменные события для внешних потребителей.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

const (
	cacheKeyAll = "subscriptions:all"
	cacheTTL    = time.Hour
)

func cacheKeyEmail(email string) string {
	return "subscriptions:email:" + email
}

// SubscriptionService реализует бизнес-логику заявок поверх репозиториев,
// транзакционного исполнителя, кеша и издателя событий.
type SubscriptionService struct {
	tx     TxRunner
	subs   SubscriptionRepository
	plots  PlotRepository
	cache  Cache
	events EventPublisher
	log    *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(tx TxRunner, subs SubscriptionRepository, plots PlotRepository,
	cache Cache, events EventPublisher, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		tx:     tx,
		subs:   subs,
		plots:  plots,
		cache:  cache,
		events: events,
		log:    log,
	}
}

// Create создает заявку и, если в форме указан участок, бронирует его
// в той же транзакции. Несуществующий или уже занятый участок откатывает
// вставку заявки целиком: заявка не должна сохраниться без успешно
// забронированного участка.
func (s *SubscriptionService) Create(ctx context.Context, form models.SubscriptionForm) (*models.Subscription, error) {
	var created *models.Subscription

	err := s.tx.WithinTx(ctx, func(q storage.Querier) error {
		sub, err := s.subs.CreateTx(ctx, q, form)
		if err != nil {
			return err
		}
		if form.PlotID != nil {
			if err := s.plots.ReserveTx(ctx, q, *form.PlotID, sub.ID); err != nil {
				return err
			}
		}
		created = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("created new subscription", slog.Int("id", created.ID))
	s.invalidateListCaches(ctx, created.Email)
	s.publishEvent("subscription.created", created)

	return created, nil
}

// ListAll возвращает все заявки, используя кеш или репозиторий.
func (s *SubscriptionService) ListAll(ctx context.Context) ([]*models.Subscription, error) {
	var cached []*models.Subscription
	found, err := s.cache.Get(ctx, cacheKeyAll, &cached)
	if err != nil {
		s.log.Warn("failed to read cache", slog.String("key", cacheKeyAll), slog.Any("err", err))
	}
	if found {
		return cached, nil
	}

	entries, err := s.subs.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cacheKeyAll, entries, cacheTTL); err != nil {
		s.log.Warn("failed to cache subscriptions", slog.String("key", cacheKeyAll), slog.Any("err", err))
	}
	return entries, nil
}

// FindByEmail возвращает заявки по email, используя кеш или репозиторий.
// Пустой результат — валидный ответ, он тоже кешируется.
func (s *SubscriptionService) FindByEmail(ctx context.Context, email string) ([]*models.Subscription, error) {
	key := cacheKeyEmail(email)

	var cached []*models.Subscription
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read cache", slog.String("key", key), slog.Any("err", err))
	}
	if found {
		return cached, nil
	}

	entries, err := s.subs.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, entries, cacheTTL); err != nil {
		s.log.Warn("failed to cache subscriptions", slog.String("key", key), slog.Any("err", err))
	}
	return entries, nil
}

// Approve переводит заявку в статус approved.
func (s *SubscriptionService) Approve(ctx context.Context, id int) (*models.Subscription, error) {
	return s.updateStatus(ctx, id, models.StatusApproved)
}

// Reject переводит заявку в статус rejected.
func (s *SubscriptionService) Reject(ctx context.Context, id int) (*models.Subscription, error) {
	return s.updateStatus(ctx, id, models.StatusRejected)
}

func (s *SubscriptionService) updateStatus(ctx context.Context, id int, status string) (*models.Subscription, error) {
	updated, err := s.subs.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.log.Info("updated subscription status",
		slog.Int("id", id), slog.String("status", status))
	s.invalidateListCaches(ctx, updated.Email)
	s.publishEvent("subscription."+status, updated)

	return updated, nil
}

// UpdatePlotStatus записывает новый статус участка, привязанного к заявке.
// Значение проверяется по закрытому набору статусов до любого обращения
// к хранилищу; отсутствие заявки или привязанного участка разрешается
// до открытия транзакции, чтобы не держать сессию впустую.
func (s *SubscriptionService) UpdatePlotStatus(ctx context.Context, subscriptionID int, status string) (*models.Plot, error) {
	if !models.ValidPlotStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlotStatus, status)
	}

	plotID, err := s.subs.ReadPlotID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if plotID == nil {
		return nil, ErrNoLinkedPlot
	}

	var plot *models.Plot
	err = s.tx.WithinTx(ctx, func(q storage.Querier) error {
		updated, err := s.plots.UpdateStatusTx(ctx, q, *plotID, status)
		if err != nil {
			return err
		}
		plot = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("updated plot status",
		slog.Int("plot_id", *plotID), slog.String("status", status))
	s.publishEvent("plot.status_updated", plot)

	return plot, nil
}

// invalidateListCaches сбрасывает кеш списков после любой мутации заявок.
func (s *SubscriptionService) invalidateListCaches(ctx context.Context, email string) {
	for _, key := range []string{cacheKeyAll, cacheKeyEmail(email)} {
		if err := s.cache.Invalidate(ctx, key); err != nil {
			s.log.Warn("failed to invalidate cache", slog.String("key", key), slog.Any("err", err))
		}
	}
}

// publishEvent отправляет событие в обменник уведомлений. Ошибка публикации
// не отменяет уже зафиксированную запись, только логируется.
func (s *SubscriptionService) publishEvent(routingKey string, message any) {
	if err := s.events.Publish(routingKey, message); err != nil {
		s.log.Warn("failed to publish event", slog.String("routing_key", routingKey), slog.Any("err", err))
	}
}
