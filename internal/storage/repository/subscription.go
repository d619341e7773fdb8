// Package repository реализует доступ к таблицам subscriptions и plots.
// Методы принимают storage.Querier, поэтому одинаково работают на пуле
// соединений и внутри транзакции, открытой вызывающей стороной.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/magabrotheeeer/plot-reservation/internal/models"
	"github.com/magabrotheeeer/plot-reservation/internal/storage"
)

const subscriptionColumns = `id, full_name, email, phone, address, passport_photo,
	identification_file, utility_bill_file, signature_file, plot_id, status, created_at`

// SubscriptionRepository выполняет запросы к таблице subscriptions.
type SubscriptionRepository struct {
	db *storage.Storage
}

// NewSubscriptionRepository создает репозиторий заявок поверх хранилища.
func NewSubscriptionRepository(db *storage.Storage) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func scanSubscription(row pgx.Row) (*models.Subscription, error) {
	var sub models.Subscription
	err := row.Scan(&sub.ID, &sub.FullName, &sub.Email, &sub.Phone, &sub.Address,
		&sub.PassportPhoto, &sub.IdentificationFile, &sub.UtilityBillFile,
		&sub.SignatureFile, &sub.PlotID, &sub.Status, &sub.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// CreateTx вставляет новую заявку со статусом pending в рамках переданного
// Querier и возвращает сохранённую запись с присвоенным ID. Вставка обязана
// выполняться тем же Querier, что и бронирование участка, иначе откат
// не затронет заявку.
func (r *SubscriptionRepository) CreateTx(ctx context.Context, q storage.Querier, form models.SubscriptionForm) (*models.Subscription, error) {
	const op = "repository.CreateTx"

	query := `INSERT INTO subscriptions (full_name, email, phone, address, passport_photo,
				  identification_file, utility_bill_file, signature_file, plot_id, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING ` + subscriptionColumns
	row := q.QueryRow(ctx, query,
		form.FullName, form.Email, form.Phone, form.Address, form.PassportPhoto,
		form.IdentificationFile, form.UtilityBillFile, form.SignatureFile,
		form.PlotID, models.StatusPending)

	sub, err := scanSubscription(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// ListAll возвращает все заявки в порядке возрастания ID.
func (r *SubscriptionRepository) ListAll(ctx context.Context) ([]*models.Subscription, error) {
	const op = "repository.ListAll"

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  ORDER BY id`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindByEmail возвращает заявки с точным совпадением email.
// Отсутствие совпадений — пустой срез, а не ошибка.
func (r *SubscriptionRepository) FindByEmail(ctx context.Context, email string) ([]*models.Subscription, error) {
	const op = "repository.FindByEmail"

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE email = $1
			  ORDER BY id`
	rows, err := r.db.Pool.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateStatus устанавливает статус заявки и возвращает обновлённую запись.
// Отсутствие строки с таким ID — ErrSubscriptionNotFound, не сбой.
func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, id int, status string) (*models.Subscription, error) {
	const op = "repository.UpdateStatus"

	query := `UPDATE subscriptions
			  SET status = $1
			  WHERE id = $2
			  RETURNING ` + subscriptionColumns
	sub, err := scanSubscription(r.db.Pool.QueryRow(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// ReadPlotID возвращает plot_id заявки. nil означает, что участок
// к заявке не привязан.
func (r *SubscriptionRepository) ReadPlotID(ctx context.Context, id int) (*int, error) {
	const op = "repository.ReadPlotID"

	var plotID *int
	err := r.db.Pool.QueryRow(ctx, `SELECT plot_id FROM subscriptions WHERE id = $1`, id).Scan(&plotID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plotID, nil
}
