package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/magabrotheeeer/plot-reservation/internal/models"
	"github.com/magabrotheeeer/plot-reservation/internal/storage"
)

const plotColumns = `id, name, location, size_sqm, price, status,
	reserved_at, reserved_by, created_at, updated_at`

// PlotRepository выполняет запросы к таблице plots.
type PlotRepository struct {
	db *storage.Storage
}

// NewPlotRepository создает репозиторий участков поверх хранилища.
func NewPlotRepository(db *storage.Storage) *PlotRepository {
	return &PlotRepository{db: db}
}

func scanPlot(row pgx.Row) (*models.Plot, error) {
	var p models.Plot
	err := row.Scan(&p.ID, &p.Name, &p.Location, &p.SizeSqm, &p.Price, &p.Status,
		&p.ReservedAt, &p.ReservedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ReserveTx бронирует участок под заявку в рамках переданного Querier.
// Строка участка сначала блокируется через SELECT ... FOR UPDATE и
// проверяется её текущий статус: участок не в available нельзя
// забронировать повторно, конкурирующая транзакция дождётся блокировки
// и получит ErrPlotUnavailable. Обе ошибки обязаны откатывать вставку
// заявки, выполненную в той же транзакции.
func (r *PlotRepository) ReserveTx(ctx context.Context, q storage.Querier, plotID, subscriptionID int) error {
	const op = "repository.ReserveTx"

	var status string
	err := q.QueryRow(ctx, `SELECT status FROM plots WHERE id = $1 FOR UPDATE`, plotID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPlotNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if !strings.EqualFold(status, models.PlotStatusAvailable) {
		return ErrPlotUnavailable
	}

	query := `UPDATE plots
			  SET status = $1, reserved_at = now(), reserved_by = $2, updated_at = now()
			  WHERE id = $3`
	if _, err := q.Exec(ctx, query, models.PlotStatusReserved, subscriptionID, plotID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateStatusTx записывает новый статус участка в рамках переданного Querier
// и возвращает обновлённую строку. Значение статуса валидируется на границе
// сервиса, сюда попадает уже проверенная строка.
func (r *PlotRepository) UpdateStatusTx(ctx context.Context, q storage.Querier, plotID int, status string) (*models.Plot, error) {
	const op = "repository.UpdateStatusTx"

	query := `UPDATE plots
			  SET status = $1, updated_at = now()
			  WHERE id = $2
			  RETURNING ` + plotColumns
	plot, err := scanPlot(q.QueryRow(ctx, query, status, plotID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlotNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plot, nil
}

// ReadPlot возвращает участок по ID.
func (r *PlotRepository) ReadPlot(ctx context.Context, id int) (*models.Plot, error) {
	const op = "repository.ReadPlot"

	plot, err := scanPlot(r.db.Pool.QueryRow(ctx,
		`SELECT `+plotColumns+` FROM plots WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlotNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plot, nil
}
