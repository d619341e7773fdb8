// Package storage инкапсулирует подключение к PostgreSQL через пул соединений
// и предоставляет единую дисциплину выполнения транзакций: все связанные
// записи либо фиксируются вместе, либо откатываются вместе, а сессия
// возвращается в пул на любом пути выхода.
package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier абстрагирует pgxpool.Pool и pgx.Tx: методы репозиториев принимают
// его и потому выполняются как на пуле, так и внутри чужой транзакции.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Storage хранит пул соединений с PostgreSQL.
type Storage struct {
	Pool *pgxpool.Pool
}

// New создаёт пул соединений и проверяет доступность базы.
func New(ctx context.Context, storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	pool, err := pgxpool.New(ctx, storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{Pool: pool}, nil
}

// WithinTx выполняет fn внутри одной транзакции: Begin, затем fn, затем
// Commit; любая ошибка fn приводит к Rollback. Rollback после успешного
// Commit безвреден, поэтому он отложен безусловно.
func (s *Storage) WithinTx(ctx context.Context, fn func(q Querier) error) error {
	const op = "storage.WithinTx"

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close возвращает все соединения пула.
func (s *Storage) Close() {
	s.Pool.Close()
}
