package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/plot-reservation/internal/models"
	"github.com/magabrotheeeer/plot-reservation/internal/storage"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *storage.Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *storage.Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreatePlot создает тестовый участок и возвращает его ID
func (f *TestDataFactory) CreatePlot(t *testing.T, name, location string, sizeSqm, price float64, status string) int {
	var id int
	err := f.storage.Pool.QueryRow(context.Background(),
		`INSERT INTO plots (name, location, size_sqm, price, status)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		name, location, sizeSqm, price, status).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateSubscription создает тестовую заявку и возвращает её ID
func (f *TestDataFactory) CreateSubscription(t *testing.T, fullName, email, phone string, plotID *int, status string) int {
	var id int
	err := f.storage.Pool.QueryRow(context.Background(),
		`INSERT INTO subscriptions (full_name, email, phone, plot_id, status)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		fullName, email, phone, plotID, status).Scan(&id)
	require.NoError(t, err)
	return id
}

// GetTestSubscriptionForm возвращает стандартную тестовую форму заявки
func GetTestSubscriptionForm(plotID *int) models.SubscriptionForm {
	return models.SubscriptionForm{
		FullName: "Test User",
		Email:    "test@example.com",
		Phone:    "79998887766",
		Address:  "Test Address 1",
		PlotID:   plotID,
	}
}

// TestVerification содержит общие функции для проверки результатов тестов
type TestVerification struct {
	storage *storage.Storage
}

// NewTestVerification создает новый объект для проверки результатов
func NewTestVerification(storage *storage.Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// CountSubscriptions возвращает количество заявок с данным email
func (v *TestVerification) CountSubscriptions(t *testing.T, email string) int {
	var count int
	err := v.storage.Pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM subscriptions WHERE email = $1", email).Scan(&count)
	require.NoError(t, err)
	return count
}

// VerifyPlotStatus проверяет статус участка в БД
func (v *TestVerification) VerifyPlotStatus(t *testing.T, plotID int, expectedStatus string) {
	var status string
	err := v.storage.Pool.QueryRow(context.Background(),
		"SELECT status FROM plots WHERE id = $1", plotID).Scan(&status)
	require.NoError(t, err)
	require.Equal(t, expectedStatus, status)
}

// VerifyPlotReservedBy проверяет, какой заявкой забронирован участок
func (v *TestVerification) VerifyPlotReservedBy(t *testing.T, plotID, subscriptionID int) {
	var reservedBy *int
	err := v.storage.Pool.QueryRow(context.Background(),
		"SELECT reserved_by FROM plots WHERE id = $1", plotID).Scan(&reservedBy)
	require.NoError(t, err)
	require.NotNil(t, reservedBy)
	require.Equal(t, subscriptionID, *reservedBy)
}

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL
func setupTestDatabase(t *testing.T) (*storage.Storage, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	var db *storage.Storage
	for range 10 {
		db, err = storage.New(ctx, dsn)
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	_, err = db.Pool.Exec(ctx, `
        DROP TABLE IF EXISTS subscriptions CASCADE;
        DROP TABLE IF EXISTS plots CASCADE;

        CREATE TABLE plots (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            location TEXT NOT NULL DEFAULT '',
            size_sqm NUMERIC(10, 2) NOT NULL DEFAULT 0,
            price NUMERIC(12, 2) NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'available',
            reserved_at TIMESTAMPTZ,
            reserved_by INT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );

        CREATE TABLE subscriptions (
            id SERIAL PRIMARY KEY,
            full_name TEXT NOT NULL,
            email TEXT NOT NULL,
            phone TEXT NOT NULL,
            address TEXT NOT NULL DEFAULT '',
            passport_photo TEXT,
            identification_file TEXT,
            utility_bill_file TEXT,
            signature_file TEXT,
            plot_id INT REFERENCES plots(id),
            status TEXT NOT NULL DEFAULT 'pending',
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );

        CREATE INDEX idx_subscriptions_email ON subscriptions (email);
        CREATE INDEX idx_subscriptions_plot_id ON subscriptions (plot_id);
    `)
	require.NoError(t, err, "failed to create tables")

	cleanup := func() {
		if db != nil {
			db.Close()
		}
		if pgContainer != nil {
			if err := pgContainer.Terminate(ctx); err != nil {
				fmt.Printf("failed to terminate container: %s\n", err)
			}
		}
	}

	return db, cleanup
}
