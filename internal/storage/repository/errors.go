package repository

import "errors"

// Сигнальные ошибки хранилища. Отличают "запись не найдена" от ошибки
// выполнения запроса: первое — ожидаемый исход, второе — сбой.
var (
	// ErrSubscriptionNotFound возвращается, когда заявка с указанным ID не существует.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrPlotNotFound возвращается, когда участок с указанным ID не существует.
	ErrPlotNotFound = errors.New("plot not found")
	// ErrPlotUnavailable возвращается при попытке забронировать участок,
	// который уже не находится в статусе available.
	ErrPlotUnavailable = errors.New("plot is not available")
)
