// Package models содержит доменные структуры заявок на бронирование участков
// и самих участков, а также вспомогательные типы для приёма данных из
// внешних источников (multipart-формы, JSON-запросы).
package models

import "time"

// Статусы заявки. Заявка создаётся в статусе pending и переводится
// администратором в approved или rejected; обратных переходов нет.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Subscription представляет заявку на бронирование участка:
// данные заявителя, пути к загруженным документам, ссылку на участок
// и текущий статус рассмотрения.
type Subscription struct {
	ID                 int       `json:"id"`
	FullName           string    `json:"full_name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	Address            string    `json:"address,omitempty"`
	PassportPhoto      *string   `json:"passport_photo,omitempty"`
	IdentificationFile *string   `json:"identification_file,omitempty"`
	UtilityBillFile    *string   `json:"utility_bill_file,omitempty"`
	SignatureFile      *string   `json:"signature_file,omitempty"`
	PlotID             *int      `json:"plot_id,omitempty"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
}

// SubscriptionForm используется для приёма данных multipart-формы,
// прежде чем конвертировать их в Subscription. Пути к документам
// заполняются после сохранения файлов на диск.
type SubscriptionForm struct {
	FullName           string `validate:"required"` // Полное имя заявителя
	Email              string `validate:"required,email"`
	Phone              string `validate:"required"`
	Address            string
	PlotID             *int // Идентификатор участка, необязателен
	PassportPhoto      *string
	IdentificationFile *string
	UtilityBillFile    *string
	SignatureFile      *string
}
