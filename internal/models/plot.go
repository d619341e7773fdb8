package models

import (
	"strings"
	"time"
)

// Статусы участка. Закрытый набор: свободен, забронирован, продан.
const (
	PlotStatusAvailable = "available"
	PlotStatusReserved  = "Reserved"
	PlotStatusSold      = "Sold"
)

// Plot представляет участок земли. Участок переходит в статус Reserved
// при создании заявки со ссылкой на него, reserved_by хранит ID заявки.
type Plot struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Location   string     `json:"location,omitempty"`
	SizeSqm    float64    `json:"size_sqm"`
	Price      float64    `json:"price"`
	Status     string     `json:"status"`
	ReservedAt *time.Time `json:"reserved_at,omitempty"`
	ReservedBy *int       `json:"reserved_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ValidPlotStatus проверяет, входит ли значение в закрытый набор статусов.
// Сравнение регистронезависимое, записывается значение в том виде,
// в котором его прислал клиент.
func ValidPlotStatus(status string) bool {
	for _, known := range []string{PlotStatusAvailable, PlotStatusReserved, PlotStatusSold} {
		if strings.EqualFold(status, known) {
			return true
		}
	}
	return false
}
