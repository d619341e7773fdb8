package models

import "testing"

func TestValidPlotStatus(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   bool
	}{
		{"статус available", "available", true},
		{"статус Reserved", "Reserved", true},
		{"статус Sold", "Sold", true},
		{"регистронезависимое совпадение", "sold", true},
		{"регистронезависимое совпадение в верхнем регистре", "AVAILABLE", true},
		{"неизвестный статус", "demolished", false},
		{"пустая строка", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidPlotStatus(tt.status); got != tt.want {
				t.Errorf("ValidPlotStatus(%q) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}
