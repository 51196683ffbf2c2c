package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member представляет участника клуба - источник правды для месячного взноса.
type Member struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone,omitempty"`
	Age        int             `json:"age"`
	MonthlyFee decimal.Decimal `json:"monthly_fee"`
	JoinDate   time.Time       `json:"join_date"`
	Position   *string         `json:"position,omitempty"`
	Notes      *string         `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
