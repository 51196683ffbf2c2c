package models

import "github.com/shopspring/decimal"

// FinancialStats - агрегаты по всей коллекции платежей. Просрочка считается
// по актуальному (пересчитанному) статусу, а не по сохранённому.
type FinancialStats struct {
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	PendingRevenue  decimal.Decimal `json:"pending_revenue"`
	OverdueRevenue  decimal.Decimal `json:"overdue_revenue"`
	TotalPayments   int             `json:"total_payments"`
	PaidPayments    int             `json:"paid_payments"`
	OverduePayments int             `json:"overdue_payments"`
	PaymentRate     float64         `json:"payment_rate"`
}

// MonthlyReport - сводка платежей за один календарный месяц.
type MonthlyReport struct {
	Month   int             `json:"month"`
	Year    int             `json:"year"`
	Total   int             `json:"total"`
	Paid    int             `json:"paid"`
	Pending int             `json:"pending"`
	Overdue int             `json:"overdue"`
	Revenue decimal.Decimal `json:"revenue"`
}

// EquipmentStats - сводка по инвентарю и выдачам.
type EquipmentStats struct {
	TotalEquipment   int `json:"total_equipment"`
	TotalItems       int `json:"total_items"`
	AvailableItems   int `json:"available_items"`
	LoanedItems      int `json:"loaned_items"`
	NeedsMaintenance int `json:"needs_maintenance"`
	OverdueLoans     int `json:"overdue_loans"`
}
