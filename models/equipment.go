package models

import "time"

// EquipmentCategory представляет категории инвентаря, от категории зависит
// интервал обслуживания.
type EquipmentCategory string

const (
	CategoryBall    EquipmentCategory = "ball"
	CategoryNet     EquipmentCategory = "net"
	CategoryUniform EquipmentCategory = "uniform"
	CategoryGear    EquipmentCategory = "gear"
)

// EquipmentCondition представляет состояние инвентаря.
type EquipmentCondition string

const (
	ConditionExcellent EquipmentCondition = "excellent"
	ConditionGood      EquipmentCondition = "good"
	ConditionFair      EquipmentCondition = "fair"
	ConditionPoor      EquipmentCondition = "poor"
	ConditionUnusable  EquipmentCondition = "unusable"
)

// ValidEquipmentCategory проверяет, что строка является известной категорией.
func ValidEquipmentCategory(c EquipmentCategory) bool {
	switch c {
	case CategoryBall, CategoryNet, CategoryUniform, CategoryGear:
		return true
	}
	return false
}

// ValidEquipmentCondition проверяет, что строка является известным состоянием.
func ValidEquipmentCondition(c EquipmentCondition) bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor, ConditionUnusable:
		return true
	}
	return false
}

// MaintenanceInterval возвращает интервал обслуживания для категории.
func MaintenanceInterval(category EquipmentCategory) time.Duration {
	var days int
	switch category {
	case CategoryBall:
		days = 30
	case CategoryNet:
		days = 90
	case CategoryUniform:
		days = 180
	case CategoryGear:
		days = 60
	default:
		days = 90
	}
	return time.Duration(days) * 24 * time.Hour
}

// Equipment представляет позицию инвентаря клуба.
// Инвариант: 0 <= Available <= Quantity.
type Equipment struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Category        EquipmentCategory  `json:"category"`
	Quantity        int                `json:"quantity"`
	Available       int                `json:"available"`
	Condition       EquipmentCondition `json:"condition"`
	PurchaseDate    time.Time          `json:"purchase_date"`
	LastMaintenance time.Time          `json:"last_maintenance"`
	NextMaintenance time.Time          `json:"next_maintenance"`
	Notes           string             `json:"notes,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// CalculateNextMaintenance вычисляет дату следующего обслуживания
// от даты последнего по интервалу категории.
func (e *Equipment) CalculateNextMaintenance() time.Time {
	return e.LastMaintenance.Add(MaintenanceInterval(e.Category))
}

// NeedsMaintenance сообщает, наступил ли срок обслуживания.
func (e *Equipment) NeedsMaintenance(now time.Time) bool {
	return !now.Before(e.NextMaintenance)
}

// IsAvailable сообщает, есть ли свободные единицы для выдачи.
func (e *Equipment) IsAvailable() bool {
	return e.Available > 0
}
