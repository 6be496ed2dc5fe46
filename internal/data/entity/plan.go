package entity

type Plan struct {
	Base
	Name         string  `db:"name"`
	Description  *string `db:"description"`
	DurationDays int     `db:"duration_days"`
	Price        float64 `db:"price"`
	IsActive     bool    `db:"is_active"`
}
