package models

import "time"

// Expense represents a single spending record
type Expense struct {
	Base
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Category    string    `gorm:"not null;index" json:"category"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Date        time.Time `gorm:"not null;index" json:"date"`
	Description string    `json:"description"`
}
