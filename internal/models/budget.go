package models

import "time"

// DefaultAlertThreshold is the percentage of a budget at which an email
// alert fires when the budget has no explicit threshold configured.
const DefaultAlertThreshold = 80

// Budget represents a per-category monthly spending ceiling.
//
// One budget exists per (user, category); setting a budget for an existing
// category updates it in place. AlertLastSent is the cooldown marker for
// email alerts: it is only ever advanced through a conditional update so
// that concurrent evaluations cannot fire twice within 24 hours.
//
// AlertsEnabled must not carry a GORM column default: GORM omits a false
// value from the INSERT and the default would re-enable alerts the user
// opted out of. The service layer supplies the value on every create.
type Budget struct {
	Base
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	Category       string     `gorm:"not null" json:"category"`
	Amount         float64    `gorm:"not null" json:"amount"`
	AlertsEnabled  bool       `gorm:"not null" json:"alerts_enabled"`
	AlertThreshold float64    `gorm:"default:80" json:"alert_threshold"`
	AlertLastSent  *time.Time `json:"alert_last_sent,omitempty"`
}
