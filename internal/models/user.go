package models

import "time"

// Preferences holds per-user display and notification settings.
// Stored as flat columns with a prefix rather than a JSON blob so they
// can be queried (e.g. to find users who opted out of budget alerts).
type Preferences struct {
	Theme              string `gorm:"default:light" json:"theme"`
	Currency           string `gorm:"default:USD" json:"currency"`
	NotifyEmail        bool   `gorm:"default:true" json:"email_notifications"`
	NotifyPush         bool   `gorm:"default:false" json:"push_notifications"`
	NotifyBudgetAlerts bool   `gorm:"default:false" json:"budget_alerts"`
}

// User represents the user model in the database
type User struct {
	Base
	Name               string      `gorm:"not null" json:"name"`
	Email              string      `gorm:"uniqueIndex;not null" json:"email"`
	Password           string      `gorm:"not null" json:"-"`
	Phone              string      `json:"phone"`
	Salary             float64     `gorm:"default:0" json:"salary"`
	IsVerified         bool        `gorm:"default:false" json:"is_verified"`
	ProfilePicture     string      `json:"profile_picture"`
	VerificationToken  string      `gorm:"size:64" json:"-"`
	VerificationExpiry *time.Time  `json:"-"`
	Preferences        Preferences `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`

	Expenses []Expense     `gorm:"foreignKey:UserID" json:"expenses,omitempty"`
	Budgets  []Budget      `gorm:"foreignKey:UserID" json:"budgets,omitempty"`
	Goals    []SavingsGoal `gorm:"foreignKey:UserID" json:"goals,omitempty"`
}
