package models

import "time"

// GoalStatus represents the lifecycle state of a savings goal
type GoalStatus string

const (
	GoalStatusInProgress GoalStatus = "In Progress"
	GoalStatusCompleted  GoalStatus = "Completed"
	GoalStatusFailed     GoalStatus = "Failed"
)

// SavingsGoal represents a savings target with a deadline
type SavingsGoal struct {
	Base
	UserID        uint       `gorm:"not null;index" json:"user_id"`
	Title         string     `gorm:"not null" json:"title"`
	TargetAmount  float64    `gorm:"not null" json:"target_amount"`
	CurrentAmount float64    `gorm:"default:0" json:"current_amount"`
	Deadline      time.Time  `gorm:"not null" json:"deadline"`
	Category      string     `json:"category"`
	Status        GoalStatus `gorm:"default:'In Progress'" json:"status"`
	Notes         string     `json:"notes"`
}

// DeriveStatus returns the status implied by the current and target amounts,
// preserving a Failed state once set.
func (g *SavingsGoal) DeriveStatus() GoalStatus {
	if g.Status == GoalStatusFailed {
		return GoalStatusFailed
	}
	if g.CurrentAmount >= g.TargetAmount {
		return GoalStatusCompleted
	}
	return GoalStatusInProgress
}
