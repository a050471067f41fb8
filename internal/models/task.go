package models

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// DateLayout is the wire format for due dates.
const DateLayout = "2006-01-02"

type Task struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	Description string    `json:"description"`
	Priority    string    `json:"priority" gorm:"not null;default:'medium'"`
	Status      string    `json:"status" gorm:"not null;default:'todo'"`
	DueDate     time.Time `json:"due_date" gorm:"type:date;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func IsValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

func IsValidStatus(s string) bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}
