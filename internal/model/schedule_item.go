package model

import "time"

type ItemStatus string

const (
	ItemNotStarted ItemStatus = "not_started"
	ItemInProgress ItemStatus = "in_progress"
	ItemCompleted  ItemStatus = "completed"
	ItemAtRisk     ItemStatus = "at_risk"
	ItemBlocked    ItemStatus = "blocked"
)

// ValidItemStatus reports whether s is one of the recognized schedule item statuses.
func ValidItemStatus(s ItemStatus) bool {
	switch s {
	case ItemNotStarted, ItemInProgress, ItemCompleted, ItemAtRisk, ItemBlocked:
		return true
	}
	return false
}

// ScheduleItem is a tracked task within a project. SortOrder defines display
// sequence only; deleting an item leaves a gap rather than renumbering.
type ScheduleItem struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *string    `json:"due_date"`
	Status      ItemStatus `json:"status"`
	AssignedTo  []int64    `json:"assigned_to"`
	SortOrder   int        `json:"sort_order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
