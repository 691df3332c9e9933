package model

import "time"

// DailyLog is the free-text field report for a project, one per calendar date.
// Parsed is a best-effort annotation produced by the classification service
// after the raw entry is saved; a nil Parsed is valid.
type DailyLog struct {
	ID        int64          `json:"id"`
	ProjectID int64          `json:"project_id"`
	Date      string         `json:"date"` // YYYY-MM-DD
	RawEntry  string         `json:"raw_entry"`
	Weather   string         `json:"weather"`
	CrewCount *int           `json:"crew_count"`
	Visitors  string         `json:"visitors"`
	Parsed    *ParsedLogData `json:"parsed_data"`
	// ParsedEntry is the raw text that produced Parsed, used to skip
	// re-parsing an unchanged entry.
	ParsedEntry string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ParsedLogData is the structured annotation extracted from a daily log entry
// by the text-classification service. All fields are optional.
type ParsedLogData struct {
	Weather       string      `json:"weather,omitempty"`
	Crew          []CrewEntry `json:"crew,omitempty"`
	Deliveries    []string    `json:"deliveries,omitempty"`
	Inspections   []string    `json:"inspections,omitempty"`
	Delays        []string    `json:"delays,omitempty"`
	WorkCompleted []WorkItem  `json:"workCompleted,omitempty"`
}

type CrewEntry struct {
	Trade string `json:"trade"`
	Count int    `json:"count"`
}

// WorkItem describes completed work, optionally cross-referenced to a schedule
// item the classifier matched it against.
type WorkItem struct {
	ScheduleItemID *int64 `json:"scheduleItemId,omitempty"`
	Title          string `json:"title,omitempty"`
	Description    string `json:"description"`
}
