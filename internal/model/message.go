package model

import "time"

// Message is a chat message in a project thread. Messages are immutable once
// created; there is no edit or delete.
type Message struct {
	ID             int64     `json:"id"`
	ProjectID      int64     `json:"project_id"`
	ScheduleItemID *int64    `json:"schedule_item_id"`
	AuthorID       int64     `json:"author_id"`
	AuthorName     string    `json:"author_name"`
	AuthorRole     string    `json:"author_role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
