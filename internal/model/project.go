package model

import "time"

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
)

// ValidProjectStatus reports whether s is one of the recognized project statuses.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectActive, ProjectOnHold, ProjectCompleted:
		return true
	}
	return false
}

type Project struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	Address        string        `json:"address"`
	ContractNumber string        `json:"contract_number"`
	Status         ProjectStatus `json:"status"`
	StartDate      *string       `json:"start_date"`
	EndDate        *string       `json:"end_date"`
	MemberIDs      []int64       `json:"member_ids"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
