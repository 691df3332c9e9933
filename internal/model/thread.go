package model

import "fmt"

// ThreadRef identifies a message thread: a project plus an optional schedule
// item. A nil ItemID denotes the project's general thread.
type ThreadRef struct {
	ProjectID int64
	ItemID    *int64
}

// GeneralThread returns a reference to the project's general thread.
func GeneralThread(projectID int64) ThreadRef {
	return ThreadRef{ProjectID: projectID}
}

// ItemThread returns a reference to a schedule item's thread.
func ItemThread(projectID, itemID int64) ThreadRef {
	return ThreadRef{ProjectID: projectID, ItemID: &itemID}
}

func (r ThreadRef) IsGeneral() bool {
	return r.ItemID == nil
}

func (r ThreadRef) String() string {
	if r.ItemID == nil {
		return fmt.Sprintf("%d:general", r.ProjectID)
	}
	return fmt.Sprintf("%d:%d", r.ProjectID, *r.ItemID)
}
