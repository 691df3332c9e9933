package channel

import "github.com/mjholt/crewdeck/internal/tag"

// Type discriminates how a channel sources its content.
type Type string

const (
	// TypeGeneral is an identity passthrough of the project's general thread.
	TypeGeneral Type = "general"
	// TypeTagFilter aggregates messages from every thread whose detected
	// tags intersect the channel's tag set.
	TypeTagFilter Type = "tag-filter"
	// TypeScheduleView renders the schedule item list rather than a thread.
	TypeScheduleView Type = "schedule-view"
	// TypeNavigation routes to another page and carries no messages.
	TypeNavigation Type = "navigation"
)

// Channel is a fixed, configured view over project activity. Channels are not
// user-editable at runtime.
type Channel struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TagIDs      []string `json:"tag_ids,omitempty"`
	Type        Type     `json:"type"`
}

var channels = []Channel{
	{ID: "general", Name: "General", Description: "Project-wide discussion", Type: TypeGeneral},
	{ID: "concrete", Name: "Concrete", Description: "Pours, slabs, and foundations", TagIDs: []string{"concrete"}, Type: TypeTagFilter},
	{ID: "electrical", Name: "Electrical", Description: "Wiring, panels, and rough-in", TagIDs: []string{"electrical"}, Type: TypeTagFilter},
	{ID: "framing", Name: "Framing", Description: "Studs, joists, and structure", TagIDs: []string{"framing"}, Type: TypeTagFilter},
	{ID: "plumbing", Name: "Plumbing", Description: "Pipes, drains, and fixtures", TagIDs: []string{"plumbing"}, Type: TypeTagFilter},
	{ID: "hvac", Name: "HVAC", Description: "Ductwork and mechanical", TagIDs: []string{"hvac"}, Type: TypeTagFilter},
	{ID: "roofing", Name: "Roofing", Description: "Roof and weatherproofing", TagIDs: []string{"roofing"}, Type: TypeTagFilter},
	{ID: "safety", Name: "Safety", Description: "Incidents, hazards, and compliance", TagIDs: []string{"safety"}, Type: TypeTagFilter},
	{ID: "rfis-submittals", Name: "RFIs & Submittals", Description: "Requests for information and submittals", TagIDs: []string{"rfi", "submittal"}, Type: TypeTagFilter},
	{ID: "schedule", Name: "Schedule", Description: "Task list and milestones", Type: TypeScheduleView},
	{ID: "daily-log", Name: "Daily Log", Description: "Field reports", Type: TypeNavigation},
}

// Registry provides lookup over the fixed channel table.
type Registry struct {
	byID map[string]Channel
}

func NewRegistry() *Registry {
	r := &Registry{byID: make(map[string]Channel, len(channels))}
	for _, c := range channels {
		r.byID[c.ID] = c
	}
	return r
}

// ByID returns the channel with the given id, or false when no such channel
// is configured. Callers render a not-found state rather than failing.
func (r *Registry) ByID(id string) (Channel, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// All returns every configured channel in display order.
func (r *Registry) All() []Channel {
	return channels
}

// Matches reports whether a message with the given detected tags belongs to
// this channel's filtered view: a non-empty intersection between the detected
// tag ids and the channel's tag set.
func (c Channel) Matches(detected []tag.Tag) bool {
	for _, d := range detected {
		for _, id := range c.TagIDs {
			if d.ID == id {
				return true
			}
		}
	}
	return false
}

// HasUnread reports whether the channel carries an unread count. Navigation
// channels have no message content of their own and always report 0.
func (c Channel) HasUnread() bool {
	return c.Type != TypeNavigation
}
