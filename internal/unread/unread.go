package unread

import (
	"fmt"
	"time"

	"github.com/mjholt/crewdeck/internal/channel"
	"github.com/mjholt/crewdeck/internal/model"
	"github.com/mjholt/crewdeck/internal/tag"
)

// MessageSource supplies messages for counting.
type MessageSource interface {
	ListByThread(ref model.ThreadRef) ([]model.Message, error)
	ListByProject(projectID int64) ([]model.Message, error)
}

// ReadSource supplies last-viewed timestamps. Thread reads and channel reads
// are separate ledgers: a message can appear in its own thread and in several
// tag channels, and viewing one surface must not mark the others read.
type ReadSource interface {
	ThreadLastRead(userID int64, ref model.ThreadRef) (*time.Time, error)
	ChannelLastRead(userID, projectID int64, channelID string) (*time.Time, error)
}

// ProjectSource lists the projects a user belongs to.
type ProjectSource interface {
	ListIDsForUser(userID int64) ([]int64, error)
}

// ItemSource lists a project's schedule item ids.
type ItemSource interface {
	ListIDsByProject(projectID int64) ([]int64, error)
}

// Calculator computes per-thread and per-channel unread counts from the
// message stream and the read ledgers. All composition is static: the tag
// detector and channel registry are supplied at construction.
type Calculator struct {
	messages MessageSource
	reads    ReadSource
	projects ProjectSource
	items    ItemSource
	registry *channel.Registry
	detector *tag.Detector
}

func NewCalculator(messages MessageSource, reads ReadSource, projects ProjectSource, items ItemSource, registry *channel.Registry, detector *tag.Detector) *Calculator {
	return &Calculator{
		messages: messages,
		reads:    reads,
		projects: projects,
		items:    items,
		registry: registry,
		detector: detector,
	}
}

// count applies the single unread rule: a message is unread when it was not
// authored by the user and was created strictly after lastRead. A nil
// lastRead means the surface was never viewed, so every non-self message
// counts. A message created at exactly lastRead is already seen.
func count(msgs []model.Message, userID int64, lastRead *time.Time) int {
	n := 0
	for _, m := range msgs {
		if m.AuthorID == userID {
			continue
		}
		if lastRead != nil && !m.CreatedAt.After(*lastRead) {
			continue
		}
		n++
	}
	return n
}

// ThreadUnread returns the number of unread messages in a single thread for
// the given user.
func (c *Calculator) ThreadUnread(userID int64, ref model.ThreadRef) (int, error) {
	lastRead, err := c.reads.ThreadLastRead(userID, ref)
	if err != nil {
		return 0, fmt.Errorf("thread last read: %w", err)
	}
	msgs, err := c.messages.ListByThread(ref)
	if err != nil {
		return 0, fmt.Errorf("list thread messages: %w", err)
	}
	return count(msgs, userID, lastRead), nil
}

// ChannelUnreads returns unread counts for every configured channel in a
// project, keyed by channel id. Navigation channels always report 0.
func (c *Calculator) ChannelUnreads(userID, projectID int64) (map[string]int, error) {
	all, err := c.messages.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("list project messages: %w", err)
	}

	// Classify each message once; channels only intersect against the
	// detected tag sets.
	detected := make([][]tag.Tag, len(all))
	var general []model.Message
	for i, m := range all {
		detected[i] = c.detector.Detect(m.Content)
		if m.ScheduleItemID == nil {
			general = append(general, m)
		}
	}

	counts := make(map[string]int)
	for _, ch := range c.registry.All() {
		if !ch.HasUnread() {
			counts[ch.ID] = 0
			continue
		}

		lastRead, err := c.reads.ChannelLastRead(userID, projectID, ch.ID)
		if err != nil {
			return nil, fmt.Errorf("channel last read: %w", err)
		}

		var candidates []model.Message
		if ch.Type == channel.TypeGeneral {
			candidates = general
		} else {
			// Tag-filter and schedule-view channels draw from every
			// thread in the project.
			for i, m := range all {
				if ch.Matches(detected[i]) {
					candidates = append(candidates, m)
				}
			}
		}
		counts[ch.ID] = count(candidates, userID, lastRead)
	}
	return counts, nil
}

// TotalUnread sums per-thread unread counts across every project the user
// belongs to: the general thread plus every schedule item thread. Channel
// counts are overlapping views and are never included, since summing them
// would double-count.
func (c *Calculator) TotalUnread(userID int64) (int, error) {
	projectIDs, err := c.projects.ListIDsForUser(userID)
	if err != nil {
		return 0, fmt.Errorf("list projects: %w", err)
	}

	total := 0
	for _, pid := range projectIDs {
		n, err := c.ThreadUnread(userID, model.GeneralThread(pid))
		if err != nil {
			return 0, err
		}
		total += n

		itemIDs, err := c.items.ListIDsByProject(pid)
		if err != nil {
			return 0, fmt.Errorf("list schedule items: %w", err)
		}
		for _, itemID := range itemIDs {
			n, err := c.ThreadUnread(userID, model.ItemThread(pid, itemID))
			if err != nil {
				return 0, err
			}
			total += n
		}
	}
	return total, nil
}

// FilterByChannel returns the messages belonging to a channel's view:
// general channels pass through null-thread messages, tag-filter and
// schedule-view channels select tag-matched messages from every thread, and
// navigation channels have no message view.
func (c *Calculator) FilterByChannel(ch channel.Channel, msgs []model.Message) []model.Message {
	switch ch.Type {
	case channel.TypeGeneral:
		var out []model.Message
		for _, m := range msgs {
			if m.ScheduleItemID == nil {
				out = append(out, m)
			}
		}
		return out
	case channel.TypeNavigation:
		return nil
	default:
		var out []model.Message
		for _, m := range msgs {
			if ch.Matches(c.detector.Detect(m.Content)) {
				out = append(out, m)
			}
		}
		return out
	}
}
