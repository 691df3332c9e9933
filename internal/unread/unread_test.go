package unread

import (
	"fmt"
	"testing"
	"time"

	"github.com/mjholt/crewdeck/internal/channel"
	"github.com/mjholt/crewdeck/internal/model"
	"github.com/mjholt/crewdeck/internal/tag"
)

// fakeSource backs the calculator with in-memory data for all four source
// interfaces.
type fakeSource struct {
	msgs         []model.Message
	threadReads  map[string]time.Time
	channelReads map[string]time.Time
	projectIDs   []int64
	itemIDs      map[int64][]int64
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		threadReads:  make(map[string]time.Time),
		channelReads: make(map[string]time.Time),
		itemIDs:      make(map[int64][]int64),
	}
}

func (f *fakeSource) ListByThread(ref model.ThreadRef) ([]model.Message, error) {
	var out []model.Message
	for _, m := range f.msgs {
		if m.ProjectID != ref.ProjectID {
			continue
		}
		if ref.ItemID == nil && m.ScheduleItemID == nil {
			out = append(out, m)
		} else if ref.ItemID != nil && m.ScheduleItemID != nil && *m.ScheduleItemID == *ref.ItemID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeSource) ListByProject(projectID int64) ([]model.Message, error) {
	var out []model.Message
	for _, m := range f.msgs {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeSource) ThreadLastRead(userID int64, ref model.ThreadRef) (*time.Time, error) {
	key := refKey(userID, ref)
	if at, ok := f.threadReads[key]; ok {
		return &at, nil
	}
	return nil, nil
}

func (f *fakeSource) ChannelLastRead(userID, projectID int64, channelID string) (*time.Time, error) {
	key := chanKey(userID, projectID, channelID)
	if at, ok := f.channelReads[key]; ok {
		return &at, nil
	}
	return nil, nil
}

func (f *fakeSource) ListIDsForUser(userID int64) ([]int64, error) {
	return f.projectIDs, nil
}

func (f *fakeSource) ListIDsByProject(projectID int64) ([]int64, error) {
	return f.itemIDs[projectID], nil
}

func refKey(userID int64, ref model.ThreadRef) string {
	return fmt.Sprintf("%d|%s", userID, ref)
}

func chanKey(userID, projectID int64, channelID string) string {
	return fmt.Sprintf("%d|%d|%s", userID, projectID, channelID)
}

func newTestCalculator(f *fakeSource) *Calculator {
	return NewCalculator(f, f, f, f, channel.NewRegistry(), tag.NewDetector())
}

var base = time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

func msg(id, projectID int64, itemID *int64, authorID int64, content string, at time.Time) model.Message {
	return model.Message{
		ID:             id,
		ProjectID:      projectID,
		ScheduleItemID: itemID,
		AuthorID:       authorID,
		Content:        content,
		CreatedAt:      at,
	}
}

func itemRef(id int64) *int64 { return &id }

func TestThreadUnreadNeverViewed(t *testing.T) {
	f := newFakeSource()
	f.msgs = []model.Message{
		msg(1, 1, nil, 2, "morning all", base),
		msg(2, 1, nil, 3, "on my way", base.Add(time.Minute)),
	}
	calc := newTestCalculator(f)

	n, err := calc.ThreadUnread(1, model.GeneralThread(1))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 unread on never-viewed thread, got %d", n)
	}
}

func TestThreadUnreadExcludesOwnMessages(t *testing.T) {
	f := newFakeSource()
	f.msgs = []model.Message{
		msg(1, 1, nil, 1, "my own note", base),
		msg(2, 1, nil, 2, "a reply", base.Add(time.Minute)),
	}
	calc := newTestCalculator(f)

	n, err := calc.ThreadUnread(1, model.GeneralThread(1))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected own messages excluded, got %d", n)
	}
}

func TestThreadUnreadStrictlyAfterLastRead(t *testing.T) {
	f := newFakeSource()
	f.msgs = []model.Message{
		msg(1, 1, nil, 2, "before", base.Add(-time.Minute)),
		msg(2, 1, nil, 2, "at the boundary", base),
		msg(3, 1, nil, 2, "after", base.Add(time.Minute)),
	}
	f.threadReads[refKey(1, model.GeneralThread(1))] = base
	calc := newTestCalculator(f)

	n, err := calc.ThreadUnread(1, model.GeneralThread(1))
	if err != nil {
		t.Fatal(err)
	}
	// The boundary message is created at exactly last-read and counts as seen.
	if n != 1 {
		t.Fatalf("expected 1 unread strictly after last read, got %d", n)
	}
}

func TestThreadUnreadPerThreadLedger(t *testing.T) {
	f := newFakeSource()
	f.msgs = []model.Message{
		msg(1, 1, nil, 2, "general chatter", base),
		msg(2, 1, itemRef(10), 2, "item question", base),
	}
	f.threadReads[refKey(1, model.GeneralThread(1))] = base.Add(time.Minute)
	calc := newTestCalculator(f)

	n, err := calc.ThreadUnread(1, model.GeneralThread(1))
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("expected general thread read, got %d", n)
	}

	n, err = calc.ThreadUnread(1, model.ItemThread(1, 10))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected item thread still unread, got %d", n)
	}
}

func TestChannelUnreadsTagFilterSpansThreads(t *testing.T) {
	f := newFakeSource()
	f.msgs = []model.Message{
		msg(1, 1, nil, 2, "concrete pour moved to friday", base),
		msg(2, 1, itemRef(10), 2, "rebar delivery confirmed", base.Add(time.Minute)),
		msg(3, 1, itemRef(11), 2, "panel install done", base.Add(2*time.Minute)),
	}
	calc := newTestCalculator(f)

	counts, err := calc.ChannelUnreads(1, 1)
	if err != nil {
		t.Fatal(err)
	}

	if counts["concrete"] != 2 {
		t.Fatalf("expected concrete channel to span general and item threads, got %d", counts["concrete"])
	}
	if counts["electrical"] != 1 {
		t.Fatalf("expected 1 electrical unread, got %d", counts["electrical"])
	}
	if counts["general"] != 1 {
		t.Fatalf("expected general channel to count only the general thread, got %d", counts["general"])
	}
	if counts["framing"] != 0 {
		t.Fatalf("expected 0 framing unread, got %d", counts["framing"])
	}
}

func TestChannelUnreadsNavigationAlwaysZero(t *testing.T) {
	f := newFakeSource()
	f.msgs = []model.Message{
		msg(1, 1, nil, 2, "daily log reminder", base),
	}
	calc := newTestCalculator(f)

	counts, err := calc.ChannelUnreads(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if counts["daily-log"] != 0 {
		t.Fatalf("expected navigation channel to report 0, got %d", counts["daily-log"])
	}
}

func TestChannelUnreadsIndependentOfThreadReads(t *testing.T) {
	f := newFakeSource()
	f.msgs = []model.Message{
		msg(1, 1, nil, 2, "safety harness check at 8", base),
	}
	// Reading the thread does not touch the channel ledger.
	f.threadReads[refKey(1, model.GeneralThread(1))] = base.Add(time.Minute)
	calc := newTestCalculator(f)

	counts, err := calc.ChannelUnreads(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if counts["safety"] != 1 {
		t.Fatalf("expected safety channel unaffected by thread read, got %d", counts["safety"])
	}

	// Marking the channel read zeroes it without touching other channels.
	f.channelReads[chanKey(1, 1, "safety")] = base.Add(time.Minute)
	counts, err = calc.ChannelUnreads(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if counts["safety"] != 0 {
		t.Fatalf("expected safety channel read, got %d", counts["safety"])
	}
	if counts["general"] != 1 {
		t.Fatalf("expected general channel still unread, got %d", counts["general"])
	}
}

func TestTotalUnreadSumsThreadsAcrossProjects(t *testing.T) {
	f := newFakeSource()
	f.projectIDs = []int64{1, 2}
	f.itemIDs[1] = []int64{10}
	f.msgs = []model.Message{
		msg(1, 1, nil, 2, "general one", base),
		msg(2, 1, itemRef(10), 2, "item one", base),
		msg(3, 2, nil, 2, "other project", base),
		msg(4, 2, nil, 1, "my own", base),
	}
	calc := newTestCalculator(f)

	total, err := calc.TotalUnread(1)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Fatalf("expected total of 3 across projects and threads, got %d", total)
	}
}

func TestTotalUnreadNeverDoubleCountsChannels(t *testing.T) {
	f := newFakeSource()
	f.projectIDs = []int64{1}
	// A message that matches two tag channels still counts once: totals sum
	// threads, never channels.
	f.msgs = []model.Message{
		msg(1, 1, nil, 2, "concrete pour needs the electrical panel moved", base),
	}
	calc := newTestCalculator(f)

	total, err := calc.TotalUnread(1)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Fatalf("expected 1, got %d", total)
	}
}

func TestFilterByChannel(t *testing.T) {
	f := newFakeSource()
	msgs := []model.Message{
		msg(1, 1, nil, 2, "general chatter", base),
		msg(2, 1, nil, 2, "roof membrane arrived", base),
		msg(3, 1, itemRef(10), 2, "flashing detail question", base),
	}
	calc := newTestCalculator(f)
	registry := channel.NewRegistry()

	general, _ := registry.ByID("general")
	got := calc.FilterByChannel(general, msgs)
	if len(got) != 2 {
		t.Fatalf("expected 2 general-thread messages, got %d", len(got))
	}

	roofing, _ := registry.ByID("roofing")
	got = calc.FilterByChannel(roofing, msgs)
	if len(got) != 2 {
		t.Fatalf("expected roofing view to span threads, got %d", len(got))
	}
	if got[0].ID != 2 || got[1].ID != 3 {
		t.Fatalf("unexpected roofing view: %v", got)
	}

	nav, _ := registry.ByID("daily-log")
	if got := calc.FilterByChannel(nav, msgs); got != nil {
		t.Fatalf("expected navigation channel to have no message view, got %v", got)
	}
}
