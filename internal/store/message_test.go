package store

import (
	"testing"

	"github.com/mjholt/crewdeck/internal/database"
	"github.com/mjholt/crewdeck/internal/model"
)

func setupMessageTestDB(t *testing.T) (*MessageStore, *ProjectStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewMessageStore(db), NewProjectStore(db)
}

func TestMessageCreateAndGet(t *testing.T) {
	ms, ps := setupMessageTestDB(t)

	p, err := ps.Create("Main St Office", "100 Main St", "C-100", model.ProjectActive, nil, nil, nil)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	msg, err := ms.Create(model.GeneralThread(p.ID), 1, "Dana", "manager", "concrete pour at 7am")
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	if msg.ID == 0 {
		t.Error("expected assigned id")
	}
	if msg.ScheduleItemID != nil {
		t.Error("expected general-thread message to have nil schedule item")
	}
	if msg.AuthorName != "Dana" || msg.AuthorRole != "manager" {
		t.Errorf("author = %q/%q", msg.AuthorName, msg.AuthorRole)
	}
	if msg.CreatedAt.IsZero() {
		t.Error("expected server-assigned timestamp")
	}

	got, err := ms.GetByID(msg.ID)
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if got == nil || got.Content != "concrete pour at 7am" {
		t.Fatalf("got %+v", got)
	}
}

func TestMessageGetMissing(t *testing.T) {
	ms, _ := setupMessageTestDB(t)

	got, err := ms.GetByID(999)
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for missing message")
	}
}

func TestMessageThreadsAreSeparate(t *testing.T) {
	ms, ps := setupMessageTestDB(t)

	p, err := ps.Create("Main St Office", "", "", model.ProjectActive, nil, nil, nil)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	if _, err := ms.Create(model.GeneralThread(p.ID), 1, "Dana", "manager", "general one"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := ms.Create(model.ItemThread(p.ID, 10), 1, "Dana", "manager", "item one"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := ms.Create(model.ItemThread(p.ID, 11), 1, "Dana", "manager", "item two"); err != nil {
		t.Fatalf("create: %v", err)
	}

	general, err := ms.ListByThread(model.GeneralThread(p.ID))
	if err != nil {
		t.Fatalf("list general: %v", err)
	}
	if len(general) != 1 || general[0].Content != "general one" {
		t.Fatalf("general thread: %+v", general)
	}

	item, err := ms.ListByThread(model.ItemThread(p.ID, 10))
	if err != nil {
		t.Fatalf("list item thread: %v", err)
	}
	if len(item) != 1 || item[0].Content != "item one" {
		t.Fatalf("item thread: %+v", item)
	}

	all, err := ms.ListByProject(p.ID)
	if err != nil {
		t.Fatalf("list project: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 project messages, got %d", len(all))
	}
}

func TestMessageListOrder(t *testing.T) {
	ms, ps := setupMessageTestDB(t)

	p, err := ps.Create("Main St Office", "", "", model.ProjectActive, nil, nil, nil)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	for _, content := range []string{"first", "second", "third"} {
		if _, err := ms.Create(model.GeneralThread(p.ID), 1, "Dana", "manager", content); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	msgs, err := ms.ListByThread(model.GeneralThread(p.ID))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, want := range []string{"first", "second", "third"} {
		if msgs[i].Content != want {
			t.Errorf("msgs[%d] = %q, want %q", i, msgs[i].Content, want)
		}
	}
}
