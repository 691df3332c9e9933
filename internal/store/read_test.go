package store

import (
	"testing"
	"time"

	"github.com/mjholt/crewdeck/internal/database"
	"github.com/mjholt/crewdeck/internal/model"
)

func setupReadTestDB(t *testing.T) *ReadStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewReadStore(db)
}

func TestThreadReadNeverViewed(t *testing.T) {
	rs := setupReadTestDB(t)

	got, err := rs.ThreadLastRead(1, model.GeneralThread(1))
	if err != nil {
		t.Fatalf("thread last read: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for never-viewed thread, got %v", got)
	}
}

func TestThreadReadOverwrite(t *testing.T) {
	rs := setupReadTestDB(t)
	ref := model.ItemThread(1, 10)

	first := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	if err := rs.MarkThreadRead(1, ref, first); err != nil {
		t.Fatalf("mark thread read: %v", err)
	}
	if err := rs.MarkThreadRead(1, ref, second); err != nil {
		t.Fatalf("mark thread read again: %v", err)
	}

	got, err := rs.ThreadLastRead(1, ref)
	if err != nil {
		t.Fatalf("thread last read: %v", err)
	}
	if got == nil || !got.Equal(second) {
		t.Fatalf("expected %v, got %v", second, got)
	}
}

func TestThreadReadKeysAreIndependent(t *testing.T) {
	rs := setupReadTestDB(t)
	at := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

	if err := rs.MarkThreadRead(1, model.GeneralThread(1), at); err != nil {
		t.Fatalf("mark: %v", err)
	}

	// Same project, different thread.
	if got, _ := rs.ThreadLastRead(1, model.ItemThread(1, 10)); got != nil {
		t.Fatal("expected item thread untouched")
	}
	// Same thread, different user.
	if got, _ := rs.ThreadLastRead(2, model.GeneralThread(1)); got != nil {
		t.Fatal("expected other user untouched")
	}
	// Same user, different project.
	if got, _ := rs.ThreadLastRead(1, model.GeneralThread(2)); got != nil {
		t.Fatal("expected other project untouched")
	}

	got, err := rs.ThreadLastRead(1, model.GeneralThread(1))
	if err != nil {
		t.Fatalf("thread last read: %v", err)
	}
	if got == nil || !got.Equal(at) {
		t.Fatalf("expected %v, got %v", at, got)
	}
}

func TestChannelReadLedgerSeparateFromThreads(t *testing.T) {
	rs := setupReadTestDB(t)
	at := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

	if err := rs.MarkChannelRead(1, 1, "concrete", at); err != nil {
		t.Fatalf("mark channel read: %v", err)
	}

	got, err := rs.ChannelLastRead(1, 1, "concrete")
	if err != nil {
		t.Fatalf("channel last read: %v", err)
	}
	if got == nil || !got.Equal(at) {
		t.Fatalf("expected %v, got %v", at, got)
	}

	// The thread ledger never moves when a channel is marked.
	if got, _ := rs.ThreadLastRead(1, model.GeneralThread(1)); got != nil {
		t.Fatal("expected thread ledger untouched by channel read")
	}
	if got, _ := rs.ChannelLastRead(1, 1, "electrical"); got != nil {
		t.Fatal("expected other channel untouched")
	}
}

func TestChannelReadOverwrite(t *testing.T) {
	rs := setupReadTestDB(t)

	first := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	second := first.Add(2 * time.Hour)

	if err := rs.MarkChannelRead(1, 1, "safety", first); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := rs.MarkChannelRead(1, 1, "safety", second); err != nil {
		t.Fatalf("mark again: %v", err)
	}

	got, err := rs.ChannelLastRead(1, 1, "safety")
	if err != nil {
		t.Fatalf("channel last read: %v", err)
	}
	if got == nil || !got.Equal(second) {
		t.Fatalf("expected %v, got %v", second, got)
	}
}
