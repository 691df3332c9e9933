package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mjholt/crewdeck/internal/model"
)

// ReadStore maintains the per-user read ledgers. Thread reads and channel
// reads are separate tables: a message surfaces in its thread and in any
// matching tag channel, and each surface tracks its own last-viewed time.
// Writes are last-write-wins overwrites.
type ReadStore struct {
	db *sql.DB
}

func NewReadStore(db *sql.DB) *ReadStore {
	return &ReadStore{db: db}
}

// generalSentinel stands in for the general thread in the ledger key, since
// NULL columns cannot participate in a SQLite primary key upsert.
const generalSentinel = 0

func threadKey(ref model.ThreadRef) int64 {
	if ref.ItemID == nil {
		return generalSentinel
	}
	return *ref.ItemID
}

func (s *ReadStore) MarkThreadRead(userID int64, ref model.ThreadRef, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO thread_reads (user_id, project_id, schedule_item_id, last_read) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, project_id, schedule_item_id) DO UPDATE SET last_read = excluded.last_read`,
		userID, ref.ProjectID, threadKey(ref), at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("mark thread read: %w", err)
	}
	return nil
}

// ThreadLastRead returns the user's last-read time for a thread, or nil when
// the thread has never been viewed.
func (s *ReadStore) ThreadLastRead(userID int64, ref model.ThreadRef) (*time.Time, error) {
	var t time.Time
	err := s.db.QueryRow(
		`SELECT last_read FROM thread_reads WHERE user_id = ? AND project_id = ? AND schedule_item_id = ?`,
		userID, ref.ProjectID, threadKey(ref),
	).Scan(&t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("thread last read: %w", err)
	}
	return &t, nil
}

func (s *ReadStore) MarkChannelRead(userID, projectID int64, channelID string, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO channel_reads (user_id, project_id, channel_id, last_read) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, project_id, channel_id) DO UPDATE SET last_read = excluded.last_read`,
		userID, projectID, channelID, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("mark channel read: %w", err)
	}
	return nil
}

// ChannelLastRead returns the user's last-read time for a channel, or nil
// when the channel has never been viewed.
func (s *ReadStore) ChannelLastRead(userID, projectID int64, channelID string) (*time.Time, error) {
	var t time.Time
	err := s.db.QueryRow(
		`SELECT last_read FROM channel_reads WHERE user_id = ? AND project_id = ? AND channel_id = ?`,
		userID, projectID, channelID,
	).Scan(&t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("channel last read: %w", err)
	}
	return &t, nil
}
