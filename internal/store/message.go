package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mjholt/crewdeck/internal/model"
)

type MessageStore struct {
	db *sql.DB
}

func NewMessageStore(db *sql.DB) *MessageStore {
	return &MessageStore{db: db}
}

const messageCols = `id, project_id, schedule_item_id, author_id, author_name, author_role, content, created_at`

func scanMessage(scanner interface{ Scan(...any) error }) (*model.Message, error) {
	var m model.Message
	var itemID sql.NullInt64

	err := scanner.Scan(
		&m.ID, &m.ProjectID, &itemID, &m.AuthorID,
		&m.AuthorName, &m.AuthorRole, &m.Content, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if itemID.Valid {
		m.ScheduleItemID = &itemID.Int64
	}
	return &m, nil
}

// Create appends a message to a thread with a server-observed timestamp.
// Messages are immutable: there is no update or delete.
func (s *MessageStore) Create(ref model.ThreadRef, authorID int64, authorName, authorRole, content string) (*model.Message, error) {
	var itemID sql.NullInt64
	if ref.ItemID != nil {
		itemID = sql.NullInt64{Int64: *ref.ItemID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO messages (project_id, schedule_item_id, author_id, author_name, author_role, content, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ref.ProjectID, itemID, authorID, authorName, authorRole, content, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *MessageStore) GetByID(id int64) (*model.Message, error) {
	row := s.db.QueryRow(`SELECT `+messageCols+` FROM messages WHERE id = ?`, id)
	m, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}

// ListByThread returns a thread's messages in creation order.
func (s *MessageStore) ListByThread(ref model.ThreadRef) ([]model.Message, error) {
	var rows *sql.Rows
	var err error
	if ref.ItemID == nil {
		rows, err = s.db.Query(
			`SELECT `+messageCols+` FROM messages WHERE project_id = ? AND schedule_item_id IS NULL ORDER BY created_at, id`,
			ref.ProjectID,
		)
	} else {
		rows, err = s.db.Query(
			`SELECT `+messageCols+` FROM messages WHERE project_id = ? AND schedule_item_id = ? ORDER BY created_at, id`,
			ref.ProjectID, *ref.ItemID,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list thread messages: %w", err)
	}
	defer rows.Close()
	return collectMessages(rows)
}

// ListByProject returns every message in the project across all threads, in
// creation order. Channel views filter this set by detected tags.
func (s *MessageStore) ListByProject(projectID int64) ([]model.Message, error) {
	rows, err := s.db.Query(
		`SELECT `+messageCols+` FROM messages WHERE project_id = ? ORDER BY created_at, id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list project messages: %w", err)
	}
	defer rows.Close()
	return collectMessages(rows)
}

func collectMessages(rows *sql.Rows) ([]model.Message, error) {
	var msgs []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}
