package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mjholt/crewdeck/internal/model"
)

type ScheduleItemStore struct {
	db *sql.DB
}

func NewScheduleItemStore(db *sql.DB) *ScheduleItemStore {
	return &ScheduleItemStore{db: db}
}

const scheduleItemCols = `id, project_id, title, description, due_date, status, sort_order, created_at, updated_at`

func scanScheduleItem(scanner interface{ Scan(...any) error }) (*model.ScheduleItem, error) {
	var item model.ScheduleItem
	var dueDate sql.NullString

	err := scanner.Scan(
		&item.ID, &item.ProjectID, &item.Title, &item.Description,
		&dueDate, &item.Status, &item.SortOrder, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		item.DueDate = &dueDate.String
	}
	return &item, nil
}

// Create inserts a schedule item at the end of the project's display order.
// sort_order is max(existing)+1; deletions leave gaps.
func (s *ScheduleItemStore) Create(projectID int64, title, description string, dueDate *string, status model.ItemStatus, assignedTo []int64) (*model.ScheduleItem, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var maxOrder int
	err = tx.QueryRow(`SELECT COALESCE(MAX(sort_order), 0) FROM schedule_items WHERE project_id = ?`, projectID).Scan(&maxOrder)
	if err != nil {
		return nil, fmt.Errorf("query max sort_order: %w", err)
	}

	result, err := tx.Exec(
		`INSERT INTO schedule_items (project_id, title, description, due_date, status, sort_order) VALUES (?, ?, ?, ?, ?, ?)`,
		projectID, title, description, nullString(dueDate), status, maxOrder+1,
	)
	if err != nil {
		return nil, fmt.Errorf("insert schedule item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for _, uid := range assignedTo {
		if _, err := tx.Exec(`INSERT INTO schedule_item_assignees (schedule_item_id, user_id) VALUES (?, ?)`, id, uid); err != nil {
			return nil, fmt.Errorf("insert assignee: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func (s *ScheduleItemStore) GetByID(id int64) (*model.ScheduleItem, error) {
	row := s.db.QueryRow(`SELECT `+scheduleItemCols+` FROM schedule_items WHERE id = ?`, id)
	item, err := scanScheduleItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule item: %w", err)
	}

	item.AssignedTo, err = s.assigneeIDs(id)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ScheduleItemStore) ListByProject(projectID int64) ([]model.ScheduleItem, error) {
	rows, err := s.db.Query(
		`SELECT `+scheduleItemCols+` FROM schedule_items WHERE project_id = ? ORDER BY sort_order`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list schedule items: %w", err)
	}
	defer rows.Close()

	var items []model.ScheduleItem
	for rows.Next() {
		item, err := scanScheduleItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		ids, err := s.assigneeIDs(items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].AssignedTo = ids
	}
	return items, nil
}

// ListIDsByProject returns the project's schedule item ids in display order,
// for unread aggregation across item threads.
func (s *ScheduleItemStore) ListIDsByProject(projectID int64) ([]int64, error) {
	rows, err := s.db.Query(`SELECT id FROM schedule_items WHERE project_id = ? ORDER BY sort_order`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list schedule item ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan schedule item id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *ScheduleItemStore) Update(id int64, title, description string, dueDate *string, status model.ItemStatus, assignedTo []int64) (*model.ScheduleItem, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`UPDATE schedule_items SET title = ?, description = ?, due_date = ?, status = ?, updated_at = ? WHERE id = ?`,
		title, description, nullString(dueDate), status, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update schedule item: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM schedule_item_assignees WHERE schedule_item_id = ?`, id); err != nil {
		return nil, fmt.Errorf("clear assignees: %w", err)
	}
	for _, uid := range assignedTo {
		if _, err := tx.Exec(`INSERT INTO schedule_item_assignees (schedule_item_id, user_id) VALUES (?, ?)`, id, uid); err != nil {
			return nil, fmt.Errorf("insert assignee: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes the item by id and reports whether a row existed. Thread
// messages are deliberately not cascaded: the orphaned thread stays
// retrievable.
func (s *ScheduleItemStore) Delete(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM schedule_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete schedule item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *ScheduleItemStore) assigneeIDs(itemID int64) ([]int64, error) {
	rows, err := s.db.Query(`SELECT user_id FROM schedule_item_assignees WHERE schedule_item_id = ? ORDER BY user_id`, itemID)
	if err != nil {
		return nil, fmt.Errorf("list assignees: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan assignee: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
