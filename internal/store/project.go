package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mjholt/crewdeck/internal/model"
)

type ProjectStore struct {
	db *sql.DB
}

func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

const projectCols = `id, name, address, contract_number, status, start_date, end_date, created_at, updated_at`

func scanProject(scanner interface{ Scan(...any) error }) (*model.Project, error) {
	var p model.Project
	var startDate, endDate sql.NullString

	err := scanner.Scan(
		&p.ID, &p.Name, &p.Address, &p.ContractNumber, &p.Status,
		&startDate, &endDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if startDate.Valid {
		p.StartDate = &startDate.String
	}
	if endDate.Valid {
		p.EndDate = &endDate.String
	}
	return &p, nil
}

func (s *ProjectStore) Create(name, address, contractNumber string, status model.ProjectStatus, startDate, endDate *string, memberIDs []int64) (*model.Project, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO projects (name, address, contract_number, status, start_date, end_date) VALUES (?, ?, ?, ?, ?, ?)`,
		name, address, contractNumber, status, nullString(startDate), nullString(endDate),
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for _, uid := range memberIDs {
		if _, err := tx.Exec(`INSERT INTO project_members (project_id, user_id) VALUES (?, ?)`, id, uid); err != nil {
			return nil, fmt.Errorf("insert project member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func (s *ProjectStore) GetByID(id int64) (*model.Project, error) {
	row := s.db.QueryRow(`SELECT `+projectCols+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	p.MemberIDs, err = s.memberIDs(id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProjectStore) List() ([]model.Project, error) {
	rows, err := s.db.Query(`SELECT ` + projectCols + ` FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()
	return s.collect(rows)
}

// ListForUser returns the projects the user is a member of.
func (s *ProjectStore) ListForUser(userID int64) ([]model.Project, error) {
	rows, err := s.db.Query(
		`SELECT `+projectCols+` FROM projects
		 WHERE id IN (SELECT project_id FROM project_members WHERE user_id = ?)
		 ORDER BY name`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects for user: %w", err)
	}
	defer rows.Close()
	return s.collect(rows)
}

// ListIDsForUser returns the ids of the user's projects, for unread
// aggregation.
func (s *ProjectStore) ListIDsForUser(userID int64) ([]int64, error) {
	rows, err := s.db.Query(`SELECT project_id FROM project_members WHERE user_id = ? ORDER BY project_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list project ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan project id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *ProjectStore) Update(id int64, name, address, contractNumber string, status model.ProjectStatus, startDate, endDate *string) (*model.Project, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	_, err = s.db.Exec(
		`UPDATE projects SET name = ?, address = ?, contract_number = ?, status = ?, start_date = ?, end_date = ?, updated_at = ? WHERE id = ?`,
		name, address, contractNumber, status, nullString(startDate), nullString(endDate), time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return s.GetByID(id)
}

// SetMembers replaces the project's member list.
func (s *ProjectStore) SetMembers(projectID int64, memberIDs []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM project_members WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("clear project members: %w", err)
	}
	for _, uid := range memberIDs {
		if _, err := tx.Exec(`INSERT INTO project_members (project_id, user_id) VALUES (?, ?)`, projectID, uid); err != nil {
			return fmt.Errorf("insert project member: %w", err)
		}
	}
	return tx.Commit()
}

func (s *ProjectStore) collect(rows *sql.Rows) ([]model.Project, error) {
	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range projects {
		ids, err := s.memberIDs(projects[i].ID)
		if err != nil {
			return nil, err
		}
		projects[i].MemberIDs = ids
	}
	return projects, nil
}

func (s *ProjectStore) memberIDs(projectID int64) ([]int64, error) {
	rows, err := s.db.Query(`SELECT user_id FROM project_members WHERE project_id = ? ORDER BY user_id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list member ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
