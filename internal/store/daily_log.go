package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mjholt/crewdeck/internal/model"
)

type DailyLogStore struct {
	db *sql.DB
}

func NewDailyLogStore(db *sql.DB) *DailyLogStore {
	return &DailyLogStore{db: db}
}

const dailyLogCols = `id, project_id, log_date, raw_entry, weather, crew_count, visitors, parsed_data, parsed_entry, created_at, updated_at`

func scanDailyLog(scanner interface{ Scan(...any) error }) (*model.DailyLog, error) {
	var d model.DailyLog
	var crewCount sql.NullInt64
	var parsed sql.NullString

	err := scanner.Scan(
		&d.ID, &d.ProjectID, &d.Date, &d.RawEntry, &d.Weather,
		&crewCount, &d.Visitors, &parsed, &d.ParsedEntry, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if crewCount.Valid {
		c := int(crewCount.Int64)
		d.CrewCount = &c
	}
	if parsed.Valid && parsed.String != "" {
		var p model.ParsedLogData
		if err := json.Unmarshal([]byte(parsed.String), &p); err != nil {
			return nil, fmt.Errorf("decode parsed data: %w", err)
		}
		d.Parsed = &p
	}
	return &d, nil
}

// Upsert inserts or updates the log for (projectID, date). Exactly one row
// exists per pair; repeated saves overwrite in place (last write wins) while
// preserving any parsed annotation.
func (s *DailyLogStore) Upsert(projectID int64, date, rawEntry, weather string, crewCount *int, visitors string) (*model.DailyLog, error) {
	var cc sql.NullInt64
	if crewCount != nil {
		cc = sql.NullInt64{Int64: int64(*crewCount), Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO daily_logs (project_id, log_date, raw_entry, weather, crew_count, visitors, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(project_id, log_date) DO UPDATE SET
		   raw_entry = excluded.raw_entry,
		   weather = excluded.weather,
		   crew_count = excluded.crew_count,
		   visitors = excluded.visitors,
		   updated_at = excluded.updated_at`,
		projectID, date, rawEntry, weather, cc, visitors, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert daily log: %w", err)
	}
	return s.GetByDate(projectID, date)
}

func (s *DailyLogStore) GetByDate(projectID int64, date string) (*model.DailyLog, error) {
	row := s.db.QueryRow(
		`SELECT `+dailyLogCols+` FROM daily_logs WHERE project_id = ? AND log_date = ?`,
		projectID, date,
	)
	d, err := scanDailyLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get daily log: %w", err)
	}
	return d, nil
}

func (s *DailyLogStore) ListByProject(projectID int64) ([]model.DailyLog, error) {
	rows, err := s.db.Query(
		`SELECT `+dailyLogCols+` FROM daily_logs WHERE project_id = ? ORDER BY log_date DESC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list daily logs: %w", err)
	}
	defer rows.Close()

	var logs []model.DailyLog
	for rows.Next() {
		d, err := scanDailyLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily log: %w", err)
		}
		logs = append(logs, *d)
	}
	return logs, rows.Err()
}

// SetParsedData stores the classifier's annotation alongside the raw text it
// was produced from, so an unchanged entry is not re-submitted upstream.
func (s *DailyLogStore) SetParsedData(id int64, parsed *model.ParsedLogData, sourceEntry string) (*model.DailyLog, error) {
	data, err := json.Marshal(parsed)
	if err != nil {
		return nil, fmt.Errorf("encode parsed data: %w", err)
	}

	result, err := s.db.Exec(
		`UPDATE daily_logs SET parsed_data = ?, parsed_entry = ?, updated_at = ? WHERE id = ?`,
		string(data), sourceEntry, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("set parsed data: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	var d *model.DailyLog
	row := s.db.QueryRow(`SELECT `+dailyLogCols+` FROM daily_logs WHERE id = ?`, id)
	d, err = scanDailyLog(row)
	if err != nil {
		return nil, fmt.Errorf("get daily log: %w", err)
	}
	return d, nil
}
