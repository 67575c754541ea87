package schedulestore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/zkan/dagster/internal/scheduler"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS schedules (
	name   TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	data   TEXT NOT NULL
);
`

// SQLite persists schedules in a single-file SQLite database. Definitions
// are stored as JSON alongside the status column, which keeps the schema
// stable as definition fields evolve.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path and ensures the
// schema exists.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening schedule database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schedule database: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) All() ([]scheduler.Schedule, error) {
	rows, err := s.db.Query(`SELECT status, data FROM schedules ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []scheduler.Schedule
	for rows.Next() {
		var status, data string
		if err := rows.Scan(&status, &data); err != nil {
			return nil, err
		}
		sched, err := decodeSchedule(status, data)
		if err != nil {
			return nil, err
		}
		all = append(all, sched)
	}
	return all, rows.Err()
}

func (s *SQLite) Get(name string) (scheduler.Schedule, bool, error) {
	var status, data string
	err := s.db.QueryRow(`SELECT status, data FROM schedules WHERE name = ?`, name).
		Scan(&status, &data)
	if err == sql.ErrNoRows {
		return scheduler.Schedule{}, false, nil
	}
	if err != nil {
		return scheduler.Schedule{}, false, err
	}
	sched, err := decodeSchedule(status, data)
	if err != nil {
		return scheduler.Schedule{}, false, err
	}
	return sched, true, nil
}

func (s *SQLite) Add(sched scheduler.Schedule) error {
	data, err := json.Marshal(sched.Definition)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO schedules (name, status, data) VALUES (?, ?, ?)`,
		sched.Name(), string(sched.Status), string(data),
	)
	if err != nil {
		return fmt.Errorf("inserting schedule '%s': %w", sched.Name(), err)
	}
	return nil
}

func (s *SQLite) Update(sched scheduler.Schedule) error {
	data, err := json.Marshal(sched.Definition)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(
		`UPDATE schedules SET status = ?, data = ? WHERE name = ?`,
		string(sched.Status), string(data), sched.Name(),
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &scheduler.ErrScheduleNotFound{Name: sched.Name()}
	}
	return nil
}

func (s *SQLite) Delete(name string) error {
	res, err := s.db.Exec(`DELETE FROM schedules WHERE name = ?`, name)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &scheduler.ErrScheduleNotFound{Name: name}
	}
	return nil
}

func decodeSchedule(status, data string) (scheduler.Schedule, error) {
	var def scheduler.Definition
	if err := json.Unmarshal([]byte(data), &def); err != nil {
		return scheduler.Schedule{}, fmt.Errorf("decoding stored schedule: %w", err)
	}
	st := scheduler.Status(status)
	if !st.Valid() {
		return scheduler.Schedule{}, fmt.Errorf("stored schedule '%s' has unknown status '%s'", def.Name, status)
	}
	return scheduler.Schedule{Definition: def, Status: st}, nil
}
