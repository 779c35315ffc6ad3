package saved

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite persists saved entries in a single table. Job snapshots are kept
// as JSON so the saved view renders without the store.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS saved_jobs (
  user_id  TEXT NOT NULL,
  job_id   TEXT NOT NULL,
  saved_at INTEGER NOT NULL,
  job_json TEXT NOT NULL,
  PRIMARY KEY (user_id, job_id)
);
`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// Load returns every entry ordered by save time.
func (s *SQLite) Load(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, job_json FROM saved_jobs ORDER BY saved_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			userID, raw string
			e           Entry
		)
		if err := rows.Scan(&userID, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &e.Job); err != nil {
			return nil, fmt.Errorf("decode saved job for %s: %w", userID, err)
		}
		e.UserID = userID
		out = append(out, e)
	}
	return out, rows.Err()
}

// Put inserts the entry; an existing (user, job) row is left as is.
func (s *SQLite) Put(ctx context.Context, e Entry) error {
	raw, err := json.Marshal(e.Job)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO saved_jobs (user_id, job_id, saved_at, job_json) VALUES (?, ?, ?, ?)`,
		e.UserID, e.Job.ID, time.Now().UnixMilli(), string(raw),
	)
	return err
}

func (s *SQLite) Delete(ctx context.Context, userID, jobID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM saved_jobs WHERE user_id = ? AND job_id = ?`, userID, jobID)
	return err
}
