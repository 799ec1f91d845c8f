package anomaly

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// Store is the structured anomaly store, one sqlite table indexed for
// lookup by hostname and by label. The schema is fixed at design time.
// Writes are serialized through a single connection and a mutex.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func NewStore(dbFile string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbFile)
	if err != nil {
		return nil, fmt.Errorf("could not open sqlite3 database: %w", err)
	}

	logrus.WithField("file", dbFile).Debug("Opening Sqlite3 database.")

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS bad_logs (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            logged_at TIMESTAMP NOT NULL,
            upload_ts TEXT,
            hostname TEXT NOT NULL,
            label TEXT NOT NULL,
            log_line TEXT
        )`,
		`CREATE INDEX IF NOT EXISTS idx_bad_logs_logged_at ON bad_logs (logged_at)`,
		`CREATE INDEX IF NOT EXISTS idx_bad_logs_hostname ON bad_logs (hostname)`,
		`CREATE INDEX IF NOT EXISTS idx_bad_logs_label ON bad_logs (label)`,
	}
	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("could not create db table bad_logs: %w", err)
		}
	}
	return nil
}

func (s *Store) Insert(rec Record) error {
	query := `INSERT INTO bad_logs (logged_at, upload_ts, hostname, label, log_line)
              VALUES ($1, $2, $3, $4, $5)`

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(query, rec.LoggedAt, rec.UploadTS, rec.Hostname, rec.Label, rec.Line)
	return err
}

// CountByHostname returns the number of recorded anomalies for one host.
func (s *Store) CountByHostname(hostname string) (int, error) {
	var count int
	row := s.db.QueryRow(`SELECT COUNT(*) FROM bad_logs WHERE hostname = $1`, hostname)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// QueryByLabel returns all recorded anomalies carrying one label, newest
// first. Severity is re-derived from the label on the way out.
func (s *Store) QueryByLabel(label string) ([]Record, error) {
	query := `SELECT logged_at, upload_ts, hostname, label, log_line
              FROM bad_logs WHERE label = $1 ORDER BY id DESC`

	rows, err := s.db.Query(query, label)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.LoggedAt, &rec.UploadTS, &rec.Hostname, &rec.Label, &rec.Line); err != nil {
			return nil, err
		}
		rec.Severity = Severity(rec.Label)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
