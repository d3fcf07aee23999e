package profiler

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists profiler reports to a SQLite database.
type Store struct {
	db *sql.DB
}

// Sample is one stored report.
type Sample struct {
	ID        int64
	Session   string
	Timestamp time.Time
	FPS       float64
	HeapMB    float64
	GCCount   uint32
	Bodies    int
	Objects   int
}

// SessionSummary aggregates the samples of one session.
type SessionSummary struct {
	Session string
	Samples int
	AvgFPS  float64
	MinFPS  float64
	MaxBody int
}

// OpenStore creates or opens the database at path, creating parent directories and the schema.
//
// Parameters:
//   - path: the database file; a leading ~ expands to the home directory
//
// Returns:
//   - *Store: the open store
//   - error: an error if the database cannot be opened or migrated
func OpenStore(path string) (*Store, error) {
	if path != "" && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("profiler: cannot expand home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("profiler: cannot create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("profiler: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("profiler: cannot connect to database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("profiler: migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS frame_stats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			fps REAL NOT NULL,
			heap_mb REAL NOT NULL,
			gc_count INTEGER NOT NULL,
			bodies INTEGER NOT NULL,
			objects INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_frame_stats_session ON frame_stats(session, timestamp);
	`)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save records one report under session.
//
// Parameters:
//   - session: the session name
//   - r: the report
//
// Returns:
//   - error: an error if the insert fails
func (s *Store) Save(session string, r Report) error {
	_, err := s.db.Exec(
		`INSERT INTO frame_stats (session, timestamp, fps, heap_mb, gc_count, bodies, objects)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session, r.Timestamp.UnixMilli(), r.FPS, r.HeapMB, r.GCCount, r.Bodies, r.Objects,
	)
	if err != nil {
		return fmt.Errorf("profiler: cannot save sample: %w", err)
	}
	return nil
}

// Samples returns a session's samples in time order.
//
// Parameters:
//   - session: the session name
//
// Returns:
//   - []Sample: the samples
//   - error: an error if the query fails
func (s *Store) Samples(session string) ([]Sample, error) {
	rows, err := s.db.Query(
		`SELECT id, session, timestamp, fps, heap_mb, gc_count, bodies, objects
		 FROM frame_stats
		 WHERE session = ?
		 ORDER BY timestamp, id`,
		session,
	)
	if err != nil {
		return nil, fmt.Errorf("profiler: cannot query samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var smp Sample
		var ts int64
		if err := rows.Scan(&smp.ID, &smp.Session, &ts, &smp.FPS, &smp.HeapMB, &smp.GCCount, &smp.Bodies, &smp.Objects); err != nil {
			return nil, fmt.Errorf("profiler: cannot scan sample: %w", err)
		}
		smp.Timestamp = time.UnixMilli(ts)
		out = append(out, smp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("profiler: row iteration error: %w", err)
	}
	return out, nil
}

// Summary aggregates a session's samples.
//
// Parameters:
//   - session: the session name
//
// Returns:
//   - SessionSummary: the aggregate; Samples is 0 for an unknown session
//   - error: an error if the query fails
func (s *Store) Summary(session string) (SessionSummary, error) {
	sum := SessionSummary{Session: session}
	var avg, minFPS sql.NullFloat64
	var maxBodies sql.NullInt64
	err := s.db.QueryRow(
		`SELECT COUNT(*), AVG(fps), MIN(fps), MAX(bodies) FROM frame_stats WHERE session = ?`,
		session,
	).Scan(&sum.Samples, &avg, &minFPS, &maxBodies)
	if err != nil {
		return SessionSummary{}, fmt.Errorf("profiler: cannot summarize session: %w", err)
	}
	sum.AvgFPS = avg.Float64
	sum.MinFPS = minFPS.Float64
	sum.MaxBody = int(maxBodies.Int64)
	return sum, nil
}
