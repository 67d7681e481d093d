package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/monchatbot/internal/model"
)

// SQLiteStore implements Store using SQLite. Each Append inserts the new
// row and evicts rows past the bound in a single transaction.
type SQLiteStore struct {
	db      *sql.DB
	path    string
	maxSize int
	logger  *slog.Logger

	mu      sync.Mutex // serializes writers and guards entropy
	entropy *rand.Rand
	count   int
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(opts Options, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dir := filepath.Dir(opts.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", opts.Path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		path:    opts.Path,
		maxSize: opts.maxSize(),
		logger:  logger,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	defer tx.Rollback()
	if err := s.evict(ctx, tx); err != nil {
		db.Close()
		return nil, fmt.Errorf("evict: %w", err)
	}
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&s.count); err != nil {
		db.Close()
		return nil, fmt.Errorf("count entries: %w", err)
	}
	if err := tx.Commit(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("memory loaded", "path", opts.Path, "entries", s.count, "max_size", s.maxSize)
	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id          TEXT PRIMARY KEY,
		seq         INTEGER NOT NULL UNIQUE,
		question    TEXT NOT NULL,
		response    TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_seq ON entries(seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Entries(ctx context.Context) ([]model.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT question, response FROM entries ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		var e model.Entry
		if err := rows.Scan(&e.Question, &e.Response); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Append(ctx context.Context, e model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM entries`).Scan(&seq); err != nil {
		return fmt.Errorf("next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO entries (id, seq, question, response, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.newID(), seq, e.Question, e.Response, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	if err := s.evict(ctx, tx); err != nil {
		return fmt.Errorf("evict: %w", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&count); err != nil {
		return fmt.Errorf("count entries: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.count = count
	return nil
}

// evict deletes the oldest rows beyond maxSize.
func (s *SQLiteStore) evict(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM entries WHERE seq NOT IN (SELECT seq FROM entries ORDER BY seq DESC LIMIT ?)`,
		s.maxSize)
	return err
}

func (s *SQLiteStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *SQLiteStore) MaxSize() int { return s.maxSize }

func (s *SQLiteStore) Stats(_ context.Context) (*Stats, error) {
	st := &Stats{
		Backend: "sqlite",
		Path:    s.path,
		Entries: s.Len(),
		MaxSize: s.maxSize,
	}
	if info, err := os.Stat(s.path); err == nil {
		st.SizeBytes = info.Size()
	}
	return st, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
