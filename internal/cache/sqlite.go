package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jky-sys/Screener-3.0/pkg/model"
)

// SQLiteStore keeps candle histories in a local SQLite file so they survive
// restarts of the dashboard.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "screener-cache.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS candle_cache (
		cache_key  TEXT PRIMARY KEY,
		payload    BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]model.Candle, bool, error) {
	var (
		payload   []byte
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, expires_at FROM candle_cache WHERE cache_key = ?`, key,
	).Scan(&payload, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite get %s: %w", key, err)
	}
	if s.now().UnixNano() >= expiresAt {
		return nil, false, nil
	}

	var candles []model.Candle
	if err := json.Unmarshal(payload, &candles); err != nil {
		return nil, false, fmt.Errorf("decoding cached candles for %s: %w", key, err)
	}
	return candles, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, candles []model.Candle, ttl time.Duration) error {
	payload, err := json.Marshal(candles)
	if err != nil {
		return fmt.Errorf("encoding candles for %s: %w", key, err)
	}

	// Writers are serialized; SQLite allows a single writer at a time.
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO candle_cache (cache_key, payload, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET payload = excluded.payload, expires_at = excluded.expires_at`,
		key, payload, s.now().Add(ttl).UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite set %s: %w", key, err)
	}
	return nil
}

// Purge deletes expired rows and returns how many were removed
func (s *SQLiteStore) Purge(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM candle_cache WHERE expires_at <= ?`, s.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("sqlite purge: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
