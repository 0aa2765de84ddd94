package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/file-warden/internal/core"
	"go.uber.org/zap"
)

// sqliteTimeLayout matches datetime('now') output so expiry comparisons
// stay lexically sound. Timestamps are stored in UTC.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// SQLiteCache is a SQLite implementation of the VerdictCache interface
type SQLiteCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewSQLiteCache creates a new SQLite verdict cache
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS scan_cache (
			file_hash TEXT PRIMARY KEY,
			status TEXT,
			signature TEXT,
			last_seen TIMESTAMP,
			expires_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Create index on expires_at for faster cleanup
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_expires_at ON scan_cache(expires_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	cache := &SQLiteCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go cache.startCleanupTask()

	return cache, nil
}

// Get retrieves a cached entry for a file hash
func (c *SQLiteCache) Get(ctx context.Context, fileHash string) (*core.CacheEntry, error) {
	var status, signature string
	var lastSeen, expiresAt string

	err := c.db.QueryRowContext(ctx, `
		SELECT status, signature, last_seen, expires_at
		FROM scan_cache
		WHERE file_hash = ? AND expires_at > datetime('now')
	`, fileHash).Scan(&status, &signature, &lastSeen, &expiresAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	entry := &core.CacheEntry{
		FileHash:  fileHash,
		Status:    core.VerdictStatus(status),
		Signature: signature,
	}

	if entry.LastSeen, err = time.Parse(sqliteTimeLayout, lastSeen); err != nil {
		return nil, fmt.Errorf("failed to parse last_seen timestamp: %w", err)
	}
	if entry.ExpiresAt, err = time.Parse(sqliteTimeLayout, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to parse expires_at timestamp: %w", err)
	}

	return entry, nil
}

// Set stores a cache entry
func (c *SQLiteCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO scan_cache (file_hash, status, signature, last_seen, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.FileHash, string(entry.Status), entry.Signature,
		entry.LastSeen.UTC().Format(sqliteTimeLayout),
		entry.ExpiresAt.UTC().Format(sqliteTimeLayout))

	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *SQLiteCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM scan_cache
		WHERE expires_at <= datetime('now')
	`)
	if err != nil {
		return fmt.Errorf("failed to clean up cache: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", n))
	}
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *SQLiteCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database
func (c *SQLiteCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
