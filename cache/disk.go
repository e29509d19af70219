package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DefaultDirName is the per-user cache directory name under the home
// directory.
const DefaultDirName = ".guidelinely_cache"

// DBFileName is the SQLite file created inside the cache directory.
const DBFileName = "cache.db"

// DefaultDir returns ~/.guidelinely_cache for the current user.
func DefaultDir() string {
	return filepath.Join(xdg.Home, DefaultDirName)
}

// DiskConfig configures a DiskCache.
type DiskConfig struct {
	// Dir is the cache directory. Default: DefaultDir()
	Dir string

	// BusyTimeout bounds how long a writer waits for another process holding
	// the database lock.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// entry is one persisted cache row.
type entry struct {
	Key       string `gorm:"column:cache_key;primaryKey"`
	Value     []byte `gorm:"not null"`
	StoredAt  int64  `gorm:"not null"`
	ExpiresAt int64  `gorm:"not null;index"`
}

func (entry) TableName() string { return "cache_entries" }

// DiskCache is a durable Cache backed by a SQLite file. Several processes may
// open the same directory; SQLite's locking keeps single-key reads and writes
// atomic.
type DiskCache struct {
	db   *gorm.DB
	dir  string
	path string
	now  func() time.Time
}

// OpenDisk opens (creating if needed) the cache in cfg.Dir.
func OpenDisk(ctx context.Context, cfg DiskConfig) (*DiskCache, error) {
	if cfg.Dir == "" {
		cfg.Dir = DefaultDir()
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}

	path := filepath.Join(cfg.Dir, DBFileName)
	dsn := fmt.Sprintf("%s?_busy_timeout=%d", path, cfg.BusyTimeout.Milliseconds())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	// WAL lets readers in other processes proceed while one process writes.
	if err := db.WithContext(ctx).Exec("PRAGMA journal_mode=WAL;").Error; err != nil {
		closeDB(db)
		return nil, &StorageError{Op: "open", Err: err}
	}
	if err := db.WithContext(ctx).Exec("PRAGMA synchronous=normal;").Error; err != nil {
		closeDB(db)
		return nil, &StorageError{Op: "open", Err: err}
	}
	if err := db.WithContext(ctx).AutoMigrate(&entry{}); err != nil {
		closeDB(db)
		return nil, &StorageError{Op: "open", Err: err}
	}

	return &DiskCache{
		db:   db,
		dir:  cfg.Dir,
		path: path,
		now:  cfg.Now,
	}, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Dir returns the cache directory.
func (c *DiskCache) Dir() string { return c.dir }

// Path returns the SQLite file path.
func (c *DiskCache) Path() string { return c.path }

// Get retrieves a value. Expired rows are reported as a miss and left in
// place for Sweep.
func (c *DiskCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e entry
	err := c.db.WithContext(ctx).Where("cache_key = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &StorageError{Op: "get", Key: key, Err: err}
	}

	if c.now().UnixNano() > e.ExpiresAt {
		return nil, false, nil
	}
	return e.Value, true, nil
}

// Set upserts value with a fresh expiry of now+ttl. TTL<=0 means no caching.
func (c *DiskCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if value == nil {
		value = []byte{}
	}

	now := c.now()
	e := entry{
		Key:       key,
		Value:     value,
		StoredAt:  now.UnixNano(),
		ExpiresAt: now.Add(ttl).UnixNano(),
	}

	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "stored_at", "expires_at"}),
	}).Create(&e).Error
	if err != nil {
		return &StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Delete removes a value. Idempotent - no error on miss.
func (c *DiskCache) Delete(ctx context.Context, key string) error {
	if err := c.db.WithContext(ctx).Where("cache_key = ?", key).Delete(&entry{}).Error; err != nil {
		return &StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// Clear removes every entry.
func (c *DiskCache) Clear(ctx context.Context) error {
	err := c.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entry{}).Error
	if err != nil {
		return &StorageError{Op: "clear", Err: err}
	}
	return nil
}

// Sweep deletes expired rows and returns how many were removed.
func (c *DiskCache) Sweep(ctx context.Context) (int64, error) {
	res := c.db.WithContext(ctx).Where("expires_at < ?", c.now().UnixNano()).Delete(&entry{})
	if res.Error != nil {
		return 0, &StorageError{Op: "sweep", Err: res.Error}
	}
	return res.RowsAffected, nil
}

// Ping checks that the database is reachable.
func (c *DiskCache) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return &StorageError{Op: "ping", Err: err}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return &StorageError{Op: "ping", Err: err}
	}
	return nil
}

// Close releases the database handle.
func (c *DiskCache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure DiskCache implements Cache and Sweeper
var (
	_ Cache   = (*DiskCache)(nil)
	_ Sweeper = (*DiskCache)(nil)
)
