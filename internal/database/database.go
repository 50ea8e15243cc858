// Package database provides the SQLite storage layer for go-advice
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-while/go-advice/internal/search"
	"github.com/mattn/go-sqlite3"
)

// driverName is mattn/go-sqlite3 with the fold() SQL function registered on every connection
const driverName = "sqlite3_advice"

var registerDriverOnce sync.Once

func registerDriver() {
	registerDriverOnce.Do(func() {
		sql.Register(driverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("fold", search.Fold, true)
			},
		})
	})
}

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("not found")
	// ErrUsernameTaken is returned when a username is already used by another account
	ErrUsernameTaken = errors.New("username already taken")
)

// Database wraps the main SQLite connection pool
type Database struct {
	mainDB   *sql.DB
	dbconfig *DBConfig

	StopChan chan struct{} // closed on Shutdown
	stopOnce sync.Once
}

// DBConfig represents database configuration
type DBConfig struct {
	// Directory to store the database file
	DataDir  string
	FileName string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Performance settings
	WALMode     bool   // Write-Ahead Logging
	SyncMode    string // OFF, NORMAL, FULL
	CacheSize   int    // negative values are KiB
	BusyTimeout time.Duration
}

// DefaultDBConfig returns default database configuration
func DefaultDBConfig() *DBConfig {
	return &DBConfig{
		DataDir:         "./data",
		FileName:        "advice.sq3",
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 0, // sqlite connections don't need recycling
		WALMode:         true,
		SyncMode:        "NORMAL",
		CacheSize:       -16384, // 16MB
		BusyTimeout:     30 * time.Second,
	}
}

// OpenDatabase opens (and creates if needed) the main database and applies migrations
func OpenDatabase(dbconfig *DBConfig) (*Database, error) {
	if dbconfig == nil {
		dbconfig = DefaultDBConfig()
	}
	registerDriver()

	db := &Database{
		dbconfig: dbconfig,
		StopChan: make(chan struct{}),
	}

	if err := db.initMainDB(); err != nil {
		return nil, fmt.Errorf("failed to initialize main database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.mainDB.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	log.Printf("[DB]: database ready at %s", db.Path())
	return db, nil
}

// GetMainDB returns the main database connection for direct access
func (db *Database) GetMainDB() *sql.DB {
	return db.mainDB
}

// IsDBshutdown reports whether Shutdown has been called
func (db *Database) IsDBshutdown() bool {
	if db == nil {
		return true
	}
	select {
	case <-db.StopChan:
		return true
	default:
		return false
	}
}

// Shutdown signals background users to stop and closes the pool
func (db *Database) Shutdown() error {
	var err error
	db.stopOnce.Do(func() {
		close(db.StopChan)
		err = db.mainDB.Close()
		log.Printf("[DB]: database closed")
	})
	return err
}

// notFound maps sql.ErrNoRows to ErrNotFound
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// now is the single time source for stored timestamps
func now() time.Time {
	return time.Now().UTC()
}
