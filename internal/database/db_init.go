package database

import (
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
)

// Path returns the location of the main database file
func (db *Database) Path() string {
	return filepath.Join(db.dbconfig.DataDir, db.dbconfig.FileName)
}

// dsn builds the connection string. Pragmas go into the DSN so that every
// pooled connection gets them, not just the first one.
func (db *Database) dsn() string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", strconv.FormatInt(db.dbconfig.BusyTimeout.Milliseconds(), 10))
	params.Set("_synchronous", db.dbconfig.SyncMode)
	params.Set("_cache_size", strconv.Itoa(db.dbconfig.CacheSize))
	if db.dbconfig.WALMode {
		params.Set("_journal_mode", "WAL")
	}
	params.Set("_txlock", "immediate")
	return "file:" + db.Path() + "?" + params.Encode()
}

// initMainDB initializes the main database connection
func (db *Database) initMainDB() error {
	log.Printf("[DB]: initializing main database at: %s", db.Path())

	if err := os.MkdirAll(db.dbconfig.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	mainDB, err := sql.Open(driverName, db.dsn())
	if err != nil {
		return fmt.Errorf("failed to open main database: %w", err)
	}

	mainDB.SetMaxOpenConns(db.dbconfig.MaxOpenConns)
	mainDB.SetMaxIdleConns(db.dbconfig.MaxIdleConns)
	mainDB.SetConnMaxLifetime(db.dbconfig.ConnMaxLifetime)

	if err := mainDB.Ping(); err != nil {
		if cerr := mainDB.Close(); cerr != nil {
			return fmt.Errorf("failed to ping main database: %w; also failed to close mainDB: %v", err, cerr)
		}
		return fmt.Errorf("failed to ping main database: %w", err)
	}

	if err := applySQLitePragmas(mainDB); err != nil {
		mainDB.Close()
		return err
	}

	db.mainDB = mainDB
	return nil
}

// applySQLitePragmas applies tuning pragmas that have no DSN parameter
func applySQLitePragmas(conn *sql.DB) error {
	pragmas := []string{
		"PRAGMA temp_store = MEMORY",
		"PRAGMA wal_autocheckpoint = 1000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma '%s': %w", pragma, err)
		}
	}
	return nil
}
