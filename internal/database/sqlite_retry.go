package database

import (
	"database/sql"
	"errors"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

const (
	maxRetries = 100
	baseDelay  = 10 * time.Millisecond
	maxDelay   = 250 * time.Millisecond
)

// isRetryableError reports whether err is SQLITE_BUSY / SQLITE_LOCKED
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked") ||
		strings.Contains(errStr, "busy")
}

// backoff sleeps before retry attempt+1, linear growth capped at maxDelay plus up to 50% jitter
func backoff(attempt int) {
	delay := time.Duration(attempt+1) * baseDelay
	if delay > maxDelay {
		delay = maxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(delay) / 2))
	time.Sleep(delay + jitter)
}

// withRetry runs fn until it succeeds, fails with a non-retryable error or maxRetries is reached
func withRetry(what, query string, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = fn()
		if !isRetryableError(err) {
			return err
		}
		if attempt < maxRetries-1 {
			log.Printf("[DB]: retry %d/%d %s (first 50 chars): %s... Error: %v",
				attempt+1, maxRetries, what, truncateString(query, 50), err)
			backoff(attempt)
		}
	}
	return err
}

// retryableExec executes a SQL statement with retry logic for lock conflicts
func retryableExec(db *sql.DB, query string, args ...interface{}) (sql.Result, error) {
	var result sql.Result
	err := withRetry("exec", query, func() error {
		var err error
		result, err = db.Exec(query, args...)
		return err
	})
	return result, err
}

// retryableQueryRowScan executes a QueryRow and Scan with retry logic
func retryableQueryRowScan(db *sql.DB, query string, args []interface{}, dest ...interface{}) error {
	return withRetry("queryrow", query, func() error {
		return db.QueryRow(query, args...).Scan(dest...)
	})
}

// retryableQuery executes a query that returns multiple rows with retry logic
func retryableQuery(db *sql.DB, query string, args ...interface{}) (*sql.Rows, error) {
	var rows *sql.Rows
	err := withRetry("query", query, func() error {
		var err error
		rows, err = db.Query(query, args...)
		return err
	})
	return rows, err
}

// retryableTransactionExec runs txFunc inside a transaction, retrying the whole
// transaction when begin, body or commit hits a lock
func retryableTransactionExec(db *sql.DB, txFunc func(*sql.Tx) error) error {
	return withRetry("transaction", "", func() error {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if err := txFunc(tx); err != nil {
			tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}

// truncateString truncates a string to the specified length
func truncateString(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length]
}
