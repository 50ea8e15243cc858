package database

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-while/go-advice/internal/models"
)

// Session security constants
const (
	SessionIDLength  = 64               // 64 character session ID
	SessionTimeout   = 3 * time.Hour    // 3 hour sliding timeout
	MaxLoginAttempts = 5                // Max failed login attempts
	LoginLockoutTime = 15 * time.Minute // Lockout time after max attempts
)

// ErrInvalidSession is returned for unknown or expired session ids
var ErrInvalidSession = errors.New("invalid or expired session")

// GenerateSecureSessionID creates a cryptographically secure session ID
func GenerateSecureSessionID() (string, error) {
	bytes := make([]byte, SessionIDLength/2) // hex encoding doubles the length
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure session ID: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

const query_CreateUserSession = `UPDATE users SET
	session_id = ?,
	last_login_ip = ?,
	session_expires_at = ?,
	login_attempts = 0,
	last_failed_login = NULL,
	updated_at = ?
	WHERE id = ?`

// CreateUserSession creates a new session for the user and invalidates any existing session
func (db *Database) CreateUserSession(userID int64, remoteIP string) (string, error) {
	sessionID, err := GenerateSecureSessionID()
	if err != nil {
		return "", err
	}

	ts := now()
	res, err := retryableExec(db.mainDB, query_CreateUserSession, sessionID, remoteIP, ts.Add(SessionTimeout), ts, userID)
	if err != nil {
		return "", fmt.Errorf("failed to create user session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return "", ErrNotFound
	}
	return sessionID, nil
}

const query_ValidateUserSession = `SELECT ` + userColumns + ` FROM users WHERE session_id = ? AND session_expires_at > ?`
const query_ExtendUserSession = `UPDATE users SET session_expires_at = ? WHERE id = ?`

// ValidateUserSession checks if the session is valid and extends expiration
func (db *Database) ValidateUserSession(sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	ts := now()
	user, err := db.queryUser(query_ValidateUserSession, sessionID, ts)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	// sliding timeout
	newExpiresAt := ts.Add(SessionTimeout)
	if _, err := retryableExec(db.mainDB, query_ExtendUserSession, newExpiresAt, user.ID); err != nil {
		log.Printf("[DB]: failed to extend session for user %d: %v", user.ID, err)
	} else {
		user.SessionExpiresAt = &newExpiresAt
	}
	return user, nil
}

const query_InvalidateUserSession = `UPDATE users SET session_id = '', session_expires_at = NULL, updated_at = ? WHERE id = ?`

// InvalidateUserSession clears the user's session
func (db *Database) InvalidateUserSession(userID int64) error {
	_, err := retryableExec(db.mainDB, query_InvalidateUserSession, now(), userID)
	return err
}

const query_InvalidateUserSessionBySessionID = `UPDATE users SET session_id = '', session_expires_at = NULL, updated_at = ? WHERE session_id = ? AND session_id != ''`

// InvalidateUserSessionBySessionID clears session by session ID
func (db *Database) InvalidateUserSessionBySessionID(sessionID string) error {
	_, err := retryableExec(db.mainDB, query_InvalidateUserSessionBySessionID, now(), sessionID)
	return err
}

const query_IncrementLoginAttempts = `UPDATE users SET login_attempts = login_attempts + 1, last_failed_login = ? WHERE username = ?`

// IncrementLoginAttempts increases the failed login counter
func (db *Database) IncrementLoginAttempts(username string) error {
	_, err := retryableExec(db.mainDB, query_IncrementLoginAttempts, now(), username)
	return err
}

const query_ResetLoginAttempts = `UPDATE users SET login_attempts = 0, last_failed_login = NULL WHERE id = ?`

// ResetLoginAttempts clears the failed login counter
func (db *Database) ResetLoginAttempts(userID int64) error {
	_, err := retryableExec(db.mainDB, query_ResetLoginAttempts, userID)
	return err
}

const query_IsUserLockedOut = `SELECT login_attempts, last_failed_login FROM users WHERE username = ?`
const query_ClearLockout = `UPDATE users SET login_attempts = 0, last_failed_login = NULL WHERE username = ?`

// IsUserLockedOut checks if user is temporarily locked out due to failed attempts.
// Unknown usernames are never locked out.
func (db *Database) IsUserLockedOut(username string) (bool, error) {
	var attempts int
	var lastFailed *time.Time
	err := retryableQueryRowScan(db.mainDB, query_IsUserLockedOut, []interface{}{username}, &attempts, &lastFailed)
	if err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if attempts < MaxLoginAttempts {
		return false, nil
	}
	if lastFailed != nil && time.Since(*lastFailed) < LoginLockoutTime {
		return true, nil
	}

	// lockout period expired
	if _, err := retryableExec(db.mainDB, query_ClearLockout, username); err != nil {
		log.Printf("[DB]: failed to clear lockout for %q: %v", username, err)
	}
	return false, nil
}

const query_CleanupExpiredSessions = `UPDATE users SET session_id = '', session_expires_at = NULL
	WHERE session_expires_at IS NOT NULL AND session_expires_at < ?`

// CleanupExpiredSessions clears expired sessions and returns how many were removed
func (db *Database) CleanupExpiredSessions() (int64, error) {
	result, err := retryableExec(db.mainDB, query_CleanupExpiredSessions, now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
