package database

import (
	"fmt"

	"github.com/go-while/go-advice/internal/models"
)

const userColumns = `id, username, password_hash, rating, session_id, last_login_ip,
	session_expires_at, login_attempts, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Rating, &u.SessionID, &u.LastLoginIP,
		&u.SessionExpiresAt, &u.LoginAttempts, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// queryUser runs a single-user query with retry and maps no rows to ErrNotFound
func (db *Database) queryUser(query string, args ...interface{}) (*models.User, error) {
	var user *models.User
	err := withRetry("queryrow", query, func() error {
		var err error
		user, err = scanUser(db.mainDB.QueryRow(query, args...))
		return err
	})
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

const query_InsertUser = `INSERT INTO users (username, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?)`

// InsertUser creates a user and sets u.ID. A duplicate username returns ErrUsernameTaken.
func (db *Database) InsertUser(u *models.User) error {
	ts := now()
	res, err := retryableExec(db.mainDB, query_InsertUser, u.Username, u.PasswordHash, ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	u.CreatedAt = ts
	u.UpdatedAt = ts
	return nil
}

const query_GetUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

// GetUserByID returns the user or ErrNotFound
func (db *Database) GetUserByID(id int64) (*models.User, error) {
	return db.queryUser(query_GetUserByID, id)
}

const query_GetUserByUsername = `SELECT ` + userColumns + ` FROM users WHERE username = ?`

// GetUserByUsername returns the user or ErrNotFound
func (db *Database) GetUserByUsername(username string) (*models.User, error) {
	return db.queryUser(query_GetUserByUsername, username)
}

const query_GetAllUsers = `SELECT ` + userColumns + ` FROM users ORDER BY username`

// GetAllUsers retrieves all users ordered by username
func (db *Database) GetAllUsers() ([]*models.User, error) {
	rows, err := retryableQuery(db.mainDB, query_GetAllUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const query_UsernameExists = `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`

// UsernameExists reports whether the username is taken
func (db *Database) UsernameExists(username string) (bool, error) {
	var exists bool
	err := retryableQueryRowScan(db.mainDB, query_UsernameExists, []interface{}{username}, &exists)
	return exists, err
}

const query_UpdateUserPassword = `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`

// UpdateUserPassword updates a user's password hash
func (db *Database) UpdateUserPassword(userID int64, passwordHash string) error {
	return db.execOne(query_UpdateUserPassword, passwordHash, now(), userID)
}

const query_UpdateUsername = `UPDATE users SET username = ?, updated_at = ? WHERE id = ?`

// UpdateUsername renames a user. A name used by someone else returns ErrUsernameTaken.
func (db *Database) UpdateUsername(userID int64, username string) error {
	err := db.execOne(query_UpdateUsername, username, now(), userID)
	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	return err
}

const query_DeleteUser = `DELETE FROM users WHERE id = ?`

// DeleteUser removes a user together with their posts, answers and votes
func (db *Database) DeleteUser(userID int64) error {
	return db.execOne(query_DeleteUser, userID)
}

// execOne runs a statement that must touch exactly one row, else ErrNotFound
func (db *Database) execOne(query string, args ...interface{}) error {
	res, err := retryableExec(db.mainDB, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
