package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers(t *testing.T) {
	db := openTestDB(t)

	alice := mustUser(t, db, "alice")
	assert.NotZero(t, alice.ID)

	got, err := db.GetUserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, "hash-alice", got.PasswordHash)
	assert.Zero(t, got.Rating)
	assert.Nil(t, got.SessionExpiresAt)

	_, err = db.GetUserByID(9999)
	assert.ErrorIs(t, err, ErrNotFound)

	err = db.InsertUser(alice)
	assert.ErrorIs(t, err, ErrUsernameTaken)

	exists, err := db.UsernameExists("alice")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = db.UsernameExists("bob")
	require.NoError(t, err)
	assert.False(t, exists)

	bob := mustUser(t, db, "bob")
	assert.ErrorIs(t, db.UpdateUsername(bob.ID, "alice"), ErrUsernameTaken)
	require.NoError(t, db.UpdateUsername(bob.ID, "robert"))
	require.NoError(t, db.UpdateUserPassword(bob.ID, "newhash"))

	got, err = db.GetUserByID(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "robert", got.Username)
	assert.Equal(t, "newhash", got.PasswordHash)

	users, err := db.GetAllUsers()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "robert", users[1].Username)

	assert.ErrorIs(t, db.UpdateUserPassword(9999, "x"), ErrNotFound)
}

func TestDeleteUserCascades(t *testing.T) {
	db := openTestDB(t)
	alice := mustUser(t, db, "alice")
	bob := mustUser(t, db, "bob")

	post := mustPost(t, db, alice, "title", "question")
	bobsPost := mustPost(t, db, bob, "other", "text")
	answer := mustAnswer(t, db, bobsPost, alice, "answer")
	_, err := db.ApplyVote(answer.ID, bob.ID, 1)
	require.NoError(t, err)

	require.NoError(t, db.DeleteUser(alice.ID))

	_, err = db.GetPostByID(post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.GetAnswerByID(answer.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var votes int
	require.NoError(t, db.GetMainDB().QueryRow(`SELECT COUNT(*) FROM answer_votes`).Scan(&votes))
	assert.Zero(t, votes)

	assert.ErrorIs(t, db.DeleteUser(alice.ID), ErrNotFound)
}

func TestSessions(t *testing.T) {
	db := openTestDB(t)
	alice := mustUser(t, db, "alice")

	sid, err := db.CreateUserSession(alice.ID, "127.0.0.1")
	require.NoError(t, err)
	assert.Len(t, sid, SessionIDLength)

	u, err := db.ValidateUserSession(sid)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)
	assert.Equal(t, "127.0.0.1", u.LastLoginIP)
	require.NotNil(t, u.SessionExpiresAt)
	assert.WithinDuration(t, time.Now().Add(SessionTimeout), *u.SessionExpiresAt, time.Minute)

	// a new login replaces the old session
	sid2, err := db.CreateUserSession(alice.ID, "127.0.0.2")
	require.NoError(t, err)
	_, err = db.ValidateUserSession(sid)
	assert.ErrorIs(t, err, ErrInvalidSession)

	require.NoError(t, db.InvalidateUserSessionBySessionID(sid2))
	_, err = db.ValidateUserSession(sid2)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = db.ValidateUserSession("")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestCleanupExpiredSessions(t *testing.T) {
	db := openTestDB(t)
	alice := mustUser(t, db, "alice")
	bob := mustUser(t, db, "bob")

	expired, err := db.CreateUserSession(alice.ID, "")
	require.NoError(t, err)
	active, err := db.CreateUserSession(bob.ID, "")
	require.NoError(t, err)

	_, err = db.GetMainDB().Exec(`UPDATE users SET session_expires_at = ? WHERE id = ?`, now().Add(-time.Minute), alice.ID)
	require.NoError(t, err)

	n, err := db.CleanupExpiredSessions()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = db.ValidateUserSession(expired)
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = db.ValidateUserSession(active)
	assert.NoError(t, err)
}

func TestLoginLockout(t *testing.T) {
	db := openTestDB(t)
	alice := mustUser(t, db, "alice")

	for i := 0; i < MaxLoginAttempts-1; i++ {
		require.NoError(t, db.IncrementLoginAttempts("alice"))
	}
	locked, err := db.IsUserLockedOut("alice")
	require.NoError(t, err)
	assert.False(t, locked)

	require.NoError(t, db.IncrementLoginAttempts("alice"))
	locked, err = db.IsUserLockedOut("alice")
	require.NoError(t, err)
	assert.True(t, locked)

	// lockout expires
	_, err = db.GetMainDB().Exec(`UPDATE users SET last_failed_login = ? WHERE id = ?`, now().Add(-LoginLockoutTime-time.Minute), alice.ID)
	require.NoError(t, err)
	locked, err = db.IsUserLockedOut("alice")
	require.NoError(t, err)
	assert.False(t, locked)

	u, err := db.GetUserByID(alice.ID)
	require.NoError(t, err)
	assert.Zero(t, u.LoginAttempts)

	locked, err = db.IsUserLockedOut("nobody")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestRegistrationToggle(t *testing.T) {
	db := openTestDB(t)

	enabled, err := db.IsRegistrationEnabled()
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, db.SetRegistrationEnabled(false))
	enabled, err = db.IsRegistrationEnabled()
	require.NoError(t, err)
	assert.False(t, enabled)

	v, err := db.GetConfigValue("missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	b, err := db.GetConfigBool("missing", true)
	require.NoError(t, err)
	assert.True(t, b)
}
