package database

import (
	"testing"
	"time"

	"github.com/go-while/go-advice/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	cfg := DefaultDBConfig()
	cfg.DataDir = t.TempDir()
	cfg.BusyTimeout = 5 * time.Second
	db, err := OpenDatabase(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Shutdown() })
	return db
}

func mustUser(t *testing.T, db *Database, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, PasswordHash: "hash-" + name}
	require.NoError(t, db.InsertUser(u))
	return u
}

func mustPost(t *testing.T, db *Database, author *models.User, title, question string) *models.Post {
	t.Helper()
	p := &models.Post{Title: title, Question: question, AuthorID: author.ID}
	require.NoError(t, db.InsertPost(p))
	return p
}

func mustAnswer(t *testing.T, db *Database, post *models.Post, author *models.User, text string) *models.Answer {
	t.Helper()
	a := &models.Answer{PostID: post.ID, AuthorID: author.ID, Text: text}
	require.NoError(t, db.InsertAnswer(a))
	return a
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Migrate())

	migrations, err := getMigrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	var n int
	require.NoError(t, db.GetMainDB().QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, len(migrations), n)

	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}
}

func TestParseMigrationFileName(t *testing.T) {
	m, err := parseMigrationFileName("0007_main_add_things.sql")
	require.NoError(t, err)
	assert.Equal(t, 7, m.Version)
	assert.Equal(t, MigrationTypeMain, m.Type)
	assert.Equal(t, "add_things", m.Description)

	for _, bad := range []string{"0001_main.sql", "abcd_main_x.sql", "0001_group_x.sql", "0001_main_x.txt"} {
		_, err := parseMigrationFileName(bad)
		assert.Error(t, err, bad)
	}
}

func TestShutdownTwice(t *testing.T) {
	cfg := DefaultDBConfig()
	cfg.DataDir = t.TempDir()
	db, err := OpenDatabase(cfg)
	require.NoError(t, err)

	assert.False(t, db.IsDBshutdown())
	require.NoError(t, db.Shutdown())
	require.NoError(t, db.Shutdown())
	assert.True(t, db.IsDBshutdown())
}
