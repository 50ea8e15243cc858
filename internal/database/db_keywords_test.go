package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyWords(t *testing.T) {
	db := openTestDB(t)
	alice := mustUser(t, db, "alice")
	p1 := mustPost(t, db, alice, "golang", "q")
	p2 := mustPost(t, db, alice, "golang sqlite", "q")

	kw, err := db.GetOrCreateKeyWord("golang")
	require.NoError(t, err)
	again, err := db.GetOrCreateKeyWord("golang")
	require.NoError(t, err)
	assert.Equal(t, kw.ID, again.ID)

	require.NoError(t, db.LinkKeyWordPosts(kw.ID, []int64{p2.ID, p1.ID}))
	require.NoError(t, db.LinkKeyWordPosts(kw.ID, []int64{p1.ID}))
	require.NoError(t, db.LinkKeyWordPosts(kw.ID, nil))

	ids, err := db.GetKeyWordPostIDs(kw.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{p1.ID, p2.ID}, ids)

	sq, err := db.GetOrCreateKeyWord("sqlite")
	require.NoError(t, err)
	require.NoError(t, db.LinkKeyWordPosts(sq.ID, []int64{p2.ID}))

	_, err = db.GetOrCreateKeyWord("unused")
	require.NoError(t, err)

	top, err := db.GetTopKeyWords(10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "golang", top[0].Word)
	assert.Equal(t, 2, top[0].PostCount)
	assert.Equal(t, "sqlite", top[1].Word)

	_, err = db.GetOrCreateKeyWord("")
	assert.Error(t, err)
}

func TestPruneKeyWords(t *testing.T) {
	db := openTestDB(t)
	alice := mustUser(t, db, "alice")
	p := mustPost(t, db, alice, "golang", "q")

	linked, err := db.GetOrCreateKeyWord("golang")
	require.NoError(t, err)
	require.NoError(t, db.LinkKeyWordPosts(linked.ID, []int64{p.ID}))
	_, err = db.GetOrCreateKeyWord("orphan")
	require.NoError(t, err)

	// too young to prune
	n, err := db.PruneKeyWords(time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = db.PruneKeyWords(-time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// deleting the post orphans the keyword
	require.NoError(t, db.DeletePost(p.ID))
	n, err = db.PruneKeyWords(-time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
