package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/go-while/go-advice/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func keywords(words ...string) []*models.KeyWord {
	out := make([]*models.KeyWord, 0, len(words))
	for i, w := range words {
		out = append(out, &models.KeyWord{ID: int64(i + 1), Word: w})
	}
	return out
}

func TestGetSet(t *testing.T) {
	kc := NewKeyWordCache(4, time.Minute)
	defer kc.Stop()

	_, ok := kc.Get(10)
	assert.False(t, ok)

	kc.Set(10, keywords("golang", "sqlite"))
	got, ok := kc.Get(10)
	require.True(t, ok)
	assert.Len(t, got, 2)

	_, ok = kc.Get(5)
	assert.False(t, ok, "limits are cached separately")

	stats := kc.GetStats()
	assert.EqualValues(t, 1, stats["hits"])
	assert.EqualValues(t, 2, stats["misses"])
	assert.Equal(t, 1, stats["entries"])

	kc.Clear()
	assert.Equal(t, 0, kc.Len())
}

func TestExpiry(t *testing.T) {
	kc := NewKeyWordCache(4, 20*time.Millisecond)
	defer kc.Stop()

	kc.Set(10, keywords("golang"))
	time.Sleep(40 * time.Millisecond)
	_, ok := kc.Get(10)
	assert.False(t, ok)
	assert.Equal(t, 0, kc.Len())
}

func TestCleanupRemovesExpired(t *testing.T) {
	kc := NewKeyWordCache(4, 10*time.Millisecond)
	defer kc.Stop()

	kc.Set(1, keywords("a"))
	kc.Set(2, keywords("b"))
	require.Eventually(t, func() bool { return kc.Len() == 0 }, 5*time.Second, 50*time.Millisecond)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	kc := NewKeyWordCache(2, time.Minute)
	defer kc.Stop()

	kc.Set(1, keywords("a"))
	time.Sleep(2 * time.Millisecond)
	kc.Set(2, keywords("b"))
	time.Sleep(2 * time.Millisecond)
	_, ok := kc.Get(1) // 2 is now the oldest
	require.True(t, ok)
	time.Sleep(2 * time.Millisecond)
	kc.Set(3, keywords("c"))

	assert.Equal(t, 2, kc.Len())
	_, ok = kc.Get(2)
	assert.False(t, ok)
	_, ok = kc.Get(1)
	assert.True(t, ok)
}

func TestGetOrLoad(t *testing.T) {
	kc := NewKeyWordCache(4, time.Minute)
	defer kc.Stop()

	calls := 0
	load := func(limit int) ([]*models.KeyWord, error) {
		calls++
		return keywords("golang"), nil
	}
	for i := 0; i < 3; i++ {
		got, err := kc.GetOrLoad(10, load)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 1, calls)

	_, err := kc.GetOrLoad(20, func(int) ([]*models.KeyWord, error) { return nil, errors.New("boom") })
	assert.Error(t, err)
	_, ok := kc.Get(20)
	assert.False(t, ok, "errors are not cached")
}

func TestStopTwice(t *testing.T) {
	kc := NewKeyWordCache(1, time.Minute)
	kc.Stop()
	kc.Stop()
}
