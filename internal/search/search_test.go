package search

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-while/go-advice/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	posts    []*models.Post
	keywords map[string]*models.KeyWord
	links    map[int64][]int64
	queries  []string
	failOn   string
}

func newFakeStore(posts ...*models.Post) *fakeStore {
	return &fakeStore{
		posts:    posts,
		keywords: make(map[string]*models.KeyWord),
		links:    make(map[int64][]int64),
	}
}

func (f *fakeStore) GetOrCreateKeyWord(word string) (*models.KeyWord, error) {
	if kw, ok := f.keywords[word]; ok {
		return kw, nil
	}
	kw := &models.KeyWord{ID: int64(len(f.keywords) + 1), Word: word}
	f.keywords[word] = kw
	return kw, nil
}

func (f *fakeStore) FindPostsContaining(word string) ([]*models.Post, error) {
	f.queries = append(f.queries, word)
	if word == f.failOn {
		return nil, errors.New("boom")
	}
	var out []*models.Post
	for _, p := range f.posts {
		if strings.Contains(Fold(p.Title), word) || strings.Contains(Fold(p.Question), word) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) LinkKeyWordPosts(keywordID int64, postIDs []int64) error {
	f.links[keywordID] = append(f.links[keywordID], postIDs...)
	return nil
}

func ids(posts []*models.Post) []int64 {
	out := make([]int64, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func testPosts() []*models.Post {
	return []*models.Post{
		{ID: 1, Title: "Як вивчити Golang?", Question: "Порадьте книги"},
		{ID: 2, Title: "Кіт не їсть", Question: "Мій кіт не хоче їсти корм"},
		{ID: 3, Title: "Golang and SQLite", Question: "Which driver should I use with cgo?"},
		{ID: 4, Title: "Привіт усім", Question: "Перший пост"},
	}
}

func TestSearchMatchesTitleAndQuestion(t *testing.T) {
	store := newFakeStore(testPosts()...)
	s := NewSearcher(store, NewKeyWordFilter(3, nil))

	got, err := s.Search("golang корм")
	require.NoError(t, err)
	if diff := cmp.Diff([]int64{1, 3, 2}, ids(got)); diff != "" {
		t.Fatalf("unexpected results (-want +got):\n%s", diff)
	}
}

func TestSearchDeduplicatesAcrossWords(t *testing.T) {
	store := newFakeStore(testPosts()...)
	s := NewSearcher(store, NewKeyWordFilter(3, nil))

	got, err := s.Search("GOLANG, sqlite!")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(got))

	// both keywords link post 3
	assert.Equal(t, []int64{1, 3}, store.links[store.keywords["golang"].ID])
	assert.Equal(t, []int64{3}, store.links[store.keywords["sqlite"].ID])
}

func TestSearchFallsBackToOtherLayout(t *testing.T) {
	store := newFakeStore(testPosts()...)
	s := NewSearcher(store, NewKeyWordFilter(3, nil))

	// "ghbdsn" is "привіт" typed on a QWERTY layout
	got, err := s.Search("ghbdsn")
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, ids(got))
	assert.Equal(t, []string{"ghbdsn", "привіт"}, store.queries)

	// the keyword row is stored under the word the user typed
	_, ok := store.keywords["ghbdsn"]
	assert.True(t, ok)
}

func TestSearchCreatesKeywordEvenWithoutHits(t *testing.T) {
	store := newFakeStore(testPosts()...)
	s := NewSearcher(store, NewKeyWordFilter(3, nil))

	got, err := s.Search("кавоварка")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Contains(t, store.keywords, "кавоварка")
	assert.Empty(t, store.links)
}

func TestSearchSkipsNonKeywords(t *testing.T) {
	store := newFakeStore(testPosts()...)
	s := NewSearcher(store, NewKeyWordFilter(3, []string{"пост"}))

	got, err := s.Search("та і ... 42 пост")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, store.keywords)
	assert.Empty(t, store.queries)
}

func TestSearchPropagatesStoreErrors(t *testing.T) {
	store := newFakeStore(testPosts()...)
	store.failOn = "golang"
	s := NewSearcher(store, nil)

	_, err := s.Search("golang")
	assert.Error(t, err)
}

func TestTerms(t *testing.T) {
	s := NewSearcher(newFakeStore(), NewKeyWordFilter(3, nil))
	assert.Equal(t, []string{"ім'я", "golang"}, s.Terms("  Ім’я, golang GoLang the  "))
	assert.Nil(t, s.Terms(""))
}
