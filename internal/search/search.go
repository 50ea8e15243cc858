package search

import (
	"fmt"
	"log"
	"strings"

	"github.com/go-while/go-advice/internal/models"
)

// Store is the persistence the searcher needs.
// *database.Database implements it.
type Store interface {
	// GetOrCreateKeyWord returns the keyword row for a normalized word, creating it if needed
	GetOrCreateKeyWord(word string) (*models.KeyWord, error)
	// FindPostsContaining returns posts whose title or question contains the folded word
	FindPostsContaining(word string) ([]*models.Post, error)
	// LinkKeyWordPosts records that the keyword matched these posts
	LinkKeyWordPosts(keywordID int64, postIDs []int64) error
}

// Searcher runs keyword searches against a Store
type Searcher struct {
	store  Store
	filter *KeyWordFilter
	Debug  bool
}

// NewSearcher creates a searcher
func NewSearcher(store Store, filter *KeyWordFilter) *Searcher {
	if filter == nil {
		filter = NewKeyWordFilter(1, nil)
	}
	return &Searcher{store: store, filter: filter}
}

// Terms returns the normalized keywords of a query in query order, without duplicates
func (s *Searcher) Terms(query string) []string {
	var terms []string
	seen := make(map[string]bool)
	for _, raw := range strings.Fields(query) {
		word := Normalize(raw)
		if seen[word] || !s.filter.IsKeyWord(word) {
			continue
		}
		seen[word] = true
		terms = append(terms, word)
	}
	return terms
}

// Search returns the posts matching any keyword of the query.
// Posts keep the order in which they were first found.
func (s *Searcher) Search(query string) ([]*models.Post, error) {
	var results []*models.Post
	found := make(map[int64]bool)

	for _, word := range s.Terms(query) {
		keyword, err := s.store.GetOrCreateKeyWord(word)
		if err != nil {
			return nil, fmt.Errorf("keyword %q: %w", word, err)
		}

		posts, err := s.store.FindPostsContaining(word)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", word, err)
		}
		if len(posts) == 0 {
			translated := Fold(Translate(word))
			if translated != word {
				posts, err = s.store.FindPostsContaining(translated)
				if err != nil {
					return nil, fmt.Errorf("search %q: %w", translated, err)
				}
				if s.Debug {
					log.Printf("[SEARCH]: %q had no hits, %q found %d", word, translated, len(posts))
				}
			}
		}
		if len(posts) == 0 {
			continue
		}

		ids := make([]int64, 0, len(posts))
		for _, p := range posts {
			ids = append(ids, p.ID)
			if !found[p.ID] {
				found[p.ID] = true
				results = append(results, p)
			}
		}
		if err := s.store.LinkKeyWordPosts(keyword.ID, ids); err != nil {
			return nil, fmt.Errorf("link keyword %q: %w", word, err)
		}
	}
	return results, nil
}
