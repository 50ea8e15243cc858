package main

import (
	"fmt"
	"log"

	"github.com/go-while/go-advice/internal/database"
)

// runMaintenance executes the one shot flags. done reports that one ran and
// the process should exit instead of serving.
func runMaintenance(db *database.Database) (done bool, err error) {
	if cleanupSessions {
		done = true
		n, err := db.CleanupExpiredSessions()
		if err != nil {
			return done, fmt.Errorf("cleanup sessions: %w", err)
		}
		log.Printf("[WEB]: removed %d expired sessions", n)
	}

	if pruneKeywords > 0 {
		done = true
		n, err := db.PruneKeyWords(pruneKeywords)
		if err != nil {
			return done, fmt.Errorf("prune keywords: %w", err)
		}
		log.Printf("[WEB]: pruned %d keywords unused for %s", n, pruneKeywords)
	}

	if topKeywords > 0 {
		done = true
		if err := printTopKeywords(db, topKeywords); err != nil {
			return done, err
		}
	}
	return done, nil
}

func printTopKeywords(db *database.Database, limit int) error {
	keywords, err := db.GetTopKeyWords(limit)
	if err != nil {
		return fmt.Errorf("top keywords: %w", err)
	}
	if len(keywords) == 0 {
		fmt.Println("No keywords found")
		return nil
	}
	fmt.Printf("%-4s %-30s %s\n", "#", "Keyword", "Posts")
	for i, kw := range keywords {
		fmt.Printf("%-4d %-30s %d\n", i+1, kw.Word, kw.PostCount)
	}
	return nil
}
