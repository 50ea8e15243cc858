package web

import (
	"log"
	"time"

	"github.com/go-while/go-advice/internal/config"
	"github.com/go-while/go-advice/internal/scheduler"
)

// KeywordMaxAge is how long a keyword that never matched a post is kept
var KeywordMaxAge = 30 * 24 * time.Hour

// RegisterJobs adds the periodic maintenance jobs to sched
func (s *WebServer) RegisterJobs(sched *scheduler.Scheduler, cfg config.SchedulerConfig) error {
	if err := sched.AddJob("session-cleanup", cfg.SessionCleanup, s.cleanupSessions); err != nil {
		return err
	}
	return sched.AddJob("keyword-prune", cfg.KeywordPrune, s.pruneKeyWords)
}

func (s *WebServer) cleanupSessions() {
	if s.DB.IsDBshutdown() {
		return
	}
	n, err := s.DB.CleanupExpiredSessions()
	if err != nil {
		log.Printf("[WEB]: error cleaning up expired sessions: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[WEB]: session cleanup removed %d expired sessions", n)
	}
}

func (s *WebServer) pruneKeyWords() {
	if s.DB.IsDBshutdown() {
		return
	}
	n, err := s.DB.PruneKeyWords(KeywordMaxAge)
	if err != nil {
		log.Printf("[WEB]: error pruning keywords: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[WEB]: pruned %d unused keywords", n)
	}
}
