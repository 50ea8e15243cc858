// Package models contains the data types shared by the database, search and web layers
package models

import (
	"time"
)

// User represents a registered account
type User struct {
	ID               int64      `json:"id" db:"id"`
	Username         string     `json:"username" db:"username"`
	PasswordHash     string     `json:"-" db:"password_hash"`
	Rating           int        `json:"rating" db:"rating"`
	SessionID        string     `json:"-" db:"session_id"`         // Current active session (64 chars)
	LastLoginIP      string     `json:"-" db:"last_login_ip"`      // IP of last login (for logging only)
	SessionExpiresAt *time.Time `json:"-" db:"session_expires_at"` // Session expiration (sliding)
	LoginAttempts    int        `json:"-" db:"login_attempts"`     // Failed login attempts counter
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// Post is a question asked by a user
type Post struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Question    string    `json:"question" db:"question"`
	AuthorID    int64     `json:"author_id" db:"author_id"`
	AuthorName  string    `json:"author" db:"-"` // joined from users
	IsClosed    bool      `json:"is_closed" db:"is_closed"`
	AnswerCount int       `json:"answer_count" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Answer is a reply to a post
type Answer struct {
	ID         int64     `json:"id" db:"id"`
	PostID     int64     `json:"post_id" db:"post_id"`
	AuthorID   int64     `json:"author_id" db:"author_id"`
	AuthorName string    `json:"author" db:"-"`
	Text       string    `json:"text" db:"text"`
	Rating     int       `json:"rating" db:"rating"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`

	// MyVote is the viewing user's vote on this answer, 0 if none
	MyVote VoteDirection `json:"-" db:"-"`
}

// KeyWord is a searched word linked to the posts it matched
type KeyWord struct {
	ID        int64     `json:"id" db:"id"`
	Word      string    `json:"word" db:"word"`
	PostCount int       `json:"post_count" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// VoteDirection is +1 for an upvote and -1 for a downvote
type VoteDirection int

const (
	VoteNone VoteDirection = 0
	VoteUp   VoteDirection = 1
	VoteDown VoteDirection = -1
)

// Opposite returns the other direction
func (d VoteDirection) Opposite() VoteDirection {
	return -d
}

// Valid reports whether d is an actual vote
func (d VoteDirection) Valid() bool {
	return d == VoteUp || d == VoteDown
}

// VoteOutcome describes what ApplyVote did
type VoteOutcome int

const (
	VoteUnchanged VoteOutcome = iota // same direction repeated
	VoteRecorded                     // new vote stored
	VoteCancelled                    // opposite vote removed
)

func (o VoteOutcome) String() string {
	switch o {
	case VoteRecorded:
		return "recorded"
	case VoteCancelled:
		return "cancelled"
	default:
		return "unchanged"
	}
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalCount int         `json:"total_count"`
	TotalPages int         `json:"total_pages"`
	HasNext    bool        `json:"has_next"`
	HasPrev    bool        `json:"has_prev"`
}

// NewPaginatedResponse wraps one page of data
func NewPaginatedResponse(data interface{}, p *PaginationInfo) PaginatedResponse {
	return PaginatedResponse{
		Data:       data,
		Page:       p.CurrentPage,
		PageSize:   p.PageSize,
		TotalCount: p.TotalCount,
		TotalPages: p.TotalPages,
		HasNext:    p.HasNext,
		HasPrev:    p.HasPrev,
	}
}

// PaginationInfo represents pagination information for templates
type PaginationInfo struct {
	CurrentPage int  `json:"current_page"`
	PageSize    int  `json:"page_size"`
	TotalCount  int  `json:"total_count"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
	NextPage    int  `json:"next_page"`
	PrevPage    int  `json:"prev_page"`
}

// NewPaginationInfo creates pagination info
func NewPaginationInfo(page, pageSize, totalCount int) *PaginationInfo {
	totalPages := (totalCount + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	return &PaginationInfo{
		CurrentPage: page,
		PageSize:    pageSize,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
		NextPage:    page + 1,
		PrevPage:    page - 1,
	}
}

// Offset returns the row offset of the current page
func (p *PaginationInfo) Offset() int {
	return (p.CurrentPage - 1) * p.PageSize
}

// InRange reports whether the current page exists; page 1 always does
func (p *PaginationInfo) InRange() bool {
	return p.CurrentPage >= 1 && p.CurrentPage <= p.TotalPages
}
