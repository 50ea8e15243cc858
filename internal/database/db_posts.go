package database

import (
	"fmt"

	"github.com/go-while/go-advice/internal/models"
)

const postColumns = `p.id, p.title, p.question, p.author_id, u.username, p.is_closed,
	(SELECT COUNT(*) FROM answers a WHERE a.post_id = p.id), p.created_at, p.updated_at`

const postFrom = ` FROM posts p JOIN users u ON u.id = p.author_id`

func scanPost(row rowScanner) (*models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.Title, &p.Question, &p.AuthorID, &p.AuthorName, &p.IsClosed,
		&p.AnswerCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (db *Database) queryPosts(query string, args ...interface{}) ([]*models.Post, error) {
	rows, err := retryableQuery(db.mainDB, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

const query_InsertPost = `INSERT INTO posts (title, question, author_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`

// InsertPost stores a new post and sets p.ID
func (db *Database) InsertPost(p *models.Post) error {
	ts := now()
	res, err := retryableExec(db.mainDB, query_InsertPost, p.Title, p.Question, p.AuthorID, ts, ts)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	p.CreatedAt = ts
	p.UpdatedAt = ts
	return nil
}

const query_GetPostByID = `SELECT ` + postColumns + postFrom + ` WHERE p.id = ?`

// GetPostByID returns the post with author name and answer count, or ErrNotFound
func (db *Database) GetPostByID(id int64) (*models.Post, error) {
	var post *models.Post
	err := withRetry("queryrow", query_GetPostByID, func() error {
		var err error
		post, err = scanPost(db.mainDB.QueryRow(query_GetPostByID, id))
		return err
	})
	if err != nil {
		return nil, notFound(err)
	}
	return post, nil
}

const query_GetPosts = `SELECT ` + postColumns + postFrom + ` ORDER BY p.id DESC LIMIT ? OFFSET ?`

// GetPosts returns one page of all posts, newest first
func (db *Database) GetPosts(limit, offset int) ([]*models.Post, error) {
	return db.queryPosts(query_GetPosts, limit, offset)
}

const query_CountPosts = `SELECT COUNT(*) FROM posts`

// CountPosts returns the total number of posts
func (db *Database) CountPosts() (int, error) {
	var n int
	err := retryableQueryRowScan(db.mainDB, query_CountPosts, nil, &n)
	return n, err
}

const query_GetPostsByAuthor = `SELECT ` + postColumns + postFrom + ` WHERE p.author_id = ? ORDER BY p.id DESC LIMIT ? OFFSET ?`

// GetPostsByAuthor returns one page of a user's posts, newest first
func (db *Database) GetPostsByAuthor(authorID int64, limit, offset int) ([]*models.Post, error) {
	return db.queryPosts(query_GetPostsByAuthor, authorID, limit, offset)
}

const query_CountPostsByAuthor = `SELECT COUNT(*) FROM posts WHERE author_id = ?`

// CountPostsByAuthor returns how many posts a user has written
func (db *Database) CountPostsByAuthor(authorID int64) (int, error) {
	var n int
	err := retryableQueryRowScan(db.mainDB, query_CountPostsByAuthor, []interface{}{authorID}, &n)
	return n, err
}

const query_UpdatePost = `UPDATE posts SET title = ?, question = ?, updated_at = ? WHERE id = ?`

// UpdatePost changes title and question
func (db *Database) UpdatePost(postID int64, title, question string) error {
	return db.execOne(query_UpdatePost, title, question, now(), postID)
}

const query_DeletePost = `DELETE FROM posts WHERE id = ?`

// DeletePost removes a post with its answers, votes and keyword links
func (db *Database) DeletePost(postID int64) error {
	return db.execOne(query_DeletePost, postID)
}

const query_TogglePostClosed = `UPDATE posts SET is_closed = 1 - is_closed, updated_at = ? WHERE id = ? RETURNING is_closed`

// TogglePostClosed flips is_closed and returns the new value
func (db *Database) TogglePostClosed(postID int64) (bool, error) {
	var closed bool
	err := retryableQueryRowScan(db.mainDB, query_TogglePostClosed, []interface{}{now(), postID}, &closed)
	if err != nil {
		return false, notFound(err)
	}
	return closed, nil
}

const query_FindPostsContaining = `SELECT ` + postColumns + postFrom + `
	WHERE instr(fold(p.title), ?) > 0 OR instr(fold(p.question), ?) > 0
	ORDER BY p.id DESC`

// FindPostsContaining returns posts whose title or question contains word.
// word must already be case folded; the columns are folded by the fold() SQL function.
func (db *Database) FindPostsContaining(word string) ([]*models.Post, error) {
	if word == "" {
		return nil, nil
	}
	return db.queryPosts(query_FindPostsContaining, word, word)
}
