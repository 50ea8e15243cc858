package database

import (
	"fmt"

	"github.com/go-while/go-advice/internal/models"
)

const answerColumns = `a.id, a.post_id, a.author_id, u.username, a.text, a.rating, a.created_at, a.updated_at`

func scanAnswer(row rowScanner, extra ...interface{}) (*models.Answer, error) {
	var a models.Answer
	dest := []interface{}{&a.ID, &a.PostID, &a.AuthorID, &a.AuthorName, &a.Text, &a.Rating, &a.CreatedAt, &a.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &a, nil
}

const query_InsertAnswer = `INSERT INTO answers (post_id, author_id, text, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`

// InsertAnswer stores a new answer and sets a.ID
func (db *Database) InsertAnswer(a *models.Answer) error {
	ts := now()
	res, err := retryableExec(db.mainDB, query_InsertAnswer, a.PostID, a.AuthorID, a.Text, ts, ts)
	if err != nil {
		return fmt.Errorf("failed to insert answer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = id
	a.CreatedAt = ts
	a.UpdatedAt = ts
	return nil
}

const query_GetAnswerByID = `SELECT ` + answerColumns + ` FROM answers a JOIN users u ON u.id = a.author_id WHERE a.id = ?`

// GetAnswerByID returns the answer or ErrNotFound
func (db *Database) GetAnswerByID(id int64) (*models.Answer, error) {
	var answer *models.Answer
	err := withRetry("queryrow", query_GetAnswerByID, func() error {
		var err error
		answer, err = scanAnswer(db.mainDB.QueryRow(query_GetAnswerByID, id))
		return err
	})
	if err != nil {
		return nil, notFound(err)
	}
	return answer, nil
}

const query_GetAnswersByPost = `SELECT ` + answerColumns + `, COALESCE(v.direction, 0)
	FROM answers a
	JOIN users u ON u.id = a.author_id
	LEFT JOIN answer_votes v ON v.answer_id = a.id AND v.user_id = ?
	WHERE a.post_id = ?
	ORDER BY a.id DESC`

// GetAnswersByPost returns the answers of a post, newest first.
// MyVote is filled for viewerID; pass 0 for anonymous viewers.
func (db *Database) GetAnswersByPost(postID, viewerID int64) ([]*models.Answer, error) {
	rows, err := retryableQuery(db.mainDB, query_GetAnswersByPost, viewerID, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []*models.Answer
	for rows.Next() {
		var vote int
		a, err := scanAnswer(rows, &vote)
		if err != nil {
			return nil, err
		}
		a.MyVote = models.VoteDirection(vote)
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

const query_UpdateAnswer = `UPDATE answers SET text = ?, updated_at = ? WHERE id = ?`

// UpdateAnswer replaces the answer text
func (db *Database) UpdateAnswer(answerID int64, text string) error {
	return db.execOne(query_UpdateAnswer, text, now(), answerID)
}

const query_DeleteAnswer = `DELETE FROM answers WHERE id = ?`

// DeleteAnswer removes an answer and its votes
func (db *Database) DeleteAnswer(answerID int64) error {
	return db.execOne(query_DeleteAnswer, answerID)
}

const query_CountAnswersByAuthor = `SELECT COUNT(*) FROM answers WHERE author_id = ?`

// CountAnswersByAuthor returns how many answers a user has written
func (db *Database) CountAnswersByAuthor(authorID int64) (int, error) {
	var n int
	err := retryableQueryRowScan(db.mainDB, query_CountAnswersByAuthor, []interface{}{authorID}, &n)
	return n, err
}
