package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-while/go-advice/internal/models"
)

// ErrInvalidVote is returned for a direction other than VoteUp or VoteDown
var ErrInvalidVote = errors.New("invalid vote direction")

const (
	query_VoteAnswerAuthor = `SELECT author_id FROM answers WHERE id = ?`
	query_VoteGet          = `SELECT direction FROM answer_votes WHERE answer_id = ? AND user_id = ?`
	query_VoteDelete       = `DELETE FROM answer_votes WHERE answer_id = ? AND user_id = ?`
	query_VoteInsert       = `INSERT INTO answer_votes (answer_id, user_id, direction, created_at) VALUES (?, ?, ?, ?)`
	query_VoteAdjustAnswer = `UPDATE answers SET rating = rating + ? WHERE id = ?`
	query_VoteAdjustAuthor = `UPDATE users SET rating = rating + ? WHERE id = ?`
)

// ApplyVote applies voterID's vote in direction dir to an answer:
// repeating the current vote does nothing, voting against the current vote
// withdraws it, anything else records it. Unless nothing changed, the answer
// and its author both move by dir. Everything runs in one transaction.
func (db *Database) ApplyVote(answerID, voterID int64, dir models.VoteDirection) (models.VoteOutcome, error) {
	if !dir.Valid() {
		return models.VoteUnchanged, ErrInvalidVote
	}

	var outcome models.VoteOutcome
	err := retryableTransactionExec(db.mainDB, func(tx *sql.Tx) error {
		outcome = models.VoteUnchanged

		var authorID int64
		if err := tx.QueryRow(query_VoteAnswerAuthor, answerID).Scan(&authorID); err != nil {
			return notFound(err)
		}

		current := models.VoteNone
		var d int
		switch err := tx.QueryRow(query_VoteGet, answerID, voterID).Scan(&d); {
		case err == nil:
			current = models.VoteDirection(d)
		case errors.Is(err, sql.ErrNoRows):
		default:
			return err
		}

		switch current {
		case dir:
			return nil
		case dir.Opposite():
			if _, err := tx.Exec(query_VoteDelete, answerID, voterID); err != nil {
				return fmt.Errorf("delete vote: %w", err)
			}
			outcome = models.VoteCancelled
		default:
			if _, err := tx.Exec(query_VoteInsert, answerID, voterID, int(dir), now()); err != nil {
				return fmt.Errorf("insert vote: %w", err)
			}
			outcome = models.VoteRecorded
		}

		if _, err := tx.Exec(query_VoteAdjustAnswer, int(dir), answerID); err != nil {
			return fmt.Errorf("adjust answer rating: %w", err)
		}
		if _, err := tx.Exec(query_VoteAdjustAuthor, int(dir), authorID); err != nil {
			return fmt.Errorf("adjust author rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.VoteUnchanged, err
	}
	return outcome, nil
}

// GetVote returns the user's current vote on an answer, VoteNone if there is none
func (db *Database) GetVote(answerID, userID int64) (models.VoteDirection, error) {
	var d int
	err := retryableQueryRowScan(db.mainDB, query_VoteGet, []interface{}{answerID, userID}, &d)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.VoteNone, nil
		}
		return models.VoteNone, err
	}
	return models.VoteDirection(d), nil
}
