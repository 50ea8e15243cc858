package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-while/go-advice/internal/models"
)

const query_InsertKeyWord = `INSERT INTO keywords (word, created_at) VALUES (?, ?) ON CONFLICT(word) DO NOTHING`
const query_GetKeyWord = `SELECT k.id, k.word, k.created_at,
	(SELECT COUNT(*) FROM keyword_posts kp WHERE kp.keyword_id = k.id)
	FROM keywords k WHERE k.word = ?`

// GetOrCreateKeyWord returns the keyword row for word, creating it if needed
func (db *Database) GetOrCreateKeyWord(word string) (*models.KeyWord, error) {
	if word == "" {
		return nil, fmt.Errorf("empty keyword")
	}
	if _, err := retryableExec(db.mainDB, query_InsertKeyWord, word, now()); err != nil {
		return nil, fmt.Errorf("failed to insert keyword: %w", err)
	}
	var kw models.KeyWord
	err := retryableQueryRowScan(db.mainDB, query_GetKeyWord, []interface{}{word},
		&kw.ID, &kw.Word, &kw.CreatedAt, &kw.PostCount)
	if err != nil {
		return nil, notFound(err)
	}
	return &kw, nil
}

const query_LinkKeyWordPost = `INSERT OR IGNORE INTO keyword_posts (keyword_id, post_id) VALUES (?, ?)`

// LinkKeyWordPosts links a keyword to posts, existing links are kept
func (db *Database) LinkKeyWordPosts(keywordID int64, postIDs []int64) error {
	if len(postIDs) == 0 {
		return nil
	}
	return retryableTransactionExec(db.mainDB, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(query_LinkKeyWordPost)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, postID := range postIDs {
			if _, err := stmt.Exec(keywordID, postID); err != nil {
				return fmt.Errorf("link keyword %d to post %d: %w", keywordID, postID, err)
			}
		}
		return nil
	})
}

const query_GetTopKeyWords = `SELECT k.id, k.word, k.created_at, COUNT(kp.post_id) AS n
	FROM keywords k
	JOIN keyword_posts kp ON kp.keyword_id = k.id
	GROUP BY k.id
	ORDER BY n DESC, k.word ASC
	LIMIT ?`

// GetTopKeyWords returns the keywords linked to the most posts
func (db *Database) GetTopKeyWords(limit int) ([]*models.KeyWord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := retryableQuery(db.mainDB, query_GetTopKeyWords, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.KeyWord
	for rows.Next() {
		var kw models.KeyWord
		if err := rows.Scan(&kw.ID, &kw.Word, &kw.CreatedAt, &kw.PostCount); err != nil {
			return nil, err
		}
		out = append(out, &kw)
	}
	return out, rows.Err()
}

const query_GetKeyWordPostIDs = `SELECT post_id FROM keyword_posts WHERE keyword_id = ? ORDER BY post_id`

// GetKeyWordPostIDs returns the ids of the posts linked to a keyword
func (db *Database) GetKeyWordPostIDs(keywordID int64) ([]int64, error) {
	rows, err := retryableQuery(db.mainDB, query_GetKeyWordPostIDs, keywordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const query_PruneKeyWords = `DELETE FROM keywords
	WHERE created_at < ?
	AND NOT EXISTS (SELECT 1 FROM keyword_posts kp WHERE kp.keyword_id = keywords.id)`

// PruneKeyWords deletes keywords older than olderThan that are linked to no post
func (db *Database) PruneKeyWords(olderThan time.Duration) (int64, error) {
	res, err := retryableExec(db.mainDB, query_PruneKeyWords, now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
