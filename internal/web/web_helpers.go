package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-advice/internal/database"
	"github.com/go-while/go-advice/internal/models"
)

// loadPost loads the post named by :id, rendering 404/500 on failure
func (s *WebServer) loadPost(c *gin.Context) (*models.Post, bool) {
	id, ok := s.parseIDParam(c)
	if !ok {
		return nil, false
	}
	post, err := s.DB.GetPostByID(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.renderError(c, http.StatusNotFound, "Питання не знайдено", c.Param("id"))
		} else {
			s.renderDBError(c, err)
		}
		return nil, false
	}
	return post, true
}

// loadAnswer loads the answer named by :id, rendering 404/500 on failure
func (s *WebServer) loadAnswer(c *gin.Context) (*models.Answer, bool) {
	id, ok := s.parseIDParam(c)
	if !ok {
		return nil, false
	}
	answer, err := s.DB.GetAnswerByID(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.renderError(c, http.StatusNotFound, "Відповідь не знайдено", c.Param("id"))
		} else {
			s.renderDBError(c, err)
		}
		return nil, false
	}
	return answer, true
}

// loadOwnedPost is loadPost plus a 403 for anyone but the author
func (s *WebServer) loadOwnedPost(c *gin.Context, session *SessionData) (*models.Post, bool) {
	post, ok := s.loadPost(c)
	if !ok {
		return nil, false
	}
	if post.AuthorID != session.UserID {
		s.renderError(c, http.StatusForbidden, "Доступ заборонено", "not the author")
		return nil, false
	}
	return post, true
}

// loadOwnedAnswer is loadAnswer plus a 403 for anyone but the author
func (s *WebServer) loadOwnedAnswer(c *gin.Context, session *SessionData) (*models.Answer, bool) {
	answer, ok := s.loadAnswer(c)
	if !ok {
		return nil, false
	}
	if answer.AuthorID != session.UserID {
		s.renderError(c, http.StatusForbidden, "Доступ заборонено", "not the author")
		return nil, false
	}
	return answer, true
}
