package web

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-advice/internal/database"
	"github.com/go-while/go-advice/internal/models"
)

// AnswerFormPageData represents data for edit_answer.html
type AnswerFormPageData struct {
	TemplateData
	Error  string
	Answer *models.Answer
	Form   AnswerForm
}

// editAnswerPage displays the answer edit form
func (s *WebServer) editAnswerPage(c *gin.Context) {
	answer, ok := s.loadOwnedAnswer(c, s.getWebSession(c))
	if !ok {
		return
	}
	s.renderTemplate(c, "edit_answer.html", AnswerFormPageData{
		TemplateData: s.getBaseTemplateData(c, "Редагувати відповідь"),
		Answer:       answer,
		Form:         AnswerForm{Text: answer.Text},
	})
}

// editAnswerSubmit saves the answer and returns to its post
func (s *WebServer) editAnswerSubmit(c *gin.Context) {
	answer, ok := s.loadOwnedAnswer(c, s.getWebSession(c))
	if !ok {
		return
	}

	var form AnswerForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderTemplateStatus(c, http.StatusBadRequest, "edit_answer.html", AnswerFormPageData{
			TemplateData: s.getBaseTemplateData(c, "Редагувати відповідь"),
			Error:        msgInvalidForm,
			Answer:       answer,
			Form:         form,
		})
		return
	}

	if err := s.DB.UpdateAnswer(answer.ID, strings.TrimSpace(form.Text)); err != nil {
		s.renderDBError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, postURL(answer.PostID))
}

// deleteAnswer removes the answer and returns to the referer
func (s *WebServer) deleteAnswer(c *gin.Context) {
	answer, ok := s.loadOwnedAnswer(c, s.getWebSession(c))
	if !ok {
		return
	}
	if err := s.DB.DeleteAnswer(answer.ID); err != nil {
		s.renderDBError(c, err)
		return
	}
	redirectBack(c, postURL(answer.PostID))
}

func (s *WebServer) increaseRating(c *gin.Context) {
	s.vote(c, models.VoteUp)
}

func (s *WebServer) decreaseRating(c *gin.Context) {
	s.vote(c, models.VoteDown)
}

// vote applies the current user's vote and returns to the referer
func (s *WebServer) vote(c *gin.Context, dir models.VoteDirection) {
	session := s.getWebSession(c)
	answerID, ok := s.parseIDParam(c)
	if !ok {
		return
	}

	outcome, err := s.DB.ApplyVote(answerID, session.UserID, dir)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.renderError(c, http.StatusNotFound, "Відповідь не знайдено", c.Param("id"))
			return
		}
		s.renderDBError(c, err)
		return
	}
	if s.Config.Debug {
		log.Printf("[WEB]: user %d vote %+d on answer %d: %s", session.UserID, int(dir), answerID, outcome)
	}
	redirectBack(c, "/")
}
