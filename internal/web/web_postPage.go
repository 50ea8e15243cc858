package web

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-advice/internal/models"
)

// PostFormPageData is used by add_post.html and edit.html
type PostFormPageData struct {
	TemplateData
	Error    string
	Post     *models.Post // nil when adding
	Form     PostForm
	FormPath string
}

// PostDetailPageData represents data for the post detail page
type PostDetailPageData struct {
	TemplateData
	Post     *models.Post
	Answers  []*models.Answer
	IsAuthor bool
}

func postURL(id int64) string {
	return "/post/" + strconv.FormatInt(id, 10)
}

// addPostPage displays the new post form
func (s *WebServer) addPostPage(c *gin.Context) {
	s.renderTemplate(c, "add_post.html", PostFormPageData{
		TemplateData: s.getBaseTemplateData(c, "Нове питання"),
		FormPath:     "/add_post",
	})
}

// addPostSubmit creates a post authored by the current user
func (s *WebServer) addPostSubmit(c *gin.Context) {
	session := s.getWebSession(c)

	var form PostForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderTemplateStatus(c, http.StatusBadRequest, "add_post.html", PostFormPageData{
			TemplateData: s.getBaseTemplateData(c, "Нове питання"),
			Error:        msgInvalidForm,
			Form:         form,
			FormPath:     "/add_post",
		})
		return
	}

	post := &models.Post{
		Title:    strings.TrimSpace(form.Title),
		Question: strings.TrimSpace(form.Question),
		AuthorID: session.UserID,
	}
	if err := s.DB.InsertPost(post); err != nil {
		s.renderDBError(c, err)
		return
	}
	log.Printf("[WEB]: user %d added post %d", session.UserID, post.ID)
	c.Redirect(http.StatusSeeOther, "/")
}

// postDetailPage shows a post, its answers and the answer form
func (s *WebServer) postDetailPage(c *gin.Context) {
	post, ok := s.loadPost(c)
	if !ok {
		return
	}

	var viewerID int64
	session := s.getWebSession(c)
	if session != nil {
		viewerID = session.UserID
	}

	answers, err := s.DB.GetAnswersByPost(post.ID, viewerID)
	if err != nil {
		s.renderDBError(c, err)
		return
	}

	s.renderTemplate(c, "detail.html", PostDetailPageData{
		TemplateData: s.getBaseTemplateData(c, post.Title),
		Post:         post,
		Answers:      answers,
		IsAuthor:     session != nil && session.UserID == post.AuthorID,
	})
}

// addAnswerSubmit adds an answer to the post; an invalid form goes back to the referer
func (s *WebServer) addAnswerSubmit(c *gin.Context) {
	session := s.getWebSession(c)
	post, ok := s.loadPost(c)
	if !ok {
		return
	}

	var form AnswerForm
	if err := c.ShouldBind(&form); err != nil {
		redirectBack(c, postURL(post.ID))
		return
	}

	answer := &models.Answer{
		PostID:   post.ID,
		AuthorID: session.UserID,
		Text:     strings.TrimSpace(form.Text),
	}
	if err := s.DB.InsertAnswer(answer); err != nil {
		s.renderDBError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, postURL(post.ID))
}

// editPostPage displays the edit form prefilled with the post
func (s *WebServer) editPostPage(c *gin.Context) {
	post, ok := s.loadOwnedPost(c, s.getWebSession(c))
	if !ok {
		return
	}
	s.renderTemplate(c, "edit.html", PostFormPageData{
		TemplateData: s.getBaseTemplateData(c, "Редагувати питання"),
		Post:         post,
		Form:         PostForm{Title: post.Title, Question: post.Question},
		FormPath:     postURL(post.ID) + "/edit",
	})
}

// editPostSubmit saves the edited post and returns to its detail page
func (s *WebServer) editPostSubmit(c *gin.Context) {
	post, ok := s.loadOwnedPost(c, s.getWebSession(c))
	if !ok {
		return
	}

	var form PostForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderTemplateStatus(c, http.StatusBadRequest, "edit.html", PostFormPageData{
			TemplateData: s.getBaseTemplateData(c, "Редагувати питання"),
			Error:        msgInvalidForm,
			Post:         post,
			Form:         form,
			FormPath:     postURL(post.ID) + "/edit",
		})
		return
	}

	if err := s.DB.UpdatePost(post.ID, strings.TrimSpace(form.Title), strings.TrimSpace(form.Question)); err != nil {
		s.renderDBError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, postURL(post.ID))
}

// deletePost removes the post and goes to the main page
func (s *WebServer) deletePost(c *gin.Context) {
	session := s.getWebSession(c)
	post, ok := s.loadOwnedPost(c, session)
	if !ok {
		return
	}
	if err := s.DB.DeletePost(post.ID); err != nil {
		s.renderDBError(c, err)
		return
	}
	log.Printf("[WEB]: user %d deleted post %d", session.UserID, post.ID)
	session.SetSuccess(msgPostDeleted)
	c.Redirect(http.StatusSeeOther, "/")
}

// changePostStatus toggles is_closed and returns to the referer
func (s *WebServer) changePostStatus(c *gin.Context) {
	post, ok := s.loadOwnedPost(c, s.getWebSession(c))
	if !ok {
		return
	}
	if _, err := s.DB.TogglePostClosed(post.ID); err != nil {
		s.renderDBError(c, err)
		return
	}
	redirectBack(c, postURL(post.ID))
}
