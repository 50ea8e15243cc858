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

// ProfilePageData represents data for profile page
type ProfilePageData struct {
	TemplateData
	Profile     *models.User
	PostCount   int
	AnswerCount int
}

// profilePage displays the user profile
func (s *WebServer) profilePage(c *gin.Context) {
	session := s.getWebSession(c)
	user, err := s.DB.GetUserByID(session.UserID)
	if err != nil {
		s.renderDBError(c, err)
		return
	}
	posts, err := s.DB.CountPostsByAuthor(user.ID)
	if err != nil {
		s.renderDBError(c, err)
		return
	}
	answers, err := s.DB.CountAnswersByAuthor(user.ID)
	if err != nil {
		s.renderDBError(c, err)
		return
	}
	s.renderTemplate(c, "profile.html", ProfilePageData{
		TemplateData: s.getBaseTemplateData(c, "Профіль"),
		Profile:      user,
		PostCount:    posts,
		AnswerCount:  answers,
	})
}

// renderAccountForm renders one of the account settings forms
func (s *WebServer) renderAccountForm(c *gin.Context, status int, page, title string, messages ...string) {
	s.renderTemplateStatus(c, status, page, AccountPageData{
		TemplateData: s.getBaseTemplateData(c, title),
		Messages:     messages,
	})
}

// currentUser loads the full account row of the logged in user
func (s *WebServer) currentUser(c *gin.Context) (*models.User, bool) {
	session := s.getWebSession(c)
	user, err := s.DB.GetUserByID(session.UserID)
	if err != nil {
		s.renderDBError(c, err)
		return nil, false
	}
	return user, true
}

func (s *WebServer) changePasswordPage(c *gin.Context) {
	s.renderAccountForm(c, http.StatusOK, "change_password.html", "Зміна пароля")
}

// changePasswordSubmit checks the old password and stores the new one
func (s *WebServer) changePasswordSubmit(c *gin.Context) {
	const page, title = "change_password.html", "Зміна пароля"

	var form ChangePasswordForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderAccountForm(c, http.StatusBadRequest, page, title, msgInvalidForm)
		return
	}
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	var messages []string
	if !checkPassword(form.Password, user.PasswordHash) {
		messages = append(messages, msgWrongPassword)
	}
	if form.Password1 != form.Password2 {
		messages = append(messages, msgPasswordsMismatch)
	} else if !ValidPassword(form.Password1) {
		messages = append(messages, msgPasswordRules)
	}
	if len(messages) > 0 {
		s.renderAccountForm(c, http.StatusBadRequest, page, title, messages...)
		return
	}

	hash, err := hashPassword(form.Password1)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, "Помилка", err.Error())
		return
	}
	if err := s.DB.UpdateUserPassword(user.ID, hash); err != nil {
		s.renderDBError(c, err)
		return
	}

	// rotate the session after a credential change
	if err := s.loginUser(c, user); err != nil {
		s.renderDBError(c, err)
		return
	}
	s.getWebSession(c).SetSuccess(msgPasswordChanged)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *WebServer) editUsernamePage(c *gin.Context) {
	s.renderAccountForm(c, http.StatusOK, "edit_username.html", "Зміна імені")
}

// editUsernameSubmit renames the account if the new name is free
func (s *WebServer) editUsernameSubmit(c *gin.Context) {
	const page, title = "edit_username.html", "Зміна імені"

	var form EditUsernameForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderAccountForm(c, http.StatusBadRequest, page, title, msgInvalidForm)
		return
	}
	username := strings.TrimSpace(form.Username)
	if username == "" {
		s.renderAccountForm(c, http.StatusBadRequest, page, title, msgUsernameTaken)
		return
	}
	if !ValidUsername(username) {
		s.renderAccountForm(c, http.StatusBadRequest, page, title, msgRegisterInvalid)
		return
	}

	exists, err := s.DB.UsernameExists(username)
	if err != nil {
		s.renderDBError(c, err)
		return
	}
	if exists {
		s.renderAccountForm(c, http.StatusBadRequest, page, title, msgUsernameTaken)
		return
	}

	session := s.getWebSession(c)
	if err := s.DB.UpdateUsername(session.UserID, username); err != nil {
		if errors.Is(err, database.ErrUsernameTaken) {
			s.renderAccountForm(c, http.StatusBadRequest, page, title, msgUsernameTaken)
			return
		}
		s.renderDBError(c, err)
		return
	}
	log.Printf("[WEB]: user %d renamed %q -> %q", session.UserID, session.User.Username, username)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *WebServer) deleteUserPage(c *gin.Context) {
	s.renderAccountForm(c, http.StatusOK, "delete_user.html", "Видалення акаунта")
}

// deleteUserSubmit removes the account with everything it owns after a password check
func (s *WebServer) deleteUserSubmit(c *gin.Context) {
	const page, title = "delete_user.html", "Видалення акаунта"

	var form DeleteUserForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderAccountForm(c, http.StatusBadRequest, page, title, msgWrongPassword)
		return
	}
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	if !checkPassword(form.Password, user.PasswordHash) {
		s.renderAccountForm(c, http.StatusBadRequest, page, title, msgWrongPassword)
		return
	}

	if err := s.DB.DeleteUser(user.ID); err != nil {
		s.renderDBError(c, err)
		return
	}
	log.Printf("[WEB]: user %q (%d) deleted their account", user.Username, user.ID)

	DropFlash(s.getWebSession(c).SessionID)
	s.clearSessionCookie(c)
	c.Redirect(http.StatusSeeOther, "/")
}
