package web

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-advice/internal/database"
	"github.com/go-while/go-advice/internal/models"
)

// registrationOpen renders 403 and returns false when registration is disabled
func (s *WebServer) registrationOpen(c *gin.Context) bool {
	enabled, err := s.DB.IsRegistrationEnabled()
	if err != nil {
		s.renderDBError(c, err)
		return false
	}
	if !enabled {
		s.renderError(c, http.StatusForbidden, msgRegistrationOff, "registration disabled")
		return false
	}
	return true
}

// registerPage displays the registration form
func (s *WebServer) registerPage(c *gin.Context) {
	if !s.registrationOpen(c) {
		return
	}
	if s.getWebSession(c) != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	s.renderTemplate(c, "register.html", AccountPageData{
		TemplateData: s.getBaseTemplateData(c, "Реєстрація"),
	})
}

// registerSubmit creates the account and logs the new user in
func (s *WebServer) registerSubmit(c *gin.Context) {
	if !s.registrationOpen(c) {
		return
	}

	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderRegisterError(c, form.Username)
		return
	}

	passwordHash, err := hashPassword(form.Password1)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, "Помилка", err.Error())
		return
	}

	user := &models.User{Username: form.Username, PasswordHash: passwordHash}
	if err := s.DB.InsertUser(user); err != nil {
		if errors.Is(err, database.ErrUsernameTaken) {
			s.renderRegisterError(c, form.Username)
			return
		}
		s.renderDBError(c, err)
		return
	}
	log.Printf("[WEB]: registered user %q (%d) from %s", user.Username, user.ID, c.ClientIP())

	if err := s.loginUser(c, user); err != nil {
		s.renderDBError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// renderRegisterError re-renders the form with both registration hints
func (s *WebServer) renderRegisterError(c *gin.Context, username string) {
	s.renderTemplateStatus(c, http.StatusBadRequest, "register.html", AccountPageData{
		TemplateData: s.getBaseTemplateData(c, "Реєстрація"),
		Messages:     []string{msgRegisterInvalid, msgPasswordRules},
		Username:     username,
	})
}
