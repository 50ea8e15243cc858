package web

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-advice/internal/database"
)

// AccountPageData is shared by the login, register and account settings forms
type AccountPageData struct {
	TemplateData
	Messages    []string
	Username    string
	RedirectURL string
}

// loginPage displays the login form
func (s *WebServer) loginPage(c *gin.Context) {
	if s.getWebSession(c) != nil {
		c.Redirect(http.StatusSeeOther, safeRedirect(c.Query("redirect")))
		return
	}
	s.renderTemplate(c, "login.html", AccountPageData{
		TemplateData: s.getBaseTemplateData(c, "Вхід"),
		RedirectURL:  c.Query("redirect"),
	})
}

// loginSubmit processes login form submission
func (s *WebServer) loginSubmit(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderLoginError(c, msgLoginInvalid, form)
		return
	}
	username := strings.TrimSpace(form.Username)

	lockedOut, err := s.DB.IsUserLockedOut(username)
	if err != nil {
		s.renderDBError(c, err)
		return
	}
	if lockedOut {
		log.Printf("[WEB]: login for locked out user %q from %s", username, c.ClientIP())
		s.renderLoginError(c, msgLoginLocked, form)
		return
	}

	user, err := s.DB.GetUserByUsername(username)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			s.renderDBError(c, err)
			return
		}
		s.renderLoginError(c, msgLoginInvalid, form)
		return
	}

	if !checkPassword(form.Password, user.PasswordHash) {
		if err := s.DB.IncrementLoginAttempts(username); err != nil {
			log.Printf("[WEB]: failed to count login attempt for %q: %v", username, err)
		}
		s.renderLoginError(c, msgLoginInvalid, form)
		return
	}

	// a new session invalidates any existing one
	if err := s.loginUser(c, user); err != nil {
		s.renderDBError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, safeRedirect(form.Redirect))
}

// logout handles user logout
func (s *WebServer) logout(c *gin.Context) {
	if session := s.getWebSession(c); session != nil {
		if err := s.DB.InvalidateUserSession(session.UserID); err != nil {
			log.Printf("[WEB]: logout user %d: %v", session.UserID, err)
		}
		DropFlash(session.SessionID)
	}
	s.clearSessionCookie(c)
	c.Redirect(http.StatusSeeOther, "/")
}

// renderLoginError renders login page with error
func (s *WebServer) renderLoginError(c *gin.Context, errorMsg string, form LoginForm) {
	s.renderTemplateStatus(c, http.StatusBadRequest, "login.html", AccountPageData{
		TemplateData: s.getBaseTemplateData(c, "Вхід"),
		Messages:     []string{errorMsg},
		Username:     form.Username,
		RedirectURL:  form.Redirect,
	})
}
