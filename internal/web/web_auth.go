package web

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-advice/internal/database"
	"github.com/go-while/go-advice/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionCookieName = "session_id"
	ctxSessionKey     = "session"
)

// FlashMessage represents a temporary success/error message
type FlashMessage struct {
	Type    string
	Message string
}

// Global flash message map and mutex
var (
	flashMessages   = make(map[string]FlashMessage)
	flashMessagesMu sync.RWMutex
)

// SetFlashError sets a temporary error message for a session
func SetFlashError(sessionID, msg string) {
	flashMessagesMu.Lock()
	flashMessages[sessionID] = FlashMessage{Type: "error", Message: msg}
	flashMessagesMu.Unlock()
}

// SetFlashSuccess sets a temporary success message for a session
func SetFlashSuccess(sessionID, msg string) {
	flashMessagesMu.Lock()
	flashMessages[sessionID] = FlashMessage{Type: "success", Message: msg}
	flashMessagesMu.Unlock()
}

// GetAndClearFlash retrieves and clears flash messages for a session
func GetAndClearFlash(sessionID string) (success, errorMsg string) {
	flashMessagesMu.Lock()
	fm := flashMessages[sessionID]
	switch fm.Type {
	case "success":
		success = fm.Message
	case "error":
		errorMsg = fm.Message
	}
	delete(flashMessages, sessionID)
	flashMessagesMu.Unlock()
	return
}

// DropFlash forgets pending messages of a session that no longer exists
func DropFlash(sessionID string) {
	flashMessagesMu.Lock()
	delete(flashMessages, sessionID)
	flashMessagesMu.Unlock()
}

// AuthUser represents a logged in user
type AuthUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Rating    int    `json:"rating"`
	CreatedAt string `json:"created_at"`
}

// SessionData represents session information with user data
type SessionData struct {
	SessionID string
	UserID    int64
	User      *AuthUser
	ExpiresAt time.Time
}

// SetError sets a temporary error message in session data
func (s *SessionData) SetError(msg string) {
	SetFlashError(s.SessionID, msg)
}

// SetSuccess sets a temporary success message in session data
func (s *SessionData) SetSuccess(msg string) {
	SetFlashSuccess(s.SessionID, msg)
}

// WebAuthRequired redirects anonymous visitors to the login page
func (s *WebServer) WebAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := s.getWebSession(c)
		if session == nil {
			c.Redirect(http.StatusSeeOther, "/login?redirect="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// getWebSession validates the session cookie once per request and caches the result
func (s *WebServer) getWebSession(c *gin.Context) *SessionData {
	if v, ok := c.Get(ctxSessionKey); ok {
		session, _ := v.(*SessionData)
		return session
	}

	var session *SessionData
	defer func() { c.Set(ctxSessionKey, session) }()

	sessionID, err := c.Cookie(sessionCookieName)
	if err != nil || sessionID == "" {
		return nil
	}

	user, err := s.DB.ValidateUserSession(sessionID)
	if err != nil {
		if !errors.Is(err, database.ErrInvalidSession) {
			log.Printf("[WEB]: session lookup failed: %v", err)
		}
		return nil
	}

	session = &SessionData{
		SessionID: sessionID,
		UserID:    user.ID,
		User:      newAuthUser(user),
	}
	if user.SessionExpiresAt != nil {
		session.ExpiresAt = *user.SessionExpiresAt
	}
	return session
}

func newAuthUser(user *models.User) *AuthUser {
	return &AuthUser{
		ID:        user.ID,
		Username:  user.Username,
		Rating:    user.Rating,
		CreatedAt: user.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// loginUser starts a fresh session for user and sets the cookie
func (s *WebServer) loginUser(c *gin.Context, user *models.User) error {
	sessionID, err := s.DB.CreateUserSession(user.ID, c.ClientIP())
	if err != nil {
		return err
	}
	s.setSessionCookie(c, sessionID)
	c.Set(ctxSessionKey, &SessionData{
		SessionID: sessionID,
		UserID:    user.ID,
		User:      newAuthUser(user),
		ExpiresAt: time.Now().Add(database.SessionTimeout),
	})
	return nil
}

// hashPassword creates a bcrypt hash of the password
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// checkPassword checks if password matches hash
func checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func isHTTPS(c *gin.Context) bool {
	return c.Request != nil && (c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https"))
}

// Helper function to set session cookie
func (s *WebServer) setSessionCookie(c *gin.Context, sessionID string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   isHTTPS(c),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   7 * 24 * 3600, // expiry is enforced server side
	})
}

// Helper function to clear session cookie
func (s *WebServer) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isHTTPS(c),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// safeRedirect accepts only local absolute paths
func safeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}
