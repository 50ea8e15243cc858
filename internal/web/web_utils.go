package web

import (
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-advice/internal/config"
	"github.com/go-while/go-advice/internal/models"
)

// GetPort returns the listening port from the config
func (s *WebServer) GetPort() int {
	return s.Config.ListenPort
}

// pageSize returns the configured list size
func (s *WebServer) pageSize() int {
	if s.Config.PageSize > 0 {
		return s.Config.PageSize
	}
	return config.DefaultPageSize
}

// getBaseTemplateData creates a TemplateData struct with common information including user auth
func (s *WebServer) getBaseTemplateData(c *gin.Context, title string) TemplateData {
	registrationEnabled := true
	if enabled, err := s.DB.IsRegistrationEnabled(); err == nil {
		registrationEnabled = enabled
	}

	data := TemplateData{
		Title:               title,
		CurrentTime:         time.Now().Format("2006-01-02 15:04:05"),
		AppVersion:          config.AppVersion,
		RegistrationEnabled: registrationEnabled,
	}

	if session := s.getWebSession(c); session != nil {
		data.User = session.User
		data.FlashSuccess, data.FlashError = GetAndClearFlash(session.SessionID)
	}
	return data
}

// renderError renders an error page
func (s *WebServer) renderError(c *gin.Context, statusCode int, message string, errstring string) {
	errorData := struct {
		TemplateData
		Error      string
		StatusCode int
	}{
		TemplateData: s.getBaseTemplateData(c, "Помилка"),
		Error:        message,
		StatusCode:   statusCode,
	}
	if statusCode >= http.StatusInternalServerError {
		log.Printf("[WEB]: error %d %s: %s - %s", statusCode, c.Request.URL.Path, message, errstring)
	}

	tmpl := s.templates["error.html"]
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(statusCode)
	if err := tmpl.ExecuteTemplate(c.Writer, "base.html", errorData); err != nil {
		log.Printf("[WEB]: error rendering error template: %v", err)
		c.String(statusCode, "Error: %s", message)
	}
	c.Abort()
}

// renderTemplate renders a page with status 200
func (s *WebServer) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	s.renderTemplateStatus(c, http.StatusOK, templateName, data)
}

// renderTemplateStatus renders a page inside base.html
func (s *WebServer) renderTemplateStatus(c *gin.Context, status int, templateName string, data interface{}) {
	tmpl, ok := s.templates[templateName]
	if !ok {
		s.renderError(c, http.StatusInternalServerError, "Template error", "unknown template "+templateName)
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := tmpl.ExecuteTemplate(c.Writer, "base.html", data); err != nil {
		log.Printf("[WEB]: error rendering template %s: %v", templateName, err)
	}
}

// renderDBError logs a storage failure and shows a 500 page
func (s *WebServer) renderDBError(c *gin.Context, err error) {
	s.renderError(c, http.StatusInternalServerError, "Помилка бази даних", err.Error())
}

// parsePage reads ?page=N. Missing means 1, anything not a positive integer is invalid.
func parsePage(c *gin.Context) (int, bool) {
	p := c.Query("page")
	if p == "" {
		return 1, true
	}
	page, err := strconv.Atoi(p)
	if err != nil || page < 1 {
		return 0, false
	}
	return page, true
}

// paginate builds pagination for total items and renders 404 when the page does not exist
func (s *WebServer) paginate(c *gin.Context, total int) (*models.PaginationInfo, bool) {
	page, ok := parsePage(c)
	if !ok {
		s.renderError(c, http.StatusNotFound, "Недійсна сторінка", c.Query("page"))
		return nil, false
	}
	pagination := models.NewPaginationInfo(page, s.pageSize(), total)
	if !pagination.InRange() {
		s.renderError(c, http.StatusNotFound, "Недійсна сторінка", c.Query("page"))
		return nil, false
	}
	return pagination, true
}

// parseIDParam reads the :id path parameter
func (s *WebServer) parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		s.renderError(c, http.StatusNotFound, "Не знайдено", c.Param("id"))
		return 0, false
	}
	return id, true
}

// redirectBack sends the client to the referring page of this site, or fallback
func redirectBack(c *gin.Context, fallback string) {
	target := fallback
	if ref := c.Request.Referer(); ref != "" {
		if u, err := url.Parse(ref); err == nil && (u.Host == "" || u.Host == c.Request.Host) {
			target = safeRedirect(u.RequestURI())
		}
	}
	c.Redirect(http.StatusSeeOther, target)
}
