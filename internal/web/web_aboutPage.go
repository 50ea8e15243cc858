package web

import (
	"github.com/gin-gonic/gin"
)

// aboutPage renders the static about page
func (s *WebServer) aboutPage(c *gin.Context) {
	s.renderTemplate(c, "about_us.html", s.getBaseTemplateData(c, "Про нас"))
}
