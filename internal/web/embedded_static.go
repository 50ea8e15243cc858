package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-advice/internal/models"
)

//go:embed static/*
var EmbeddedStaticFS embed.FS

//go:embed templates/*.html
var embeddedTemplatesFS embed.FS

// page templates, each rendered inside base.html together with partials.html
var pageTemplates = []string{
	"error.html",
	"index.html",
	"recent_posts.html",
	"my_posts.html",
	"search.html",
	"add_post.html",
	"detail.html",
	"edit.html",
	"edit_answer.html",
	"register.html",
	"login.html",
	"change_password.html",
	"edit_username.html",
	"delete_user.html",
	"profile.html",
	"about_us.html",
}

var templateFuncs = template.FuncMap{
	"fmtTime": func(t time.Time) string {
		return t.Local().Format("02.01.2006 15:04")
	},
	"voted": func(a *models.Answer, dir int) bool {
		return int(a.MyVote) == dir
	},
}

// loadTemplates parses every page once at startup
func loadTemplates() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pageTemplates))
	for _, name := range pageTemplates {
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(embeddedTemplatesFS,
			"templates/base.html", "templates/partials.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		out[name] = tmpl
	}
	return out, nil
}

// EmbeddedStaticHandler returns a Gin handler for serving embedded static files
func EmbeddedStaticHandler(prefix string) gin.HandlerFunc {
	staticFS, err := fs.Sub(EmbeddedStaticFS, "static")
	if err != nil {
		panic("Failed to create embedded static filesystem: " + err.Error())
	}
	fileServer := http.FileServer(http.FS(staticFS))

	return func(c *gin.Context) {
		p := strings.TrimPrefix(c.Request.URL.Path, prefix)
		if p == "" || p == "/" {
			// no directory listings
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.Request.URL.Path = p
		c.Header("Cache-Control", "public, max-age=3600")
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}

// EmbeddedFileHandler returns a Gin handler for serving a single embedded file
func EmbeddedFileHandler(filePath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		content, err := fs.ReadFile(EmbeddedStaticFS, filePath)
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, getContentType(filePath), content)
	}
}

// getContentType returns the MIME type for a file name
func getContentType(filePath string) string {
	if ct := mime.TypeByExtension(path.Ext(filePath)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
