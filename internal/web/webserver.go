// Package web provides the HTTP server and web interface for go-advice
package web

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/go-while/go-advice/internal/cache"
	"github.com/go-while/go-advice/internal/config"
	"github.com/go-while/go-advice/internal/database"
	"github.com/go-while/go-advice/internal/models"
	"github.com/go-while/go-advice/internal/search"
	"github.com/google/uuid"
)

// WebServer represents the web server
type WebServer struct {
	DB        *database.Database
	Router    *gin.Engine
	Config    *config.WebConfig
	Search    *search.Searcher
	Popular   *cache.KeyWordCache
	StartTime time.Time

	popularLimit int
	templates    map[string]*template.Template
}

// TemplateData represents common template data
type TemplateData struct {
	Title               string
	CurrentTime         string
	AppVersion          string
	User                *AuthUser
	RegistrationEnabled bool
	FlashSuccess        string
	FlashError          string
}

// PostListPageData is used by the main, guest and my_posts pages
type PostListPageData struct {
	TemplateData
	Posts      []*models.Post
	Pagination *models.PaginationInfo
	PageURL    string // page links append page=N to this
}

// SearchPageData represents data for search page
type SearchPageData struct {
	TemplateData
	Query      string
	Terms      []string
	Results    []*models.Post
	HasResults bool
	Pagination *models.PaginationInfo
	PageURL    string
	Popular    []*models.KeyWord
}

// NewServer creates a new web server instance
func NewServer(db *database.Database, cfg *config.AppConfig) (*WebServer, error) {
	if !cfg.Web.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	if err := router.SetTrustedProxies(cfg.Web.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	secureConfig := secure.Config{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; style-src 'self'; img-src 'self' data:",
		IsDevelopment:         gin.Mode() != gin.ReleaseMode,
	}
	// only when the app terminates TLS itself, not behind a proxy
	if cfg.Web.SSL {
		secureConfig.SSLRedirect = true
		secureConfig.STSSeconds = 31536000
		secureConfig.STSIncludeSubdomains = true
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	if err := registerFormValidators(); err != nil {
		return nil, err
	}

	server := &WebServer{
		DB:           db,
		Router:       router,
		Config:       &cfg.Web,
		Search:       search.NewSearcher(db, search.NewKeyWordFilter(cfg.Search.MinWordLength, cfg.Search.StopWords)),
		Popular:      cache.NewKeyWordCache(8, cfg.Search.PopularCacheTTL),
		StartTime:    time.Now(),
		popularLimit: cfg.Search.PopularLimit,
		templates:    templates,
	}
	server.Search.Debug = cfg.Web.Debug
	server.Popular.Debug = cfg.Web.Debug

	router.Use(server.RequestIDMiddleware())
	router.Use(server.ApacheLogFormat())
	router.Use(secure.New(secureConfig))
	router.Use(server.ReverseProxyMiddleware())

	server.setupRoutes()
	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *WebServer) setupRoutes() {
	s.Router.GET("/static/*filepath", EmbeddedStaticHandler("/static"))
	s.Router.GET("/robots.txt", EmbeddedFileHandler("static/robots.txt"))
	s.Router.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	s.Router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	s.setupAPIRoutes()

	pages := s.Router.Group("/")
	pages.Use(s.BotDetectionMiddleware())
	{
		pages.GET("/", s.homePage)
		pages.GET("/recent", s.guestPostsPage)
		pages.GET("/search", s.searchPage)
		pages.GET("/about_us", s.aboutPage)
		pages.GET("/post/:id", s.postDetailPage)

		pages.GET("/login", s.loginPage)
		pages.POST("/login", s.loginSubmit)
		pages.GET("/register", s.registerPage)
		pages.POST("/register", s.registerSubmit)
		pages.GET("/logout", s.logout)
	}

	auth := pages.Group("/")
	auth.Use(s.WebAuthRequired())
	{
		auth.GET("/my_posts", s.myPostsPage)
		auth.GET("/add_post", s.addPostPage)
		auth.POST("/add_post", s.addPostSubmit)

		auth.POST("/post/:id", s.addAnswerSubmit)
		auth.GET("/post/:id/edit", s.editPostPage)
		auth.POST("/post/:id/edit", s.editPostSubmit)
		auth.POST("/post/:id/delete", s.deletePost)
		auth.POST("/post/:id/status", s.changePostStatus)

		auth.GET("/answer/:id/edit", s.editAnswerPage)
		auth.POST("/answer/:id/edit", s.editAnswerSubmit)
		auth.POST("/answer/:id/delete", s.deleteAnswer)
		auth.POST("/answer/:id/increase", s.increaseRating)
		auth.POST("/answer/:id/decrease", s.decreaseRating)

		auth.GET("/profile", s.profilePage)
		auth.GET("/change_password", s.changePasswordPage)
		auth.POST("/change_password", s.changePasswordSubmit)
		auth.GET("/edit_username", s.editUsernamePage)
		auth.POST("/edit_username", s.editUsernameSubmit)
		auth.GET("/delete_user", s.deleteUserPage)
		auth.POST("/delete_user", s.deleteUserSubmit)
	}

	s.Router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		s.renderError(c, http.StatusNotFound, "Сторінку не знайдено", c.Request.URL.Path)
	})
}

// Close stops background work owned by the server
func (s *WebServer) Close() {
	s.Popular.Stop()
}

// topKeyWords returns the most popular search keywords through the cache
func (s *WebServer) topKeyWords(limit int) ([]*models.KeyWord, error) {
	return s.Popular.GetOrLoad(limit, s.DB.GetTopKeyWords)
}

// Addr returns the listen address
func (s *WebServer) Addr() string {
	return ":" + strconv.Itoa(s.Config.ListenPort)
}

// NewHTTPServer wraps the router in an http.Server with sane timeouts
func (s *WebServer) NewHTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var badBots = []string{"acunetix", "ahref", "census", "chatgpt", "claude", "crawler",
	"curl", "deepseek", "go-http", "httrack", "mj12", "paloalto", "python", "semrush", "wget"}

// BotDetectionMiddleware rejects known scrapers on HTML pages when Web.BlockBots is set
func (s *WebServer) BotDetectionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.Config.BlockBots {
			c.Next()
			return
		}
		userAgent := strings.ToLower(c.GetHeader("User-Agent"))
		for _, pattern := range badBots {
			if strings.Contains(userAgent, pattern) {
				log.Printf("[WEB]: bot blocked: %q from %s", c.GetHeader("User-Agent"), c.ClientIP())
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
		}
		c.Next()
	}
}

// ReverseProxyMiddleware handles X-Forwarded-Proto and X-Forwarded-Host.
// Client IPs come from gin's trusted proxy handling.
func (s *WebServer) ReverseProxyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" {
			c.Request.URL.Scheme = "https"
		}
		if host := c.GetHeader("X-Forwarded-Host"); host != "" && c.RemoteIP() != c.ClientIP() {
			c.Request.Host = host
		}
		c.Next()
	}
}

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags every request with an id, reusing a valid incoming one
func (s *WebServer) RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// ApacheLogFormat logs requests in combined log format followed by the request id
func (s *WebServer) ApacheLogFormat() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf(`%s - - [%s] "%s %s %s" %d %d "%s" "%s" %v`+"\n",
			param.ClientIP,
			param.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.BodySize,
			param.Request.Referer(),
			param.Request.UserAgent(),
			param.Keys["request_id"],
		)
	})
}
