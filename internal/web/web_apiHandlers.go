package web

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-while/go-advice/internal/config"
	"github.com/go-while/go-advice/internal/database"
	"github.com/go-while/go-advice/internal/models"
)

// LIMIT_apiKeywords caps ?limit on /api/v1/keywords
var LIMIT_apiKeywords = 100

// setupAPIRoutes registers the read only JSON API
func (s *WebServer) setupAPIRoutes() {
	api := s.Router.Group("/api/v1")
	api.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:   []string{"Content-Length", requestIDHeader},
		MaxAge:          12 * time.Hour,
	}))
	{
		api.GET("/posts", s.listPosts)
		api.GET("/posts/:id", s.getPost)
		api.GET("/search", s.searchPosts)
		api.GET("/users/:username", s.getUser)
		api.GET("/keywords", s.listKeyWords)
		api.GET("/stats", s.getStats)

		// preflight requests need a matching route for the group middleware to run
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
	}
}

// apiError writes a JSON error, hiding storage details from clients
func apiError(c *gin.Context, err error) {
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	log.Printf("[WEB]: api %s: %v", c.Request.URL.Path, err)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// apiPage validates ?page against total and writes 404 when it does not exist
func (s *WebServer) apiPage(c *gin.Context, total int) (*models.PaginationInfo, bool) {
	page, ok := parsePage(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid page"})
		return nil, false
	}
	pagination := models.NewPaginationInfo(page, s.pageSize(), total)
	if !pagination.InRange() {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid page"})
		return nil, false
	}
	return pagination, true
}

func (s *WebServer) listPosts(c *gin.Context) {
	total, err := s.DB.CountPosts()
	if err != nil {
		apiError(c, err)
		return
	}
	pagination, ok := s.apiPage(c, total)
	if !ok {
		return
	}
	posts, err := s.DB.GetPosts(pagination.PageSize, pagination.Offset())
	if err != nil {
		apiError(c, err)
		return
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	c.JSON(http.StatusOK, models.NewPaginatedResponse(posts, pagination))
}

func (s *WebServer) getPost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	post, err := s.DB.GetPostByID(id)
	if err != nil {
		apiError(c, err)
		return
	}
	answers, err := s.DB.GetAnswersByPost(id, 0)
	if err != nil {
		apiError(c, err)
		return
	}
	if answers == nil {
		answers = []*models.Answer{}
	}
	c.JSON(http.StatusOK, gin.H{"post": post, "answers": answers})
}

func (s *WebServer) searchPosts(c *gin.Context) {
	query := c.Query("q")
	results, err := s.Search.Search(query)
	if err != nil {
		apiError(c, err)
		return
	}
	terms := s.Search.Terms(query)
	if terms == nil {
		terms = []string{}
	}
	if results == nil {
		results = []*models.Post{}
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "terms": terms, "results": results})
}

func (s *WebServer) getUser(c *gin.Context) {
	user, err := s.DB.GetUserByUsername(c.Param("username"))
	if err != nil {
		apiError(c, err)
		return
	}
	posts, err := s.DB.CountPostsByAuthor(user.ID)
	if err != nil {
		apiError(c, err)
		return
	}
	answers, err := s.DB.CountAnswersByAuthor(user.ID)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "posts": posts, "answers": answers})
}

func (s *WebServer) listKeyWords(c *gin.Context) {
	limit := s.popularLimit
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = min(parsed, LIMIT_apiKeywords)
	}
	keywords, err := s.topKeyWords(limit)
	if err != nil {
		apiError(c, err)
		return
	}
	if keywords == nil {
		keywords = []*models.KeyWord{}
	}
	c.JSON(http.StatusOK, keywords)
}

func (s *WebServer) getStats(c *gin.Context) {
	posts, err := s.DB.CountPosts()
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"posts":   posts,
		"uptime":  time.Since(s.StartTime).Round(time.Second).String(),
		"version": config.AppVersion,
		"cache":   s.Popular.GetStats(),
	})
}
