package web

import (
	"log"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// searchPage handles /search?search=...&page=N
func (s *WebServer) searchPage(c *gin.Context) {
	query := strings.TrimSpace(c.Query("search"))

	results, err := s.Search.Search(query)
	if err != nil {
		log.Printf("[WEB]: search %q failed: %v", query, err)
		s.renderDBError(c, err)
		return
	}

	pagination, ok := s.paginate(c, len(results))
	if !ok {
		return
	}
	start := min(pagination.Offset(), len(results))
	end := min(start+pagination.PageSize, len(results))

	popular, err := s.topKeyWords(s.popularLimit)
	if err != nil {
		log.Printf("[WEB]: popular keywords: %v", err)
	}

	title := "Пошук"
	if query != "" {
		title = "Пошук: " + query
	}
	s.renderTemplate(c, "search.html", SearchPageData{
		TemplateData: s.getBaseTemplateData(c, title),
		Query:        query,
		Terms:        s.Search.Terms(query),
		Results:      results[start:end],
		HasResults:   len(results) > 0,
		Pagination:   pagination,
		PageURL:      "/search?search=" + url.QueryEscape(query) + "&",
		Popular:      popular,
	})
}
