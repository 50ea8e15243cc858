package web

import (
	"github.com/gin-gonic/gin"
)

// homePage shows all posts newest first; anonymous visitors get the guest page
func (s *WebServer) homePage(c *gin.Context) {
	if s.getWebSession(c) == nil {
		s.guestPostsPage(c)
		return
	}
	s.renderPostList(c, "index.html", "Головна", "/?")
}

// guestPostsPage shows the recent posts with the guest template
func (s *WebServer) guestPostsPage(c *gin.Context) {
	s.renderPostList(c, "recent_posts.html", "Останні питання", c.Request.URL.Path+"?")
}

func (s *WebServer) renderPostList(c *gin.Context, templateName, title, pageURL string) {
	total, err := s.DB.CountPosts()
	if err != nil {
		s.renderDBError(c, err)
		return
	}
	pagination, ok := s.paginate(c, total)
	if !ok {
		return
	}
	posts, err := s.DB.GetPosts(pagination.PageSize, pagination.Offset())
	if err != nil {
		s.renderDBError(c, err)
		return
	}

	s.renderTemplate(c, templateName, PostListPageData{
		TemplateData: s.getBaseTemplateData(c, title),
		Posts:        posts,
		Pagination:   pagination,
		PageURL:      pageURL,
	})
}

// myPostsPage lists the current user's posts newest first
func (s *WebServer) myPostsPage(c *gin.Context) {
	session := s.getWebSession(c)

	total, err := s.DB.CountPostsByAuthor(session.UserID)
	if err != nil {
		s.renderDBError(c, err)
		return
	}
	pagination, ok := s.paginate(c, total)
	if !ok {
		return
	}
	posts, err := s.DB.GetPostsByAuthor(session.UserID, pagination.PageSize, pagination.Offset())
	if err != nil {
		s.renderDBError(c, err)
		return
	}

	s.renderTemplate(c, "my_posts.html", PostListPageData{
		TemplateData: s.getBaseTemplateData(c, "Мої питання"),
		Posts:        posts,
		Pagination:   pagination,
		PageURL:      "/my_posts?",
	})
}
