package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"sync"
	"testing"

	"github.com/go-while/go-advice/internal/config"
	"github.com/go-while/go-advice/internal/models"
	"github.com/go-while/go-advice/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedPosts registers alice and stores posts directly, oldest first
func seedPosts(t *testing.T, env *testEnv, titles ...string) []*models.Post {
	t.Helper()
	env.newClient().register("alice", "correct-horse")
	author := env.user("alice")
	var out []*models.Post
	for _, title := range titles {
		p := &models.Post{Title: title, Question: "Питання про " + title, AuthorID: author.ID}
		require.NoError(t, env.server.DB.InsertPost(p))
		out = append(out, p)
	}
	return out
}

func getJSON(t *testing.T, c *testClient, path string, out interface{}) *http.Response {
	t.Helper()
	resp, body := c.get(path)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal([]byte(body), out), body)
	}
	return resp
}

func TestSearchPage(t *testing.T) {
	env := newTestEnv(t, nil)
	seedPosts(t, env, "Golang для початківців", "Кіт не їсть корм", "Привіт усім")
	c := env.newClient()

	resp, body := c.get("/search?search=" + url.QueryEscape("GOLANG"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Golang для початківців")
	assert.NotContains(t, body, "Кіт не їсть корм")

	// wrong keyboard layout
	_, body = c.get("/search?search=ghbdsn")
	assert.Contains(t, body, "Привіт усім")

	_, body = c.get("/search?search=" + url.QueryEscape("кавоварка"))
	assert.Contains(t, body, "Нічого не знайдено")

	resp, _ = c.get("/search?search=golang&page=2")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// searched keywords that matched show up as popular
	_, body = c.get("/search")
	assert.Contains(t, body, "Популярні запити")
	assert.Contains(t, body, "golang (1)")

	keywords, err := env.server.DB.GetTopKeyWords(10)
	require.NoError(t, err)
	var words []string
	for _, kw := range keywords {
		words = append(words, kw.Word)
	}
	assert.ElementsMatch(t, []string{"golang", "ghbdsn"}, words)
}

func TestSearchPagination(t *testing.T) {
	env := newTestEnv(t, nil)
	seedPosts(t, env, "sqlite один", "sqlite два", "sqlite три")
	c := env.newClient()

	_, body := c.get("/search?search=sqlite")
	assert.Contains(t, body, "sqlite три")
	assert.Contains(t, body, "sqlite два")
	assert.NotContains(t, body, "sqlite один")
	assert.Contains(t, body, "search=sqlite&amp;page=2")

	resp, body := c.get("/search?search=sqlite&page=2")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "sqlite один")
}

func TestAPIPosts(t *testing.T) {
	env := newTestEnv(t, nil)
	posts := seedPosts(t, env, "Перше", "Друге", "Третє")
	c := env.newClient()

	var page struct {
		Data       []*models.Post `json:"data"`
		Page       int            `json:"page"`
		TotalCount int            `json:"total_count"`
		TotalPages int            `json:"total_pages"`
		HasNext    bool           `json:"has_next"`
	}
	resp := getJSON(t, c, "/api/v1/posts", &page)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNext)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Третє", page.Data[0].Title)
	assert.Equal(t, "alice", page.Data[0].AuthorName)

	resp = getJSON(t, c, "/api/v1/posts?page=3", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var detail struct {
		Post    *models.Post     `json:"post"`
		Answers []*models.Answer `json:"answers"`
	}
	resp = getJSON(t, c, fmt.Sprintf("/api/v1/posts/%d", posts[0].ID), &detail)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Перше", detail.Post.Title)
	assert.NotNil(t, detail.Answers)

	resp = getJSON(t, c, "/api/v1/posts/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = getJSON(t, c, "/api/v1/posts/x", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIUsersAndSearch(t *testing.T) {
	env := newTestEnv(t, nil)
	seedPosts(t, env, "Golang питання")
	c := env.newClient()

	resp, body := c.get("/api/v1/users/alice")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "session")
	var user struct {
		User    models.User `json:"user"`
		Posts   int         `json:"posts"`
		Answers int         `json:"answers"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &user))
	assert.Equal(t, "alice", user.User.Username)
	assert.Equal(t, 1, user.Posts)

	resp = getJSON(t, c, "/api/v1/users/nobody", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var result struct {
		Terms   []string       `json:"terms"`
		Results []*models.Post `json:"results"`
	}
	getJSON(t, c, "/api/v1/search?q="+url.QueryEscape("golang the"), &result)
	assert.Equal(t, []string{"golang"}, result.Terms)
	require.Len(t, result.Results, 1)

	var keywords []*models.KeyWord
	getJSON(t, c, "/api/v1/keywords?limit=5", &keywords)
	require.Len(t, keywords, 1)
	assert.Equal(t, 1, keywords[0].PostCount)

	resp = getJSON(t, c, "/api/v1/keywords?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var stats map[string]interface{}
	getJSON(t, c, "/api/v1/stats", &stats)
	assert.EqualValues(t, 1, stats["posts"])

	resp = getJSON(t, c, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPICORS(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.newClient()

	req, err := http.NewRequest(http.MethodGet, env.ts.URL+"/api/v1/posts", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://example.org")
	resp, _ := c.do(req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	req, err = http.NewRequest(http.MethodOptions, env.ts.URL+"/api/v1/posts", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://example.org")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, _ = c.do(req)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRegisterJobs(t *testing.T) {
	env := newTestEnv(t, nil)
	sched, err := scheduler.New("UTC")
	require.NoError(t, err)

	cfg := config.NewDefaultConfig().Scheduler
	require.NoError(t, env.server.RegisterJobs(sched, cfg))
	jobs := sched.Jobs()
	assert.Contains(t, jobs, "session-cleanup")
	assert.Contains(t, jobs, "keyword-prune")

	// registering twice collides on the job names
	assert.Error(t, env.server.RegisterJobs(sched, cfg))

	bad, err := scheduler.New("UTC")
	require.NoError(t, err)
	cfg.SessionCleanup = "every now and then"
	assert.Error(t, env.server.RegisterJobs(bad, cfg))

	// the job bodies run fine against a live database
	env.server.cleanupSessions()
	env.server.pruneKeyWords()
}

// lockedBuffer collects log output written from server goroutines
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestAPIStorageErrorIsLogged(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.newClient()

	buf := &lockedBuffer{}
	log.SetOutput(buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	require.NoError(t, env.server.DB.Shutdown())

	resp, body := c.get("/api/v1/posts")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"internal error"}`, body)
	assert.NotContains(t, body, "closed")
	assert.Contains(t, buf.String(), "[WEB]: api /api/v1/posts: ")
}
