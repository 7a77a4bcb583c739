package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/api/logs"
	"portfolio/api/store"
	"portfolio/api/tracking"
	"portfolio/api/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTracker(t *testing.T) (*tracking.Tracker, *store.MemoryVisitorRegistry, *store.MemoryActivityLog) {
	t.Helper()
	tokens, err := utils.NewVisitorTokens("middleware-secret", 24*time.Hour)
	require.NoError(t, err)
	activity := store.NewMemoryActivityLog(50)
	visitors := store.NewMemoryVisitorRegistry()
	return tracking.New(activity, visitors, tokens, logs.Discard(), tracking.Options{}), visitors, activity
}

func newVisitorRouter(tr *tracking.Tracker) *gin.Engine {
	r := gin.New()
	r.Use(VisitorTracking(tr, false, logs.Discard()))
	r.GET("/api/whoami", func(c *gin.Context) { c.String(http.StatusOK, VisitorID(c)) })
	r.NoRoute(func(c *gin.Context) { c.String(http.StatusOK, VisitorID(c)) })
	return r
}

func TestVisitorTracking_StampsCookieOnApiWithoutTracking(t *testing.T) {
	tr, visitors, _ := newTracker(t)
	r := newVisitorRouter(tr)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/whoami", nil))
	tr.Wait()

	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, VisitorCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, VisitorCookieMaxAge, cookies[0].MaxAge)

	total, _, err := visitors.Counts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestVisitorTracking_TracksPagesAndReusesCookie(t *testing.T) {
	tr, visitors, activity := newTracker(t)
	r := newVisitorRouter(tr)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/projects", nil))
	tr.Wait()
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	firstID := w.Body.String()

	req := httptest.NewRequest(http.MethodGet, "/skills", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	tr.Wait()

	assert.Empty(t, w.Result().Cookies(), "valid cookie must not be re-issued")
	assert.Equal(t, firstID, w.Body.String())

	v, err := visitors.Get(context.Background(), firstID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/projects", "/skills"}, v.PagesVisited)
	assert.Equal(t, int64(2), v.VisitCount)

	n, err := activity.CountByType(context.Background(), "visitor")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestVisitorTracking_ForgedCookieReplaced(t *testing.T) {
	tr, _, _ := newTracker(t)
	r := newVisitorRouter(tr)

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookieName, Value: "not-a-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Len(t, w.Result().Cookies(), 1)
	assert.NotEqual(t, "not-a-token", w.Body.String())
}

func TestIsPageRequest(t *testing.T) {
	tests := []struct {
		path string
		dnt  bool
		want bool
	}{
		{path: "/", want: true},
		{path: "/projects", want: true},
		{path: "/api/profile", want: false},
		{path: "/ws", want: false},
		{path: "/assets/app.js", want: false},
		{path: "/favicon.ico", want: false},
		{path: "/robots.txt", want: false},
		{path: "/", dnt: true, want: false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.dnt {
			req.Header.Set("DNT", "1")
		}
		assert.Equal(t, tt.want, isPageRequest(req), tt.path)
	}
}

func TestNoCache(t *testing.T) {
	r := gin.New()
	r.GET("/x", NoCache(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
	assert.Equal(t, "0", w.Header().Get("Expires"))
}

func TestRequestLogger_PropagatesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(logs.Discard()))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, logs.RequestID(c.Request.Context())) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Body.String())
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
