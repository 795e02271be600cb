package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coachingportal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetString("userId"), "role": c.GetString("role")})
	})
	r.GET("/private", handlers...)
	return r
}

func token(t *testing.T, uid, role string) string {
	t.Helper()
	tok, err := utils.GenerateToken(uid, role, secret, "test", time.Hour)
	require.NoError(t, err)
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	router := newRouter(AuthMiddleware(secret))

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
	}{
		{name: "bearer token", header: "Bearer " + token(t, "u1", "student"), wantStatus: http.StatusOK},
		{name: "query token ignored", query: "?token=" + token(t, "u1", "student"), wantStatus: http.StatusUnauthorized},
		{name: "missing token", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"userId":"u1","role":"student"}`, w.Body.String())
			}
		})
	}
}

func TestStreamAuthMiddleware(t *testing.T) {
	router := newRouter(StreamAuthMiddleware(secret))

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
	}{
		{name: "query token", query: "?token=" + token(t, "u1", "student"), wantStatus: http.StatusOK},
		{name: "bearer token", header: "Bearer " + token(t, "u1", "student"), wantStatus: http.StatusOK},
		{name: "bad header wins over query", header: "Basic abc", query: "?token=" + token(t, "u1", "student"), wantStatus: http.StatusUnauthorized},
		{name: "bad query token", query: "?token=nope", wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRequireRole_IgnoresQueryToken(t *testing.T) {
	router := newRouter(AuthMiddleware(secret), RequireRole("admin"))

	req := httptest.NewRequest(http.MethodGet, "/private?token="+token(t, "u1", "admin"), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRedactToken(t *testing.T) {
	assert.Equal(t, "/api/notifications/stream?token=REDACTED", redactToken("/api/notifications/stream?token=eyJhbGciOi.x.y"))
	assert.Equal(t, "/api/courses?status=active", redactToken("/api/courses?status=active"))
	assert.Equal(t, "/health", redactToken("/health"))
	assert.NotContains(t, redactToken("/s?view=all&token=secret-jwt"), "secret-jwt")
}

func TestRequireRole(t *testing.T) {
	router := newRouter(AuthMiddleware(secret), RequireRole("admin"))

	for role, want := range map[string]int{"admin": http.StatusOK, "student": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, "u1", role))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, role)
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
