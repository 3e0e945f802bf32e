package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Taolee-crypto/timelink-backend/logic"
	"github.com/Taolee-crypto/timelink-backend/models"
	"github.com/Taolee-crypto/timelink-backend/testutil"

	"github.com/gin-gonic/gin"
)

type stubAuth map[string]*models.User

func (s stubAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, logic.ErrInvalidCredentials
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := stubAuth{
		"user-token":  {ID: 1, Role: models.RoleUser},
		"admin-token": {ID: 2, Role: models.RoleAdmin},
	}
	r := gin.New()
	r.Use(RequestLogger(testutil.Logger()))
	r.GET("/me", Auth(auth), func(c *gin.Context) {
		u, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": u.ID})
	})
	r.GET("/admin", Auth(auth), Admin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthAndAdmin(t *testing.T) {
	r := newEngine()
	tests := []struct {
		path, header string
		want         int
	}{
		{"/me", "", http.StatusUnauthorized},
		{"/me", "Basic abc", http.StatusUnauthorized},
		{"/me", "Bearer nope", http.StatusUnauthorized},
		{"/me", "Bearer user-token", http.StatusOK},
		{"/admin", "Bearer user-token", http.StatusForbidden},
		{"/admin", "Bearer admin-token", http.StatusNoContent},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tt.want {
			t.Errorf("%s with %q = %d, want %d", tt.path, tt.header, w.Code, tt.want)
		}
	}
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := newEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatal("no request id generated")
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("request id = %q", got)
	}
}
