package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weiawesome/wes-estate/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUsers map[string]string

func (f fakeUsers) LookupEmail(_ context.Context, id string) (string, error) {
	if email, ok := f[id]; ok {
		return email, nil
	}
	return "", errors.New("not found")
}

func newAuthRouter(t *testing.T, users UserLookup) (*gin.Engine, *jwt.Manager) {
	t.Helper()
	tokens, err := jwt.NewManager("test-secret", time.Hour, "test")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	r := gin.New()
	r.GET("/me", NewAuthMiddleware(tokens, users).RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c)+"|"+GetEmail(c))
	})
	return r, tokens
}

func TestRequireAuth(t *testing.T) {
	r, tokens := newAuthRouter(t, fakeUsers{"u1": "u1@example.com"})

	valid, _ := tokens.Generate("u1", "stale@example.com")
	unknown, _ := tokens.Generate("ghost", "")

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"garbage token", "Bearer abc", http.StatusUnauthorized, ""},
		{"unknown user", "Bearer " + unknown, http.StatusUnauthorized, ""},
		{"valid", "Bearer " + valid, http.StatusOK, "u1|u1@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.status == http.StatusOK && w.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.body)
			}
			if tt.status == http.StatusUnauthorized && w.Body.String() != `{"success":false,"message":"Not authorized to access this route"}` {
				t.Errorf("body = %s", w.Body.String())
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(0.001, 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}

	want := []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("codes = %v, want %v", codes, want)
		}
	}
}

func TestRateLimitDisabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(0, 0))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusNoContent {
			t.Fatalf("request %d: status = %d", i, w.Code)
		}
	}
}
