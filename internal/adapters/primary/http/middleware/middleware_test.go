package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forge-service/internal/core/domain"
	"forge-service/internal/core/services"
)

type stubAuth struct {
	user   *domain.User
	claims *services.TokenClaims
	err    error
}

func (s stubAuth) Authenticate(ctx context.Context, token string) (*domain.User, *services.TokenClaims, error) {
	if token != "good" {
		return nil, nil, errors.New("bad token")
	}
	return s.user, s.claims, s.err
}

func newRouter(auth Authenticator, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Authenticate(auth))
	handlers = append(handlers, func(c *gin.Context) {
		if u := CurrentUser(c); u != nil {
			c.JSON(http.StatusOK, gin.H{"user_id": u.ID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"guest": true})
	})
	r.GET("/", handlers...)
	return r
}

func get(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := newRouter(stubAuth{})

	w := get(r, "")
	assert.NotEmpty(t, w.Header().Get(headerRequestID))

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(headerRequestID))
}

func TestAuthenticate(t *testing.T) {
	r := newRouter(stubAuth{user: &domain.User{ID: 3}, claims: &services.TokenClaims{UserID: 3}})

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"guest", "", http.StatusOK, `{"guest":true}`},
		{"valid token", "Bearer good", http.StatusOK, `{"user_id":3}`},
		{"invalid token", "Bearer bad", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, ""},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	r := newRouter(stubAuth{user: &domain.User{ID: 3}}, RequireAuth())

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusOK, get(r, "Bearer good").Code)
}

func TestRequireAbility(t *testing.T) {
	tests := []struct {
		name      string
		abilities []string
		status    int
	}{
		{"unrestricted", nil, http.StatusOK},
		{"wildcard", []string{"*"}, http.StatusOK},
		{"granted", []string{"read", "write"}, http.StatusOK},
		{"missing", []string{"read"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := stubAuth{user: &domain.User{ID: 3}, claims: &services.TokenClaims{UserID: 3, Abilities: tt.abilities}}
			r := newRouter(auth, RequireAuth(), RequireAbility("write"))
			assert.Equal(t, tt.status, get(r, "Bearer good").Code)
		})
	}
}

func TestLogging(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logging())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/boom"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, log.InfoLevel, entries[0].Level)
	assert.Equal(t, "/ok", entries[0].Data["path"])
	assert.NotEmpty(t, entries[0].Data["request_id"])
	assert.Equal(t, log.ErrorLevel, entries[1].Level)
	assert.Equal(t, http.StatusInternalServerError, entries[1].Data["status"])
}
