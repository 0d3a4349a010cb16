package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/d60-Lab/carmarket/internal/model"
	"github.com/d60-Lab/carmarket/internal/service"
)

// stubAuth 按令牌查表返回会话，其余方法不参与守卫测试。
type stubAuth struct {
	sessions map[string]*model.Session
}

func (s *stubAuth) Signup(ctx context.Context, input service.SignupInput) (string, error) {
	return "", nil
}

func (s *stubAuth) Login(ctx context.Context, email, password string) (string, model.PublicUser, error) {
	return "", model.PublicUser{}, nil
}

func (s *stubAuth) Logout(ctx context.Context, token string) {}

func (s *stubAuth) Session(ctx context.Context, token string) *model.Session {
	return s.sessions[token]
}

func (s *stubAuth) Profile(ctx context.Context, userID string) (model.PublicUser, error) {
	return model.PublicUser{}, nil
}

func (s *stubAuth) UpdateProfile(ctx context.Context, userID, fullName, phoneNumber string) error {
	return nil
}

func newAdminRouter(auth *stubAuth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(auth, nil, nil, nil, nil, nil, nil)
	r := gin.New()
	admin := r.Group("/admin", h.RequireAdmin([]string{"admin@example.com"}))
	admin.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRequireAdminRejectsAnonymous(t *testing.T) {
	r := newAdminRouter(&stubAuth{sessions: map[string]*model.Session{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdminRejectsNonAdmin(t *testing.T) {
	r := newAdminRouter(&stubAuth{sessions: map[string]*model.Session{
		"tok-user": {UserID: "u1", Email: "jane@example.com"},
	}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "tok-user"})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdminAllowsListedEmail(t *testing.T) {
	r := newAdminRouter(&stubAuth{sessions: map[string]*model.Session{
		"tok-admin": {UserID: "u2", Email: "admin@example.com"},
	}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "tok-admin"})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminAcceptsBearerToken(t *testing.T) {
	r := newAdminRouter(&stubAuth{sessions: map[string]*model.Session{
		"tok-admin": {UserID: "u2", Email: "admin@example.com"},
	}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer tok-admin")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
