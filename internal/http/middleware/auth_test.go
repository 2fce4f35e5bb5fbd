package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classora/classora-auth/internal/config"
	"github.com/classora/classora-auth/internal/domain"
	httpmiddleware "github.com/classora/classora-auth/internal/http/middleware"
	"github.com/classora/classora-auth/internal/repository"
	"github.com/classora/classora-auth/internal/service"
	"github.com/classora/classora-auth/internal/token"
)

func setupGuard(t *testing.T, users ...domain.User) (*gin.Engine, *token.Generator, *stubUserRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &stubUserRepo{users: make(map[string]domain.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	gen := token.NewGenerator([]byte("test-secret-0123456789abcdef0123456789"), time.Minute)
	svc := service.NewAuthService(repo, gen, config.Config{}, zap.NewNop())
	guard := &httpmiddleware.Auth{AuthService: svc}

	r := gin.New()
	r.GET("/protected", guard.RequireAuth, func(c *gin.Context) {
		user, _ := httpmiddleware.CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": user.ID}})
	})
	r.GET("/admin", guard.RequireAuth, httpmiddleware.RequireRoles(domain.RoleAdmin, domain.RoleSuperAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r, gen, repo
}

func signFor(t *testing.T, gen *token.Generator, user domain.User) string {
	t.Helper()
	signed, err := gen.Sign(user.ID, token.SessionClaims{Name: user.Name, Role: string(user.Role), TenantID: user.TenantID})
	require.NoError(t, err)
	return signed
}

func TestRequireAuthMissingToken(t *testing.T) {
	r, _, repo := setupGuard(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, false, body["success"])
	require.Equal(t, service.MsgNotAuthorized, body["error"])
	require.Zero(t, repo.calls, "no store access before a token is present")
}

func TestRequireAuthBearerHeader(t *testing.T) {
	user := domain.User{ID: "u-1", Name: "Ada", Role: domain.RoleStudent, TenantID: "S1"}
	r, gen, _ := setupGuard(t, user)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signFor(t, gen, user))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuthCookieFallback(t *testing.T) {
	user := domain.User{ID: "u-1", Name: "Ada", Role: domain.RoleStudent, TenantID: "S1"}
	r, gen, _ := setupGuard(t, user)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: httpmiddleware.SessionCookieName, Value: signFor(t, gen, user)})
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuthHeaderTakesPrecedence(t *testing.T) {
	user := domain.User{ID: "u-1", Name: "Ada", Role: domain.RoleStudent, TenantID: "S1"}
	r, gen, _ := setupGuard(t, user)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signFor(t, gen, user))
	req.AddCookie(&http.Cookie{Name: httpmiddleware.SessionCookieName, Value: "garbage"})
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuthInvalidAndStaleTokensLookAlike(t *testing.T) {
	r, gen, _ := setupGuard(t)

	stale := signFor(t, gen, domain.User{ID: "deleted-user", Role: domain.RoleStudent})

	for name, tok := range map[string]string{"garbage": "garbage", "stale": stale} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+tok)
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusUnauthorized, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.Equal(t, service.MsgNotAuthorized, body["error"])
		})
	}
}

func TestRequireRoles(t *testing.T) {
	student := domain.User{ID: "u-1", Name: "Ada", Role: domain.RoleStudent, TenantID: "S1"}
	admin := domain.User{ID: "u-2", Name: "Grace", Role: domain.RoleAdmin, TenantID: "S1"}
	r, gen, repo := setupGuard(t, student, admin)

	t.Run("forbidden role", func(t *testing.T) {
		before := snapshot(repo)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+signFor(t, gen, student))
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusForbidden, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Equal(t, "User role 'student' is not authorized to access this route", body["error"])
		require.Equal(t, before, snapshot(repo), "role check must not mutate state")
	})

	t.Run("allowed role", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+signFor(t, gen, admin))
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
	})
}

func snapshot(repo *stubUserRepo) map[string]domain.User {
	out := make(map[string]domain.User, len(repo.users))
	for k, v := range repo.users {
		out[k] = v
	}
	return out
}

// stubUserRepo backs the guard tests.
type stubUserRepo struct {
	users map[string]domain.User
	calls int
}

func (s *stubUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	s.calls++
	s.users[user.ID] = user
	return user, nil
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	s.calls++
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (s *stubUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	s.calls++
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUserRepo) UpdateDetails(ctx context.Context, id, name, email string) (domain.User, error) {
	s.calls++
	u := s.users[id]
	u.Name = name
	u.Email = email
	s.users[id] = u
	return u, nil
}

func (s *stubUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	s.calls++
	u := s.users[id]
	u.PasswordHash = passwordHash
	s.users[id] = u
	return nil
}

