package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warebase/internal/core/apperror"
	appctx "warebase/internal/core/context"
)

type stubValidator struct {
	user *appctx.UserContext
	err  error
}

func (s *stubValidator) ValidateToken(string) (*appctx.UserContext, error) {
	return s.user, s.err
}

// newAuthRouter wires the middleware the way the real router does:
// ErrorHandler first, then Auth, then any extra guards.
func newAuthRouter(validator JWTValidator, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())

	chain := append([]gin.HandlerFunc{Auth(validator)}, extra...)
	chain = append(chain, func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": user.UserID})
	})
	r.GET("/guarded", chain...)
	return r
}

func doGet(t *testing.T, r *gin.Engine, authHeader string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestAuth_MissingHeader(t *testing.T) {
	r := newAuthRouter(&stubValidator{})

	w, body := doGet(t, r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperror.CodeUnauthorized, body["code"])
}

func TestAuth_BadHeaderFormat(t *testing.T) {
	r := newAuthRouter(&stubValidator{})

	w, _ := doGet(t, r, "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	r := newAuthRouter(&stubValidator{err: errors.New("bad signature")})

	w, body := doGet(t, r, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperror.CodeUnauthorized, body["code"])
}

func TestAuth_ValidTokenPopulatesUser(t *testing.T) {
	validator := &stubValidator{user: &appctx.UserContext{
		UserID: "665f1e8a9c3b2a0001d4e5f6",
		Roles:  []string{"operator"},
	}}
	r := newAuthRouter(validator)

	w, body := doGet(t, r, "Bearer good-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "665f1e8a9c3b2a0001d4e5f6", body["user_id"])
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		roles      []string
		wantStatus int
		wantCode   string
	}{
		{"has role", []string{"admin"}, http.StatusOK, ""},
		{"one of several", []string{"operator", "admin"}, http.StatusOK, ""},
		{"missing role", []string{"operator"}, http.StatusForbidden, apperror.CodeForbidden},
		{"no roles", nil, http.StatusForbidden, apperror.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := &stubValidator{user: &appctx.UserContext{
				UserID: "665f1e8a9c3b2a0001d4e5f6",
				Roles:  tt.roles,
			}}
			r := newAuthRouter(validator, RequireRole("admin"))

			w, body := doGet(t, r, "Bearer good-token")
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["code"])
			}
		})
	}
}

func TestRequireRole_WithoutAuthenticatedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/guarded", RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w, body := doGet(t, r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperror.CodeUnauthorized, body["code"])
}
