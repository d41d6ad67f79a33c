package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypher-music/cypher-backend/internal/model"
	"github.com/cypher-music/cypher-backend/internal/utils"
)

const testSecret = "test-secret"

func protectedEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		id, _ := UserID(c)
		return c.JSON(http.StatusOK, echo.Map{"user_id": id, "role": c.Get("role")})
	}, mw...)
	return e
}

func TestJWTAuthMissingToken(t *testing.T) {
	e := protectedEcho(JWTAuth(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token nicht gefunden.")
}

func TestJWTAuthInvalidToken(t *testing.T) {
	e := protectedEcho(JWTAuth(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token ist ungültig oder abgelaufen.")
}

func TestJWTAuthExpiredToken(t *testing.T) {
	e := protectedEcho(JWTAuth(testSecret))

	tok, err := utils.NewAccessToken(testSecret, 7, model.RoleListener, -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthValidTokenInjectsClaims(t *testing.T) {
	e := protectedEcho(JWTAuth(testSecret))

	tok, err := utils.NewAccessToken(testSecret, 7, model.RoleCreator, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":7`)
	assert.Contains(t, rec.Body.String(), `"role":"creator"`)
}

func TestRequireRoleRejectsListener(t *testing.T) {
	e := protectedEcho(JWTAuth(testSecret), RequireRole(model.RoleCreator))

	tok, err := utils.NewAccessToken(testSecret, 7, model.RoleListener, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nur Creators")
}

func TestRequireRoleAllowsCreator(t *testing.T) {
	e := protectedEcho(JWTAuth(testSecret), RequireRole(model.RoleCreator))

	tok, err := utils.NewAccessToken(testSecret, 7, model.RoleCreator, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
