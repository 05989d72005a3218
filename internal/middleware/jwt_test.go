package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yubin-dev/roomescape/internal/utils"
)

const testSecret = "test-secret"

func protectedEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	g := e.Group("/p", mw...)
	g.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"role": c.Get("role")})
	})
	return e
}

func issueToken(t *testing.T, role string) string {
	t.Helper()
	access, err := utils.NewAccessToken(testSecret, 7, role, 5)
	require.NoError(t, err)
	return access.Token
}

func TestJWTAuthAcceptsCookie(t *testing.T) {
	e := protectedEcho(JWTAuth(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/p/me", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: issueToken(t, "USER")})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "USER")
}

func TestJWTAuthAcceptsBearerFallback(t *testing.T) {
	e := protectedEcho(JWTAuth(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/p/me", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, "USER"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	e := protectedEcho(JWTAuth(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/p/me", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	e := protectedEcho(JWTAuth("other-secret"))

	req := httptest.NewRequest(http.MethodGet, "/p/me", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: issueToken(t, "USER")})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleGatesAdminRoutes(t *testing.T) {
	e := protectedEcho(JWTAuth(testSecret), RequireRole("ADMIN"))

	req := httptest.NewRequest(http.MethodGet, "/p/me", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: issueToken(t, "USER")})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/p/me", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: issueToken(t, "ADMIN")})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleRejectsMissingRole(t *testing.T) {
	// no JWTAuth in front, so the role key is absent from context
	e := protectedEcho(RequireRole("ADMIN"))

	req := httptest.NewRequest(http.MethodGet, "/p/me", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
