package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"photoselect/internal/security"
)

func csrfTestRouter(store *security.CSRFStore, sessionID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextClaims, security.AccessClaims{UserID: "u1", SessionID: sessionID})
	})
	router.Use(CSRF(store))
	router.POST("/mutate", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/read", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestCSRFMiddlewareAllowsValidToken(t *testing.T) {
	store := security.NewCSRFStore(time.Hour)
	token, err := store.Issue("sess-1")
	require.NoError(t, err)

	router := csrfTestRouter(store, "sess-1")

	req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.Header.Set("X-CSRF-Token", token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFMiddlewareRejectsMissingToken(t *testing.T) {
	store := security.NewCSRFStore(time.Hour)
	router := csrfTestRouter(store, "sess-1")

	req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "csrf_missing")
}

func TestCSRFMiddlewareRejectsForgedToken(t *testing.T) {
	store := security.NewCSRFStore(time.Hour)
	_, err := store.Issue("sess-1")
	require.NoError(t, err)

	router := csrfTestRouter(store, "sess-1")

	req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.Header.Set("X-CSRF-Token", "forged")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "csrf_invalid")
}

func TestCSRFMiddlewareRejectsOtherSessionsToken(t *testing.T) {
	store := security.NewCSRFStore(time.Hour)
	otherToken, err := store.Issue("sess-2")
	require.NoError(t, err)

	router := csrfTestRouter(store, "sess-1")

	req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.Header.Set("X-CSRF-Token", otherToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFMiddlewareSkipsSafeMethods(t *testing.T) {
	store := security.NewCSRFStore(time.Hour)
	router := csrfTestRouter(store, "sess-1")

	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}
