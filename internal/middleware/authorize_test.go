package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"photoselect/internal/models"
	"photoselect/internal/security"
)

func authorizedRouter(user models.User, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextUser, user)
	})
	router.GET("/target", handler, func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	router := authorizedRouter(
		models.User{ID: "u1", Role: models.UserRoleSuperAdmin},
		RequireRoles(models.UserRoleSuperAdmin),
	)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/target", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesRejectsOtherRoles(t *testing.T) {
	router := authorizedRouter(
		models.User{ID: "u1", Role: models.UserRoleBusinessOwner},
		RequireRoles(models.UserRoleSuperAdmin),
	)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/target", nil))
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRecentAuth(t *testing.T) {
	tracker := security.NewSessionTracker(security.TrackerConfig{
		IdleTimeout:  30 * time.Minute,
		ReauthWindow: 5 * time.Minute,
	})
	router := authorizedRouter(
		models.User{ID: "u1", Role: models.UserRoleBusinessOwner},
		RequireRecentAuth(tracker),
	)

	// No login recorded yet.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/target", nil))
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "reauthentication_required")

	tracker.RecordLoginSuccess("u1")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/target", nil))
	require.Equal(t, http.StatusOK, w.Code)
}
