package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trademint/backend/internal/models"
	"github.com/trademint/backend/pkg/response"
	"github.com/trademint/backend/pkg/types"
)

func guardedRouter(user *models.User, allowed ...types.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected",
		func(c *gin.Context) {
			if user != nil {
				c.Set(userContextKey, user)
			}
			c.Next()
		},
		RequireRoles(allowed...),
		func(c *gin.Context) { c.JSON(http.StatusOK, response.OKT("ok")) },
	)
	return r
}

func doGuarded(t *testing.T, r *gin.Engine) (*httptest.ResponseRecorder, GuardPayload) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	var body response.APIResponse[GuardPayload]
	if w.Code != http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body.Data
}

func TestRequireRoles_WrongRoleRedirectsToOwnHomeNeverLogin(t *testing.T) {
	tests := []struct {
		name         string
		role         types.Role
		allowed      []types.Role
		wantRedirect string
	}{
		{"trader on client route", types.RoleTrader, []types.Role{types.RoleClient}, "/trader/dashboard"},
		{"client on trader route", types.RoleClient, []types.Role{types.RoleTrader}, "/client/dashboard"},
		{"client on admin route", types.RoleClient, []types.Role{types.RoleAdmin}, "/client/dashboard"},
		{"trader on admin route", types.RoleTrader, []types.Role{types.RoleAdmin}, "/trader/dashboard"},
		{"admin on client route", types.RoleAdmin, []types.Role{types.RoleClient}, "/admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := guardedRouter(&models.User{ID: "u1", Role: tt.role}, tt.allowed...)
			w, payload := doGuarded(t, r)

			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Equal(t, tt.wantRedirect, payload.Redirect)
			assert.NotEqual(t, types.LoginRoute, payload.Redirect)
		})
	}
}

func TestRequireRoles_EmptySetAllowsAnyAuthenticatedRole(t *testing.T) {
	for _, role := range []types.Role{types.RoleClient, types.RoleTrader, types.RoleAdmin} {
		t.Run(string(role), func(t *testing.T) {
			r := guardedRouter(&models.User{ID: "u1", Role: role})
			w, _ := doGuarded(t, r)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestRequireRoles_AllowedRolePasses(t *testing.T) {
	r := guardedRouter(&models.User{ID: "u1", Role: types.RoleClient}, types.RoleClient, types.RoleAdmin)
	w, _ := doGuarded(t, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoles_MissingUserRedirectsToLogin(t *testing.T) {
	r := guardedRouter(nil, types.RoleClient)
	w, payload := doGuarded(t, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, types.LoginRoute, payload.Redirect)
}
