package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/trademint/backend/internal/app/service/auth"
	"github.com/trademint/backend/internal/models"
	"github.com/trademint/backend/pkg/response"
	"github.com/trademint/backend/pkg/types"
)

const userContextKey = "currentUser"

// GuardPayload tells the frontend where to send a rejected request. Missing
// or invalid credentials point at login; a wrong role points at the caller's
// own home, never at login.
type GuardPayload struct {
	Detail   string `json:"detail"`
	Redirect string `json:"redirect"`
}

// Authenticate resolves the bearer token to a full user row and stores it on
// the context. Aborts with 401 when the token is missing, expired, or the
// subject no longer exists.
func Authenticate(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT(response.APIResponseCodeUnauthorized,
				GuardPayload{Detail: "could not validate credentials", Redirect: types.LoginRoute}))
			return
		}

		email, _, err := authSvc.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT(response.APIResponseCodeUnauthorized,
				GuardPayload{Detail: "could not validate credentials", Redirect: types.LoginRoute}))
			return
		}

		user, err := authSvc.GetByEmail(c.Request.Context(), email)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT(response.APIResponseCodeUnauthorized,
				GuardPayload{Detail: "could not validate credentials", Redirect: types.LoginRoute}))
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireRoles rejects authenticated callers whose role is not in the allow
// list. An empty list means any authenticated role. The redirect always
// targets the caller's own home route, so a trader hitting a client route is
// sent to the trader dashboard rather than bounced to login.
func RequireRoles(roles ...types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT(response.APIResponseCodeUnauthorized,
				GuardPayload{Detail: "could not validate credentials", Redirect: types.LoginRoute}))
			return
		}
		if len(roles) == 0 {
			c.Next()
			return
		}
		if !lo.Contains(roles, user.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorT(response.APIResponseCodeForbidden,
				GuardPayload{Detail: "access denied for role " + string(user.Role), Redirect: user.Role.HomeRoute()}))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by Authenticate, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
