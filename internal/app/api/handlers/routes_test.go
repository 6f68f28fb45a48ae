package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRegisterRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1")
	RegisterAuthRoutes(g, nil)
	RegisterMarketplaceRoutes(g, nil)
	RegisterTraderRoutes(g, nil, nil, nil, nil)
	RegisterSubscriptionRoutes(g, nil, nil, nil)
	RegisterPaymentRoutes(g, nil, nil)
	RegisterAdminRoutes(g, nil, nil, nil, nil)
	RegisterCronRoutes(g, nil, nil)

	routes := r.Routes()
	contains := func(target string) bool {
		for _, rt := range routes {
			if rt.Method+" "+rt.Path == target {
				return true
			}
		}
		return false
	}

	require.True(t, contains("POST /api/v1/auth/register"))
	require.True(t, contains("POST /api/v1/auth/login"))
	require.True(t, contains("GET /api/v1/marketplace/services"))
	require.True(t, contains("GET /api/v1/marketplace/traders/:id"))
	require.True(t, contains("POST /api/v1/traders/validate"))
	require.True(t, contains("POST /api/v1/traders/onboard"))
	require.True(t, contains("POST /api/v1/traders/me/alerts"))
	require.True(t, contains("GET /api/v1/subscriptions/eligibility/:service_id"))
	require.True(t, contains("POST /api/v1/subscriptions"))
	require.True(t, contains("POST /api/v1/payments/create-order"))
	require.True(t, contains("POST /api/v1/payments/verify"))
	require.True(t, contains("POST /api/v1/admin/traders/:id/approve"))
	require.True(t, contains("GET /api/v1/admin/services"))
	require.True(t, contains("POST /api/v1/admin/services/:id/deactivate"))
	require.True(t, contains("GET /api/v1/admin/subscriptions"))
	require.True(t, contains("POST /api/v1/cron/expire-subscriptions"))
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterHealthRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ok")
}
