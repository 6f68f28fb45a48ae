package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trademint/backend/internal/app/api/middleware"
	"github.com/trademint/backend/internal/app/service/auth"
	"github.com/trademint/backend/internal/app/service/stats"
	subsvc "github.com/trademint/backend/internal/app/service/subscription"
	"github.com/trademint/backend/internal/app/service/trader"
	"github.com/trademint/backend/pkg/response"
	"github.com/trademint/backend/pkg/types"
)

// @Summary      List pending traders (Admin)
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.APIResponse[[]models.Trader]
// @Router       /api/v1/admin/traders/pending [get]
func ApiListPendingTraders(traderSvc *trader.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		traders, err := traderSvc.ListPending(c.Request.Context())
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(traders))
	}
}

// @Summary      List traders (Admin)
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "filter by approval status"  Enums(PENDING, APPROVED, REJECTED)
// @Success      200     {object}  response.APIResponse[[]models.Trader]
// @Router       /api/v1/admin/traders [get]
func ApiListTraders(traderSvc *trader.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		traders, err := traderSvc.ListAll(c.Request.Context(), types.ApprovalStatus(c.Query("status")))
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(traders))
	}
}

// @Summary      Approve a trader (Admin)
// @Description  Idempotence guard: approving an already approved trader fails
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "trader id"
// @Success      200  {object}  response.APIResponse[models.Trader]
// @Router       /api/v1/admin/traders/{id}/approve [post]
func ApiApproveTrader(traderSvc *trader.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := traderSvc.Approve(c.Request.Context(), c.Param("id"), middleware.CurrentUser(c).ID)
		if err != nil {
			switch {
			case errors.Is(err, trader.ErrTraderNotFound):
				notFound(c, err)
			case errors.Is(err, trader.ErrAlreadyApproved):
				badRequest(c, err)
			default:
				serverError(c, err)
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(t))
	}
}

type RejectTraderRequest struct {
	Reason string `json:"reason"`
}

// @Summary      Reject a trader (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true   "trader id"
// @Param        request  body      RejectTraderRequest  false  "reason"
// @Success      200      {object}  response.APIResponse[models.Trader]
// @Router       /api/v1/admin/traders/{id}/reject [post]
func ApiRejectTrader(traderSvc *trader.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RejectTraderRequest
		_ = c.ShouldBindJSON(&req)

		t, err := traderSvc.Reject(c.Request.Context(), c.Param("id"), middleware.CurrentUser(c).ID, req.Reason)
		if err != nil {
			if errors.Is(err, trader.ErrTraderNotFound) {
				notFound(c, err)
				return
			}
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(t))
	}
}

// @Summary      Revoke trader approval (Admin)
// @Description  Moves the trader back to PENDING and deactivates their services
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "trader id"
// @Success      200  {object}  response.APIResponse[map[string]bool]
// @Router       /api/v1/admin/traders/{id}/revoke [post]
func ApiRevokeTrader(traderSvc *trader.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := traderSvc.Revoke(c.Request.Context(), c.Param("id"), middleware.CurrentUser(c).ID)
		if err != nil {
			switch {
			case errors.Is(err, trader.ErrTraderNotFound):
				notFound(c, err)
			case errors.Is(err, trader.ErrNotYetApproved):
				badRequest(c, err)
			default:
				serverError(c, err)
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]bool{"revoked": true}))
	}
}

// @Summary      List services (Admin)
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        is_active  query     bool  false  "filter by active flag"
// @Success      200        {object}  response.APIResponse[[]models.Service]
// @Router       /api/v1/admin/services [get]
func ApiAdminListServices(traderSvc *trader.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var isActive *bool
		if v := c.Query("is_active"); v != "" {
			b := v == "true"
			isActive = &b
		}

		services, err := traderSvc.ListAllServices(c.Request.Context(), isActive)
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(services))
	}
}

// @Summary      Deactivate a service (Admin)
// @Description  Pulls the service off the marketplace; existing subscriptions run out on their own end dates
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "service id"
// @Success      200  {object}  response.APIResponse[models.Service]
// @Router       /api/v1/admin/services/{id}/deactivate [post]
func ApiAdminDeactivateService(traderSvc *trader.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc, err := traderSvc.DeactivateService(c.Request.Context(), c.Param("id"), middleware.CurrentUser(c).ID)
		if err != nil {
			if errors.Is(err, trader.ErrServiceNotFound) {
				notFound(c, err)
				return
			}
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(svc))
	}
}

// @Summary      List subscriptions (Admin)
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "filter by stored status"  Enums(ACTIVE, EXPIRED, CANCELLED)
// @Success      200     {object}  response.APIResponse[[]models.Subscription]
// @Router       /api/v1/admin/subscriptions [get]
func ApiAdminListSubscriptions(subSvc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		subs, err := subSvc.ListAll(c.Request.Context(), types.SubscriptionStatus(c.Query("status")))
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(subs))
	}
}

// @Summary      Platform statistics (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      stats.Request  true  "data items"
// @Success      200      {object}  response.APIResponse[stats.Response]
// @Router       /api/v1/admin/statistics [post]
func ApiPlatformStatistics(statsSvc *stats.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req stats.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		res, err := statsSvc.GetPlatformStatistic(c.Request.Context(), &req)
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, authSvc *auth.Service, traderSvc *trader.Service, subSvc *subsvc.Service, statsSvc *stats.Service) {
	g := r.Group("/admin")
	g.Use(middleware.Authenticate(authSvc), middleware.RequireRoles(types.RoleAdmin))
	g.GET("/traders", ApiListTraders(traderSvc))
	g.GET("/traders/pending", ApiListPendingTraders(traderSvc))
	g.POST("/traders/:id/approve", ApiApproveTrader(traderSvc))
	g.POST("/traders/:id/reject", ApiRejectTrader(traderSvc))
	g.POST("/traders/:id/revoke", ApiRevokeTrader(traderSvc))
	g.GET("/services", ApiAdminListServices(traderSvc))
	g.POST("/services/:id/deactivate", ApiAdminDeactivateService(traderSvc))
	g.GET("/subscriptions", ApiAdminListSubscriptions(subSvc))
	g.POST("/statistics", ApiPlatformStatistics(statsSvc))
}
