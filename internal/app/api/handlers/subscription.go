package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/trademint/backend/internal/app/api/middleware"
	"github.com/trademint/backend/internal/app/service/alert"
	"github.com/trademint/backend/internal/app/service/auth"
	subsvc "github.com/trademint/backend/internal/app/service/subscription"
	"github.com/trademint/backend/pkg/response"
	"github.com/trademint/backend/pkg/types"
)

// @Summary      List own subscriptions
// @Description  Enriched with service and trader context; expiry is computed against the clock
// @Tags         Subscription
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "filter by stored status"  Enums(ACTIVE, EXPIRED, CANCELLED)
// @Success      200     {object}  response.APIResponse[[]subscription.Detail]
// @Router       /api/v1/subscriptions [get]
func ApiListSubscriptions(subSvc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		details, err := subSvc.ListDetailsForUser(c.Request.Context(),
			middleware.CurrentUser(c).ID, types.SubscriptionStatus(c.Query("status")))
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(details))
	}
}

type EligibilityResponse struct {
	Eligible bool             `json:"eligible"`
	Conflict *subsvc.Conflict `json:"conflict,omitempty"`
	Message  string           `json:"message,omitempty"`
}

// @Summary      Check subscription eligibility
// @Description  Advisory duplicate check before checkout; the create path re-checks authoritatively
// @Tags         Subscription
// @Produce      json
// @Security     BearerAuth
// @Param        service_id  path      string  true  "service id"
// @Success      200         {object}  response.APIResponse[EligibilityResponse]
// @Router       /api/v1/subscriptions/eligibility/{service_id} [get]
func ApiCheckEligibility(subSvc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		conflict, err := subSvc.Eligibility(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("service_id"))
		if err != nil {
			serverError(c, err)
			return
		}

		resp := EligibilityResponse{Eligible: conflict == nil}
		if conflict != nil {
			resp.Conflict = conflict
			resp.Message = "You already have an active subscription for this service until " + conflict.FormattedEndDate()
		}
		c.JSON(http.StatusOK, response.OKT(resp))
	}
}

type CreateSubscriptionRequest struct {
	ServiceID    string `json:"service_id" binding:"required"`
	DurationDays int    `json:"duration_days"`
}

// @Summary      Create a subscription
// @Description  Direct activation without a payment reference; the duplicate-active invariant is enforced authoritatively
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      CreateSubscriptionRequest  true  "subscription"
// @Success      200      {object}  response.APIResponse[models.Subscription]
// @Router       /api/v1/subscriptions [post]
func ApiCreateSubscription(subSvc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		sub, err := subSvc.Create(c.Request.Context(), nil, middleware.CurrentUser(c).ID, req.ServiceID, nil, req.DurationDays)
		if err != nil {
			switch {
			case errors.Is(err, subsvc.ErrServiceNotFound):
				notFound(c, err)
			case errors.Is(err, subsvc.ErrServiceInactive),
				errors.Is(err, subsvc.ErrTraderNotApproved),
				errors.Is(err, subsvc.ErrAlreadySubscribed):
				badRequest(c, err)
			default:
				serverError(c, err)
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      Get one subscription
// @Tags         Subscription
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "subscription id"
// @Success      200  {object}  response.APIResponse[models.Subscription]
// @Router       /api/v1/subscriptions/{id} [get]
func ApiGetSubscription(subSvc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := subSvc.Get(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"))
		if err != nil {
			if errors.Is(err, subsvc.ErrNotFound) {
				notFound(c, err)
				return
			}
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      Cancel a subscription
// @Tags         Subscription
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "subscription id"
// @Success      200  {object}  response.APIResponse[models.Subscription]
// @Router       /api/v1/subscriptions/{id}/cancel [post]
func ApiCancelSubscription(subSvc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := subSvc.Cancel(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"))
		if err != nil {
			switch {
			case errors.Is(err, subsvc.ErrNotFound):
				notFound(c, err)
			case errors.Is(err, subsvc.ErrNotActive):
				badRequest(c, err)
			default:
				serverError(c, err)
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      Alerts for a subscribed service
// @Description  Requires an effectively active subscription on the service
// @Tags         Subscription
// @Produce      json
// @Security     BearerAuth
// @Param        service_id  path      string  true  "service id"
// @Success      200         {object}  response.APIResponse[[]models.TradeAlert]
// @Router       /api/v1/subscriptions/services/{service_id}/alerts [get]
func ApiServiceAlerts(alertSvc *alert.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		alerts, err := alertSvc.ListForService(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("service_id"))
		if err != nil {
			if errors.Is(err, alert.ErrNoActiveSubscription) {
				forbidden(c, err)
				return
			}
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(alerts))
	}
}

// @Summary      Alert feed across subscribed services
// @Tags         Subscription
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "max alerts, default 50"
// @Success      200    {object}  response.APIResponse[[]alert.FeedItem]
// @Router       /api/v1/subscriptions/alerts/feed [get]
func ApiAlertFeed(alertSvc *alert.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if v := c.Query("limit"); v != "" {
			limit, _ = strconv.Atoi(v)
		}
		feed, err := alertSvc.FeedForUser(c.Request.Context(), middleware.CurrentUser(c).ID, limit)
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(feed))
	}
}

func RegisterSubscriptionRoutes(r gin.IRouter, authSvc *auth.Service, subSvc *subsvc.Service, alertSvc *alert.Service) {
	g := r.Group("/subscriptions")
	g.Use(middleware.Authenticate(authSvc), middleware.RequireRoles(types.RoleClient))
	g.GET("", ApiListSubscriptions(subSvc))
	g.POST("", ApiCreateSubscription(subSvc))
	g.GET("/eligibility/:service_id", ApiCheckEligibility(subSvc))
	g.GET("/alerts/feed", ApiAlertFeed(alertSvc))
	g.GET("/services/:service_id/alerts", ApiServiceAlerts(alertSvc))
	g.GET("/:id", ApiGetSubscription(subSvc))
	g.POST("/:id/cancel", ApiCancelSubscription(subSvc))
}
