package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trademint/backend/internal/app/api/middleware"
	"github.com/trademint/backend/internal/app/service/alert"
	"github.com/trademint/backend/internal/app/service/auth"
	subsvc "github.com/trademint/backend/internal/app/service/subscription"
	"github.com/trademint/backend/internal/app/service/trader"
	"github.com/trademint/backend/pkg/response"
	"github.com/trademint/backend/pkg/types"
)

type ValidateTraderRequest struct {
	SebiReg string `json:"sebi_reg" binding:"required"`
	PanCard string `json:"pan_card" binding:"required"`
}

// @Summary      Pre-validate trader registration
// @Description  Checks PAN format and SEBI/PAN uniqueness before any credential is created. Public: runs ahead of registration.
// @Tags         Trader
// @Accept       json
// @Produce      json
// @Param        request  body      ValidateTraderRequest  true  "identifiers"
// @Success      200      {object}  response.APIResponse[map[string]bool]
// @Router       /api/v1/traders/validate [post]
func ApiValidateTrader(traderSvc *trader.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ValidateTraderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		if err := traderSvc.Validate(c.Request.Context(), req.SebiReg, req.PanCard); err != nil {
			var vErr *trader.ValidationError
			if errors.As(err, &vErr) || errors.Is(err, trader.ErrInvalidPan) {
				badRequest(c, err)
				return
			}
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]bool{"valid": true}))
	}
}

// @Summary      Onboard as trader
// @Description  Creates the trader profile in PENDING state; uniqueness is re-checked
// @Tags         Trader
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      trader.OnboardRequest  true  "profile"
// @Success      200      {object}  response.APIResponse[models.Trader]
// @Router       /api/v1/traders/onboard [post]
func ApiOnboardTrader(traderSvc *trader.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req trader.OnboardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		t, err := traderSvc.Onboard(c.Request.Context(), middleware.CurrentUser(c), &req)
		if err != nil {
			var vErr *trader.ValidationError
			switch {
			case errors.As(err, &vErr),
				errors.Is(err, trader.ErrInvalidPan),
				errors.Is(err, trader.ErrAlreadyOnboarded):
				badRequest(c, err)
			default:
				serverError(c, err)
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(t))
	}
}

// @Summary      Trader's own profile
// @Tags         Trader
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.APIResponse[models.Trader]
// @Router       /api/v1/traders/me [get]
func ApiTraderProfile(traderSvc *trader.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := traderSvc.GetByUser(c.Request.Context(), middleware.CurrentUser(c).ID)
		if err != nil {
			if errors.Is(err, trader.ErrProfileNotFound) {
				notFound(c, err)
				return
			}
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(t))
	}
}

// @Summary      Update trader profile
// @Tags         Trader
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      trader.ProfileUpdate  true  "fields"
// @Success      200      {object}  response.APIResponse[models.Trader]
// @Router       /api/v1/traders/me [patch]
func ApiUpdateTraderProfile(traderSvc *trader.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var upd trader.ProfileUpdate
		if err := c.ShouldBindJSON(&upd); err != nil {
			badRequest(c, err)
			return
		}

		t, err := traderSvc.UpdateProfile(c.Request.Context(), middleware.CurrentUser(c).ID, &upd)
		if err != nil {
			if errors.Is(err, trader.ErrProfileNotFound) {
				notFound(c, err)
				return
			}
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(t))
	}
}

// @Summary      Publish a service
// @Description  Only approved traders can publish; pricing tiers are validated
// @Tags         Trader
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      trader.CreateServiceRequest  true  "service"
// @Success      200      {object}  response.APIResponse[models.Service]
// @Router       /api/v1/traders/me/services [post]
func ApiCreateService(traderSvc *trader.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req trader.CreateServiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		svc, err := traderSvc.CreateService(c.Request.Context(), middleware.CurrentUser(c).ID, &req)
		if err != nil {
			switch {
			case errors.Is(err, trader.ErrProfileNotFound):
				notFound(c, err)
			case errors.Is(err, trader.ErrNotApproved):
				forbidden(c, err)
			default:
				badRequest(c, err)
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(svc))
	}
}

// @Summary      Trader's own services
// @Tags         Trader
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.APIResponse[[]models.Service]
// @Router       /api/v1/traders/me/services [get]
func ApiListOwnServices(traderSvc *trader.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		services, err := traderSvc.ListServices(c.Request.Context(), middleware.CurrentUser(c).ID)
		if err != nil {
			if errors.Is(err, trader.ErrProfileNotFound) {
				notFound(c, err)
				return
			}
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(services))
	}
}

// @Summary      Subscriber count for one owned service
// @Tags         Trader
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "service id"
// @Success      200  {object}  response.APIResponse[map[string]int64]
// @Router       /api/v1/traders/me/services/{id}/subscribers [get]
func ApiServiceSubscriberCount(subSvc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := subSvc.CountActiveForService(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"))
		if err != nil {
			if errors.Is(err, subsvc.ErrNotServiceProvider) {
				notFound(c, err)
				return
			}
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]int64{"active_subscribers": count}))
	}
}

// @Summary      Send a trade alert
// @Description  Records an alert against one of the calling trader's active services
// @Tags         Trader
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      alert.SendRequest  true  "alert"
// @Success      200      {object}  response.APIResponse[models.TradeAlert]
// @Router       /api/v1/traders/me/alerts [post]
func ApiSendAlert(alertSvc *alert.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req alert.SendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		a, err := alertSvc.Send(c.Request.Context(), middleware.CurrentUser(c).ID, &req)
		if err != nil {
			switch {
			case errors.Is(err, alert.ErrNotApprovedTrader):
				forbidden(c, err)
			case errors.Is(err, alert.ErrServiceNotOwned):
				notFound(c, err)
			case errors.Is(err, alert.ErrServiceInactive):
				badRequest(c, err)
			default:
				serverError(c, err)
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(a))
	}
}

// @Summary      Trader's sent alerts
// @Tags         Trader
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.APIResponse[[]models.TradeAlert]
// @Router       /api/v1/traders/me/alerts [get]
func ApiListOwnAlerts(alertSvc *alert.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		alerts, err := alertSvc.ListForTrader(c.Request.Context(), middleware.CurrentUser(c).ID)
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(alerts))
	}
}

func RegisterTraderRoutes(r gin.IRouter, authSvc *auth.Service, traderSvc *trader.Service, subSvc *subsvc.Service, alertSvc *alert.Service) {
	// validate runs before any credential exists
	r.POST("/traders/validate", ApiValidateTrader(traderSvc))

	me := r.Group("/traders")
	me.Use(middleware.Authenticate(authSvc), middleware.RequireRoles(types.RoleTrader))
	me.POST("/onboard", ApiOnboardTrader(traderSvc))
	me.GET("/me", ApiTraderProfile(traderSvc))
	me.PATCH("/me", ApiUpdateTraderProfile(traderSvc))
	me.POST("/me/services", ApiCreateService(traderSvc))
	me.GET("/me/services", ApiListOwnServices(traderSvc))
	me.GET("/me/services/:id/subscribers", ApiServiceSubscriberCount(subSvc))
	me.POST("/me/alerts", ApiSendAlert(alertSvc))
	me.GET("/me/alerts", ApiListOwnAlerts(alertSvc))
}
