package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trademint/backend/internal/app/api/middleware"
	"github.com/trademint/backend/internal/app/service/auth"
	"github.com/trademint/backend/internal/app/service/payment"
	"github.com/trademint/backend/pkg/response"
	"github.com/trademint/backend/pkg/types"
)

// @Summary      Create payment order
// @Description  Creates a gateway order and a CREATED payment record; eligibility is re-checked
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      payment.CreateOrderRequest  true  "order"
// @Success      200      {object}  response.APIResponse[payment.OrderDescriptor]
// @Router       /api/v1/payments/create-order [post]
func ApiCreateOrder(paySvc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		order, err := paySvc.CreateOrder(c.Request.Context(), middleware.CurrentUser(c), &req)
		if err != nil {
			switch {
			case errors.Is(err, payment.ErrClientOnly):
				forbidden(c, err)
			case errors.Is(err, payment.ErrServiceNotFound):
				notFound(c, err)
			case errors.Is(err, payment.ErrServiceInactive), errors.Is(err, payment.ErrAlreadySubscribed):
				badRequest(c, err)
			default:
				serverError(c, err)
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(order))
	}
}

// @Summary      Verify payment
// @Description  Checks the gateway signature, captures the payment and activates the subscription atomically
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      payment.VerifyRequest  true  "signed bundle"
// @Success      200      {object}  response.APIResponse[payment.VerifyResult]
// @Router       /api/v1/payments/verify [post]
func ApiVerifyPayment(paySvc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.VerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		result, err := paySvc.Verify(c.Request.Context(), middleware.CurrentUser(c), &req)
		if err != nil {
			switch {
			case errors.Is(err, payment.ErrInvalidSignature), errors.Is(err, payment.ErrAlreadyProcessed):
				badRequest(c, err)
			case errors.Is(err, payment.ErrPaymentNotFound), errors.Is(err, payment.ErrServiceNotFound):
				notFound(c, err)
			default:
				serverError(c, err)
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(result))
	}
}

// @Summary      List own payments
// @Tags         Payment
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.APIResponse[[]models.Payment]
// @Router       /api/v1/payments [get]
func ApiListPayments(paySvc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		payments, err := paySvc.ListForUser(c.Request.Context(), middleware.CurrentUser(c).ID)
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(payments))
	}
}

// @Summary      Get one payment
// @Tags         Payment
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "payment id"
// @Success      200  {object}  response.APIResponse[models.Payment]
// @Router       /api/v1/payments/{id} [get]
func ApiGetPayment(paySvc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := paySvc.Get(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"))
		if err != nil {
			if errors.Is(err, payment.ErrPaymentNotFound) {
				notFound(c, err)
				return
			}
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

func RegisterPaymentRoutes(r gin.IRouter, authSvc *auth.Service, paySvc *payment.Service) {
	g := r.Group("/payments")
	g.Use(middleware.Authenticate(authSvc), middleware.RequireRoles(types.RoleClient))
	g.POST("/create-order", ApiCreateOrder(paySvc))
	g.POST("/verify", ApiVerifyPayment(paySvc))
	g.GET("", ApiListPayments(paySvc))
	g.GET("/:id", ApiGetPayment(paySvc))
}
