package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trademint/backend/internal/app/service/catalog"
	"github.com/trademint/backend/pkg/response"
)

// @Summary      List marketplace offerings
// @Description  Active services of approved traders, one offering per distinct name with tiers merged
// @Tags         Marketplace
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]catalog.Offering]
// @Router       /api/v1/marketplace/services [get]
func ApiListOfferings(catalogSvc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		offerings, err := catalogSvc.ListOfferings(c.Request.Context())
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(offerings))
	}
}

// @Summary      List approved traders
// @Tags         Marketplace
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]catalog.TraderListing]
// @Router       /api/v1/marketplace/traders [get]
func ApiListMarketplaceTraders(catalogSvc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		traders, err := catalogSvc.ListTraders(c.Request.Context())
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(traders))
	}
}

// @Summary      Trader detail
// @Tags         Marketplace
// @Produce      json
// @Param        id   path      string  true  "trader id"
// @Success      200  {object}  response.APIResponse[catalog.TraderDetail]
// @Router       /api/v1/marketplace/traders/{id} [get]
func ApiGetMarketplaceTrader(catalogSvc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := catalogSvc.GetTraderDetail(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, catalog.ErrTraderNotFound) {
				notFound(c, err)
				return
			}
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(detail))
	}
}

// @Summary      One trader's offerings
// @Tags         Marketplace
// @Produce      json
// @Param        id   path      string  true  "trader id"
// @Success      200  {object}  response.APIResponse[[]catalog.Offering]
// @Router       /api/v1/marketplace/traders/{id}/services [get]
func ApiTraderOfferings(catalogSvc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		offerings, err := catalogSvc.TraderOfferings(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, catalog.ErrTraderNotFound) {
				notFound(c, err)
				return
			}
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(offerings))
	}
}

// The marketplace is readable without authentication.
func RegisterMarketplaceRoutes(r gin.IRouter, catalogSvc *catalog.Service) {
	mp := r.Group("/marketplace")
	mp.GET("/services", ApiListOfferings(catalogSvc))
	mp.GET("/traders", ApiListMarketplaceTraders(catalogSvc))
	mp.GET("/traders/:id", ApiGetMarketplaceTrader(catalogSvc))
	mp.GET("/traders/:id/services", ApiTraderOfferings(catalogSvc))
}
