package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	subsvc "github.com/trademint/backend/internal/app/service/subscription"
	cfgpkg "github.com/trademint/backend/pkg/config"
	"github.com/trademint/backend/pkg/response"
)

// @Summary      Expire overdue subscriptions
// @Description  Persists EXPIRED for ACTIVE rows past their end date. Reads never depend on this sweep. Guarded by a shared secret header.
// @Tags         System
// @Produce      json
// @Param        X-Cron-Secret  header    string  true  "shared secret"
// @Success      200            {object}  response.APIResponse[map[string]int64]
// @Router       /api/v1/cron/expire-subscriptions [post]
func ApiExpireSubscriptions(subSvc *subsvc.Service, cfg *cfgpkg.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.CronSecret == "" ||
			subtle.ConstantTimeCompare([]byte(c.GetHeader("X-Cron-Secret")), []byte(cfg.CronSecret)) != 1 {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized,
				"invalid cron secret"))
			return
		}

		expired, err := subSvc.ExpireOverdue(c.Request.Context())
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]int64{"expired": expired}))
	}
}

func RegisterCronRoutes(r gin.IRouter, subSvc *subsvc.Service, cfg *cfgpkg.Config) {
	r.POST("/cron/expire-subscriptions", ApiExpireSubscriptions(subSvc, cfg))
}
