package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/trademint/backend/docs"
	"github.com/trademint/backend/internal/app/api/handlers"
	mw "github.com/trademint/backend/internal/app/api/middleware"
	"github.com/trademint/backend/internal/app/service/alert"
	"github.com/trademint/backend/internal/app/service/auth"
	"github.com/trademint/backend/internal/app/service/catalog"
	"github.com/trademint/backend/internal/app/service/payment"
	"github.com/trademint/backend/internal/app/service/stats"
	subsvc "github.com/trademint/backend/internal/app/service/subscription"
	"github.com/trademint/backend/internal/app/service/trader"
	cfgpkg "github.com/trademint/backend/pkg/config"
	metrics "github.com/trademint/backend/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Request tracing only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

func registerRoutes(
	r *gin.Engine,
	log *zap.SugaredLogger,
	cfg *cfgpkg.Config,
	authSvc *auth.Service,
	traderSvc *trader.Service,
	catalogSvc *catalog.Service,
	subSvc *subsvc.Service,
	paySvc *payment.Service,
	alertSvc *alert.Service,
	statsSvc *stats.Service,
) {
	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())

	handlers.RegisterAuthRoutes(apiV1, authSvc)
	handlers.RegisterMarketplaceRoutes(apiV1, catalogSvc)
	handlers.RegisterTraderRoutes(apiV1, authSvc, traderSvc, subSvc, alertSvc)
	handlers.RegisterSubscriptionRoutes(apiV1, authSvc, subSvc, alertSvc)
	handlers.RegisterPaymentRoutes(apiV1, authSvc, paySvc)
	handlers.RegisterAdminRoutes(apiV1, authSvc, traderSvc, subSvc, statsSvc)
	handlers.RegisterCronRoutes(apiV1, subSvc, cfg)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
