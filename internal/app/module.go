package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/trademint/backend/internal/app/api/server"
	"github.com/trademint/backend/internal/app/service/alert"
	"github.com/trademint/backend/internal/app/service/auth"
	"github.com/trademint/backend/internal/app/service/catalog"
	"github.com/trademint/backend/internal/app/service/payment"
	"github.com/trademint/backend/internal/app/service/stats"
	"github.com/trademint/backend/internal/app/service/subscription"
	"github.com/trademint/backend/internal/app/service/trader"
	"github.com/trademint/backend/internal/platform/db"
	"github.com/trademint/backend/internal/platform/razorpay"
	"github.com/trademint/backend/pkg/config"
	"github.com/trademint/backend/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	razorpay.Module,
	server.Module,
	auth.Module,
	trader.Module,
	catalog.Module,
	subscription.Module,
	payment.Module,
	alert.Module,
	stats.Module,
)
