package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Marketplace business counters, incremented from the service layer.
var (
	PaymentOrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "marketplace",
		Name:      "payment_orders_created_total",
		Help:      "Razorpay orders created.",
	})

	PaymentsVerified = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "marketplace",
		Name:      "payments_verified_total",
		Help:      "Payment verification outcomes.",
	}, []string{"result"})

	SubscriptionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "marketplace",
		Name:      "subscriptions_created_total",
		Help:      "Subscriptions activated.",
	})

	SubscriptionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "marketplace",
		Name:      "subscriptions_expired_total",
		Help:      "Subscriptions marked EXPIRED by the sweep.",
	})

	MalformedTierRows = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "marketplace",
		Name:      "malformed_tier_rows_total",
		Help:      "Service rows whose pricing tier JSON failed to parse.",
	})
)
