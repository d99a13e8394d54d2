// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ledger"

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	// CouponRedemptions counts redemption attempts by outcome
	// (ok, not_found, expired, exhausted, already_redeemed, disabled, error).
	CouponRedemptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "coupon_redemptions_total",
		Help:      "Coupon redemption attempts by result.",
	}, []string{"result"})

	// StorePurchases counts purchase attempts by resource and outcome.
	StorePurchases = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_purchases_total",
		Help:      "Store purchase attempts by resource and result.",
	}, []string{"resource", "result"})

	// CreditsIssued sums credits added to accounts by source (coupon, referral, admin).
	CreditsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credits_issued_total",
		Help:      "Credits added to account balances by source.",
	}, []string{"source"})

	// CreditsSpent sums credits removed from accounts by source (store, admin).
	CreditsSpent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credits_spent_total",
		Help:      "Credits debited from account balances by source.",
	}, []string{"source"})

	// EventsDropped counts notification events discarded because the queue was full.
	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Notification events dropped because the dispatch queue was full.",
	})

	// EventsDelivered counts sink deliveries by sink and outcome.
	EventsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_delivered_total",
		Help:      "Notification deliveries by sink and result.",
	}, []string{"sink", "result"})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
