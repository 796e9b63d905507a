// Package metrics defines the back-office Prometheus metrics and the
// decorators that record them around the policy components.
//
// Metrics are registered on the default registry at package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "backoffice"

// AuthzDecisionsTotal counts authorization decisions.
// Labels:
//   - kind: principal kind, "owner" or "staff"
//   - result: "allow" or "deny"
var AuthzDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_decisions_total",
		Help:      "Total number of authorization decisions, by principal kind and result.",
	},
	[]string{"kind", "result"},
)

// AuthFailuresTotal counts bearer tokens that did not resolve to a principal.
var AuthFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of rejected bearer tokens.",
	},
)

// LimitChecksTotal counts subscription quota checks.
// Labels:
//   - resource: "stores", "products" or "staff"
//   - result: "allow", "limit_exceeded", "no_subscription" or "error"
var LimitChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "limit_checks_total",
		Help:      "Total number of resource quota checks, by resource kind and result.",
	},
	[]string{"resource", "result"},
)

// FeatureChecksTotal counts plan feature checks.
// Labels:
//   - feature: the feature name (e.g. "advanced_reports")
//   - result: "allow", "unavailable", "no_subscription" or "error"
var FeatureChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feature_checks_total",
		Help:      "Total number of plan feature checks, by feature and result.",
	},
	[]string{"feature", "result"},
)

// SubscriptionsGrantedTotal counts successful subscribe calls.
// Label:
//   - plan: the granted plan name
var SubscriptionsGrantedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "subscriptions_granted_total",
		Help:      "Total number of subscriptions granted, by plan.",
	},
	[]string{"plan"},
)

// SubscriptionsCancelledTotal counts owner-initiated cancellations.
var SubscriptionsCancelledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "subscriptions_cancelled_total",
		Help:      "Total number of subscriptions cancelled by their owner.",
	},
)
