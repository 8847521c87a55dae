// Package metrics exposes Prometheus instrumentation for the wallet core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsTotal counts committed ledger transactions by kind.
	TransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paisepay",
		Name:      "transactions_total",
		Help:      "Committed ledger transactions by kind.",
	}, []string{"kind"})

	// HighValueTotal counts transactions at or above the high-value threshold.
	HighValueTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "paisepay",
		Name:      "high_value_transactions_total",
		Help:      "Transactions flagged with the high-value advisory.",
	})

	// LockoutsTotal counts accounts entering the PIN lockout window.
	LockoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "paisepay",
		Name:      "pin_lockouts_total",
		Help:      "Accounts locked after repeated PIN failures.",
	})

	// RequestResolutionsTotal counts payment request resolutions by outcome.
	RequestResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paisepay",
		Name:      "payment_request_resolutions_total",
		Help:      "Payment request resolutions by final status.",
	}, []string{"status"})
)
