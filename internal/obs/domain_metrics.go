package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CheckoutTotal counts checkout attempts by payment method and outcome.
	CheckoutTotal *prometheus.CounterVec
	// LedgerOperationsTotal counts ledger load/append/clear outcomes.
	LedgerOperationsTotal *prometheus.CounterVec
	// SalesAmountTotal accumulates the rupiah amount of completed transactions.
	SalesAmountTotal prometheus.Counter
	// CartEventsTotal counts cart mutations by kind.
	CartEventsTotal *prometheus.CounterVec
	// BreakerState reports the current breaker state per target: 0=closed, 1=open, 2=half-open.
	BreakerState *prometheus.GaugeVec
	// BreakerTransitions counts breaker state changes.
	BreakerTransitions *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Count of checkout attempts by payment method and result.",
		}, []string{"method", "result"})
		LedgerOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_operations_total",
			Help:      "Count of transaction ledger operations by result.",
		}, []string{"op", "result"})
		SalesAmountTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_amount_total",
			Help:      "Total rupiah amount of completed transactions.",
		})
		CartEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_events_total",
			Help:      "Count of cart mutations by kind.",
		}, []string{"kind"})
		BreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Current breaker state: 0=closed, 1=open, 2=half-open.",
		}, []string{"target"})
		BreakerTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaker_transition_total",
			Help:      "Count of breaker state transitions.",
		}, []string{"target", "from", "to"})

		CheckoutTotal = register(reg, CheckoutTotal)
		LedgerOperationsTotal = register(reg, LedgerOperationsTotal)
		SalesAmountTotal = register(reg, SalesAmountTotal)
		CartEventsTotal = register(reg, CartEventsTotal)
		BreakerState = register(reg, BreakerState)
		BreakerTransitions = register(reg, BreakerTransitions)
	})
}

// ObserveCheckout records a checkout attempt outcome when metrics are registered.
func ObserveCheckout(method, result string) {
	if CheckoutTotal == nil {
		return
	}
	CheckoutTotal.WithLabelValues(method, result).Inc()
}

// ObserveLedgerOp records a ledger operation outcome when metrics are registered.
func ObserveLedgerOp(op string, err error) {
	if LedgerOperationsTotal == nil {
		return
	}
	LedgerOperationsTotal.WithLabelValues(op, resultLabel(err)).Inc()
}

// ObserveBreakerState publishes the breaker state gauge.
func ObserveBreakerState(target string, state int) {
	if BreakerState == nil {
		return
	}
	BreakerState.WithLabelValues(target).Set(float64(state))
}

// ObserveBreakerTransition counts a breaker state change.
func ObserveBreakerTransition(target, from, to string) {
	if BreakerTransitions == nil {
		return
	}
	BreakerTransitions.WithLabelValues(target, from, to).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
