package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// BillQuoteTotal counts bill quote computations by outcome.
	BillQuoteTotal *prometheus.CounterVec
	// BillGeneratedTotal counts bill generation attempts by outcome.
	BillGeneratedTotal *prometheus.CounterVec
	// BillAmountMinor records final bill amounts in minor currency units.
	BillAmountMinor prometheus.Histogram
	// RevenueQueryTotal counts daily revenue report requests by cache outcome.
	RevenueQueryTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers billing-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		BillQuoteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bill_quote_total",
			Help:      "Count of bill quote computations by outcome.",
		}, []string{"result"})
		BillGeneratedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bill_generated_total",
			Help:      "Count of bill generation attempts by outcome.",
		}, []string{"result"})
		BillAmountMinor = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bill_amount_minor",
			Help:      "Final bill amounts in minor currency units.",
			Buckets:   []float64{1000, 5000, 10000, 50000, 100000, 500000, 1000000},
		})
		RevenueQueryTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revenue_query_total",
			Help:      "Count of daily revenue report requests by cache outcome.",
		}, []string{"source"})

		mustRegisterCollector(reg, BillQuoteTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				BillQuoteTotal = v
			}
		})
		mustRegisterCollector(reg, BillGeneratedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				BillGeneratedTotal = v
			}
		})
		mustRegisterCollector(reg, BillAmountMinor, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				BillAmountMinor = v
			}
		})
		mustRegisterCollector(reg, RevenueQueryTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				RevenueQueryTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
