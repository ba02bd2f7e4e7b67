// Package metrics счётчики движка для prometheus
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collectors struct {
	BidsAccepted     prometheus.Counter
	BidsRejected     *prometheus.CounterVec
	AuctionsExtended prometheus.Counter
	AuctionsResolved *prometheus.CounterVec
	TickDuration     prometheus.Histogram
	TickFailures     prometheus.Counter
	LedgerConflicts  prometheus.Counter
}

// New создаёт счётчики и регистрирует их в reg. при nil reg регистрация пропускается (тесты).
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		BidsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auction_bids_accepted_total",
			Help: "Bids admitted to the ledger.",
		}),
		BidsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auction_bids_rejected_total",
			Help: "Bids rejected by validation.",
		}, []string{"reason"}),
		AuctionsExtended: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auction_extensions_total",
			Help: "Auto-extensions applied to auction end times.",
		}),
		AuctionsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auction_resolved_total",
			Help: "Auctions resolved, by outcome.",
		}, []string{"outcome"}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "auction_tick_duration_seconds",
			Help:    "Time spent in one resolution tick.",
			Buckets: prometheus.DefBuckets,
		}),
		TickFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auction_tick_failures_total",
			Help: "Ticks that failed to list or resolve auctions.",
		}),
		LedgerConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auction_ledger_conflicts_total",
			Help: "Bid appends re-evaluated after a concurrent ledger write.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			c.BidsAccepted, c.BidsRejected, c.AuctionsExtended,
			c.AuctionsResolved, c.TickDuration, c.TickFailures, c.LedgerConflicts,
		)
	}
	return c
}
