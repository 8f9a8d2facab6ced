package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TradesOffered = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cargo",
		Name:      "trades_offered_total",
		Help:      "Trades received in inform batches.",
	})

	TradesPlanned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cargo",
		Name:      "trades_planned_total",
		Help:      "Trades placed on a vessel by the allocator.",
	})

	TradesDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cargo",
		Name:      "trades_dropped_total",
		Help:      "Trades the allocator could not place on any vessel.",
	})

	BidsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cargo",
		Name:      "bids_submitted_total",
		Help:      "Bid requests returned to the auctioneer.",
	})

	Settlements = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cargo",
		Name:      "settlements_total",
		Help:      "Won contracts by settlement outcome.",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(TradesOffered, TradesPlanned, TradesDropped, BidsSubmitted, Settlements)
}
