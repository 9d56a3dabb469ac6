package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(jobsCreatedTotal, bidsTotal, bidCountIncrementsTotal, bidCountReconciledTotal)
}

var (
	jobsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobs_created_total",
			Help: "Jobs inserted through POST /add-job.",
		},
	)

	bidsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bids_total",
			Help: "Bid submissions by outcome (created/duplicate/failed).",
		},
		[]string{"outcome"},
	)

	bidCountIncrementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bid_count_increments_total",
			Help: "bid_count increments by result (matched/orphan/failed).",
		},
		[]string{"result"},
	)

	bidCountReconciledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bid_count_reconciled_total",
			Help: "Jobs visited by the bid_count reconciler by result (unchanged/corrected/failed).",
		},
		[]string{"result"},
	)
)

func IncJobCreated() { jobsCreatedTotal.Inc() }

func IncBid(outcome string) { bidsTotal.WithLabelValues(norm(outcome)).Inc() }

func IncBidCountIncrement(result string) {
	bidCountIncrementsTotal.WithLabelValues(norm(result)).Inc()
}

func IncReconciled(result string) {
	bidCountReconciledTotal.WithLabelValues(norm(result)).Inc()
}
