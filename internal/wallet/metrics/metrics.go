package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the wallet state machine.
type Metrics struct {
	ProposalsTotal      prometheus.Counter
	ApprovalsTotal      prometheus.Counter
	DuplicateApprovals  prometheus.Counter
	ExecutionsTotal     prometheus.Counter
	ExecutionFailures   prometheus.Counter
	ExecutionDuration   prometheus.Histogram
	ReentrancyRejected  prometheus.Counter
}

// New creates and registers the wallet metrics.
func New() *Metrics {
	return &Metrics{
		ProposalsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaultgate_wallet_proposals_total",
			Help: "Total number of transactions proposed",
		}),
		ApprovalsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaultgate_wallet_approvals_total",
			Help: "Total number of first-time approvals recorded",
		}),
		DuplicateApprovals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaultgate_wallet_duplicate_approvals_total",
			Help: "Total number of idempotent repeat approvals",
		}),
		ExecutionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaultgate_wallet_executions_total",
			Help: "Total number of successful executions",
		}),
		ExecutionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaultgate_wallet_execution_failures_total",
			Help: "Total number of rejected or failed executions",
		}),
		ExecutionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vaultgate_wallet_execution_duration_seconds",
			Help:    "Wall time of execute calls, including the value release",
			Buckets: prometheus.DefBuckets,
		}),
		ReentrancyRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaultgate_wallet_reentrancy_rejected_total",
			Help: "Total number of nested mutating calls rejected mid-execution",
		}),
	}
}
