package treasury

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the treasury.
type Metrics struct {
	DepositsTotal    prometheus.Counter
	DepositedAmount  prometheus.Counter
	TransferFailures prometheus.Counter
}

// NewMetrics creates and registers the treasury metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		DepositsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaultgate_treasury_deposits_total",
			Help: "Total number of deposits into the pool",
		}),
		DepositedAmount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaultgate_treasury_deposited_units_total",
			Help: "Total value deposited into the pool, in base units",
		}),
		TransferFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaultgate_treasury_transfer_failures_total",
			Help: "Total number of failed value releases",
		}),
	}
}

func (m *Metrics) IncDeposits(amount int64) {
	m.DepositsTotal.Inc()
	m.DepositedAmount.Add(float64(amount))
}

func (m *Metrics) IncTransferFailures() {
	m.TransferFailures.Inc()
}
