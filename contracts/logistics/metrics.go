package logistics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.dedis.ch/courier"
)

const (
	resultAccepted = "accepted"
	resultRejected = "rejected"
)

var (
	promOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "courier_ledger_operations_total",
		Help: "total number of ledger operations by result",
	}, []string{"operation", "result"})

	promReserve = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "courier_ledger_reserve",
		Help: "coins held by the ledger",
	})

	promEscrow = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "courier_ledger_escrow",
		Help: "coins held in escrow against delivery requests",
	})
)

func init() {
	courier.PromCollectors = append(courier.PromCollectors, promOperations,
		promReserve, promEscrow)
}
