// Package metrics counts pipeline outcomes. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type BroadcastOutcome string

const (
	OutcomeAccepted      BroadcastOutcome = "accepted"
	OutcomeRejected      BroadcastOutcome = "rejected"
	OutcomeNetworkFailed BroadcastOutcome = "network_error"
)

type Metrics struct {
	broadcasts       *prometheus.CounterVec
	walletRejections prometheus.Counter
	receiptPolls     prometheus.Histogram
}

// New registers the pipeline's collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		broadcasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dexly_broadcasts_total",
				Help: "Transactions submitted to the chain, by outcome",
			},
			[]string{"outcome"},
		),
		walletRejections: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dexly_wallet_rejections_total",
				Help: "Requests refused or failed by the wallet provider",
			},
		),
		receiptPolls: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dexly_receipt_polls",
				Help:    "Receipt queries made before an execution layer transaction was confirmed or given up on",
				Buckets: []float64{1, 2, 5, 10, 20, 40, 80, 120},
			},
		),
	}
}

func (m *Metrics) RecordBroadcast(outcome BroadcastOutcome) {
	if m == nil {
		return
	}
	m.broadcasts.WithLabelValues(string(outcome)).Inc()
}

func (m *Metrics) RecordWalletRejection() {
	if m == nil {
		return
	}
	m.walletRejections.Inc()
}

func (m *Metrics) RecordReceiptPolls(polls uint) {
	if m == nil {
		return
	}
	m.receiptPolls.Observe(float64(polls))
}
