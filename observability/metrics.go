package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"tokenledger/core/state"
)

// LedgerMetrics tracks the accounting core. It implements state.Recorder.
type LedgerMetrics struct {
	holders           prometheus.Gauge
	approvals         prometheus.Gauge
	auctions          prometheus.Counter
	distributed       prometheus.Counter
	cycles            prometheus.Counter
	feeRatio          prometheus.Gauge
	translated        *prometheus.CounterVec
	auctionDue        prometheus.Gauge
	snapshotsWritten  *prometheus.CounterVec
	snapshotSizeBytes prometheus.Gauge
}

var (
	ledgerMetricsOnce sync.Once
	ledgerRegistry    *LedgerMetrics
)

var _ state.Recorder = (*LedgerMetrics)(nil)

// Ledger returns the lazily-initialised metrics registered with the default
// prometheus registerer.
func Ledger() *LedgerMetrics {
	ledgerMetricsOnce.Do(func() {
		ledgerRegistry = NewLedgerMetrics(prometheus.DefaultRegisterer)
	})
	return ledgerRegistry
}

// NewLedgerMetrics builds the collectors and registers them with reg. A nil
// registerer leaves the collectors unregistered.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	m := &LedgerMetrics{
		holders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tokenledger",
			Subsystem: "state",
			Name:      "holders",
			Help:      "Number of accounts holding a non-zero balance.",
		}),
		approvals: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tokenledger",
			Subsystem: "state",
			Name:      "approvals",
			Help:      "Number of active owner/spender allowances.",
		}),
		auctions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tokenledger",
			Subsystem: "auction",
			Name:      "settled_total",
			Help:      "Count of settled fee auctions.",
		}),
		distributed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tokenledger",
			Subsystem: "auction",
			Name:      "tokens_distributed_total",
			Help:      "Tokens distributed to bidders across all auctions (base units, lossy).",
		}),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tokenledger",
			Subsystem: "auction",
			Name:      "cycles_collected_total",
			Help:      "Sum of pledges consumed by settled auctions.",
		}),
		feeRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tokenledger",
			Subsystem: "auction",
			Name:      "fee_ratio",
			Help:      "Fee ratio in force during the most recently settled auction (0-1).",
		}),
		auctionDue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tokenledger",
			Subsystem: "auction",
			Name:      "due",
			Help:      "Indicates whether an auction is currently due (1) or not (0).",
		}),
		translated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenledger",
			Subsystem: "errors",
			Name:      "translated_total",
			Help:      "Internal errors translated for external callers, segmented by internal kind.",
		}, []string{"kind"}),
		snapshotsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenledger",
			Subsystem: "snapshot",
			Name:      "writes_total",
			Help:      "Snapshot persistence attempts segmented by outcome.",
		}, []string{"outcome"}),
		snapshotSizeBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tokenledger",
			Subsystem: "snapshot",
			Name:      "size_bytes",
			Help:      "Size of the most recently persisted snapshot.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.holders,
			m.approvals,
			m.auctions,
			m.distributed,
			m.cycles,
			m.feeRatio,
			m.auctionDue,
			m.translated,
			m.snapshotsWritten,
			m.snapshotSizeBytes,
		)
	}
	return m
}

func (m *LedgerMetrics) SetHolders(n int) {
	if m == nil {
		return
	}
	m.holders.Set(float64(n))
}

func (m *LedgerMetrics) SetApprovals(n int) {
	if m == nil {
		return
	}
	m.approvals.Set(float64(n))
}

// ObserveAuction records a settled auction.
func (m *LedgerMetrics) ObserveAuction(info state.AuctionInfo) {
	if m == nil {
		return
	}
	m.auctions.Inc()
	m.distributed.Add(info.TokensDistributed.Float64())
	m.cycles.Add(float64(info.CyclesCollected))
	m.feeRatio.Set(info.FeeRatio)
	m.auctionDue.Set(0)
}

// ObserveTranslatedError increments the translation counter for kind.
func (m *LedgerMetrics) ObserveTranslatedError(kind string) {
	if m == nil {
		return
	}
	normalized := strings.TrimSpace(kind)
	if normalized == "" {
		normalized = "unknown"
	}
	m.translated.WithLabelValues(normalized).Inc()
}

// SetAuctionDue toggles the auction due gauge.
func (m *LedgerMetrics) SetAuctionDue(due bool) {
	if m == nil {
		return
	}
	if due {
		m.auctionDue.Set(1)
		return
	}
	m.auctionDue.Set(0)
}

// RecordSnapshot records the outcome of a snapshot write. size is ignored
// when err is non-nil.
func (m *LedgerMetrics) RecordSnapshot(size int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.snapshotsWritten.WithLabelValues("error").Inc()
		return
	}
	m.snapshotsWritten.WithLabelValues("success").Inc()
	m.snapshotSizeBytes.Set(float64(size))
}
