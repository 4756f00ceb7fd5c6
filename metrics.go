package goSession

import (
	"sync/atomic"
	"time"
)

// MetricID names one of the engine's counters or histograms.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricLoginPendingVerification
	MetricRegisterSuccess
	MetricRegisterFailure
	MetricLogoutSuccess
	MetricLogoutFailure
	MetricResolveHit
	MetricResolveMiss
	MetricResolveAbsent
	MetricResolveFailure
	MetricVerifySubmitSuccess
	MetricVerifySubmitFailure
	MetricVerifyResendSuccess
	MetricVerifyResendFailure
	MetricIntrospectSuccess
	MetricIntrospectFailure
	MetricUnauthorizedResponse
	MetricCredentialCleared
	MetricGuardRender
	MetricGuardRedirect
	MetricGuardPending
	MetricDispatchLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

// paddedCounter keeps each hot counter on its own cache line.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is the engine's lock-free counter and histogram set. A disabled or
// nil Metrics accepts every call and records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of every counter and, when latency
// histograms are on, the dispatch latency buckets.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics builds a Metrics set from configuration. Latency histograms are
// only active when metrics as a whole are enabled.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether dispatch latency histograms are being
// recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to the counter. Safe on a nil or disabled receiver.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a dispatch latency sample. Only MetricDispatchLatency has a
// histogram; other ids are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricDispatchLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter, and the latency buckets when histograms are
// on. Counters are read individually, so the snapshot is not a single atomic
// cut across all ids.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricDispatchLatency].buckets[i])
		}
		s.Histograms[MetricDispatchLatency] = buckets
	}

	return s
}

// Bucket upper bounds in ms: 5, 10, 25, 50, 100, 250, 500, +Inf.
func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
