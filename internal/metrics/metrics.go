package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zsiec/vtc/pkg/vtc"
)

// Conversion status label values.
const (
	StatusOK      = "ok"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

// Cache result label values.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

var (
	// Conversion metrics
	conversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vtc_conversions_total",
		Help: "Total timecode operations by operation and outcome",
	}, []string{"operation", "status"})

	conversionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vtc_conversion_duration_seconds",
		Help:    "Duration of timecode operations in seconds",
		Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10), // 1µs to ~0.26s
	}, []string{"operation"})

	parseErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vtc_parse_errors_total",
		Help: "Total values that could not be parsed, by source kind",
	}, []string{"kind"})

	// Cache metrics
	cacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vtc_cache_requests_total",
		Help: "Total conversion cache lookups by result",
	}, []string{"result"})

	// RTP stamping metrics
	stampLastFrame = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vtc_stamp_last_frame",
		Help: "Frame number of the last stamped packet per stream",
	}, []string{"ssrc"})

	stampWrapsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vtc_stamp_wraps_total",
		Help: "Total 32-bit RTP timestamp wraparounds observed per stream",
	}, []string{"ssrc"})

	stampPacketsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vtc_stamp_packets_total",
		Help: "Total RTP packets stamped per stream",
	}, []string{"ssrc"})
)

// StatusFor classifies err into a conversion status label.
func StatusFor(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, vtc.ErrValue), errors.Is(err, vtc.ErrType):
		return StatusInvalid
	default:
		return StatusError
	}
}

// RecordConversion counts an operation and observes its duration.
func RecordConversion(operation string, err error, duration time.Duration) {
	conversionsTotal.WithLabelValues(operation, StatusFor(err)).Inc()
	conversionDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// IncrementParseError counts a value of the given kind that failed to parse.
func IncrementParseError(kind string) {
	parseErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordCacheResult counts a cache lookup with one of CacheHit, CacheMiss or CacheError.
func RecordCacheResult(result string) {
	cacheRequestsTotal.WithLabelValues(result).Inc()
}

func ssrcLabel(ssrc uint32) string {
	return fmt.Sprintf("0x%08x", ssrc)
}

// RecordStampedPacket updates the stamping metrics for a stream.
func RecordStampedPacket(ssrc uint32, frame int64) {
	label := ssrcLabel(ssrc)
	stampPacketsTotal.WithLabelValues(label).Inc()
	stampLastFrame.WithLabelValues(label).Set(float64(frame))
}

// IncrementStampWraps counts an RTP timestamp wraparound for a stream.
func IncrementStampWraps(ssrc uint32) {
	stampWrapsTotal.WithLabelValues(ssrcLabel(ssrc)).Inc()
}
