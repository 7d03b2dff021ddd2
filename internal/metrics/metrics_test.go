package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/vtc/pkg/vtc"
)

func TestStatusFor(t *testing.T) {
	_, valueErr := vtc.Parse("nope", vtc.F24)
	_, typeErr := vtc.New(nil, vtc.F24)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, StatusOK},
		{"value error", valueErr, StatusInvalid},
		{"type error", typeErr, StatusInvalid},
		{"other", errors.New("redis down"), StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestRecordConversion(t *testing.T) {
	op := "test_convert"
	initialOK := testutil.ToFloat64(conversionsTotal.WithLabelValues(op, StatusOK))
	initialErr := testutil.ToFloat64(conversionsTotal.WithLabelValues(op, StatusError))

	RecordConversion(op, nil, 2*time.Millisecond)
	RecordConversion(op, nil, 3*time.Millisecond)
	RecordConversion(op, errors.New("boom"), time.Millisecond)

	assert.Equal(t, initialOK+2, testutil.ToFloat64(conversionsTotal.WithLabelValues(op, StatusOK)))
	assert.Equal(t, initialErr+1, testutil.ToFloat64(conversionsTotal.WithLabelValues(op, StatusError)))

	observer, err := conversionDuration.GetMetricWithLabelValues(op)
	require.NoError(t, err)

	var m dto.Metric
	require.NoError(t, observer.(prometheus.Metric).Write(&m))
	assert.Equal(t, uint64(3), m.GetHistogram().GetSampleCount())
	assert.InDelta(t, 0.006, m.GetHistogram().GetSampleSum(), 1e-9)
}

func TestIncrementParseError(t *testing.T) {
	initial := testutil.ToFloat64(parseErrorsTotal.WithLabelValues("text"))

	IncrementParseError("text")
	IncrementParseError("text")

	assert.Equal(t, initial+2, testutil.ToFloat64(parseErrorsTotal.WithLabelValues("text")))
}

func TestRecordCacheResult(t *testing.T) {
	for _, result := range []string{CacheHit, CacheMiss, CacheError} {
		t.Run(result, func(t *testing.T) {
			initial := testutil.ToFloat64(cacheRequestsTotal.WithLabelValues(result))
			RecordCacheResult(result)
			assert.Equal(t, initial+1, testutil.ToFloat64(cacheRequestsTotal.WithLabelValues(result)))
		})
	}
}

func TestStampMetrics(t *testing.T) {
	const ssrc = 0xcafef00d
	label := "0xcafef00d"

	initialPackets := testutil.ToFloat64(stampPacketsTotal.WithLabelValues(label))
	initialWraps := testutil.ToFloat64(stampWrapsTotal.WithLabelValues(label))

	RecordStampedPacket(ssrc, 100)
	RecordStampedPacket(ssrc, 107892)
	IncrementStampWraps(ssrc)

	assert.Equal(t, initialPackets+2, testutil.ToFloat64(stampPacketsTotal.WithLabelValues(label)))
	assert.Equal(t, float64(107892), testutil.ToFloat64(stampLastFrame.WithLabelValues(label)))
	assert.Equal(t, initialWraps+1, testutil.ToFloat64(stampWrapsTotal.WithLabelValues(label)))
}
