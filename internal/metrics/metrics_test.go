package metrics_test

import (
	"testing"

	"github.com/devrev/pairdb/admin-client/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordRequestIncrementsCounterAndHistogram(t *testing.T) {
	m := metrics.NewMetrics(t.Name())

	m.RecordRequest("GetMetadata", 0.01)
	m.RecordRequest("GetMetadata", 0.02)

	require.Equal(t, float64(2), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GetMetadata")))
}

func TestRecordRequestErrorIncrementsCounter(t *testing.T) {
	m := metrics.NewMetrics(t.Name())

	m.RecordRequestError("GetMetadata", "2")

	require.Equal(t, float64(1), testutil.ToFloat64(m.RequestErrors.WithLabelValues("GetMetadata", "2")))
}

func TestRecordCheckoutAndDiscard(t *testing.T) {
	m := metrics.NewMetrics(t.Name())

	m.RecordCheckout(0.001)
	m.RecordDiscard()
	m.SetIdleConns(3)

	require.Equal(t, float64(1), testutil.ToFloat64(m.PoolCheckouts))
	require.Equal(t, float64(1), testutil.ToFloat64(m.PoolDiscards))
	require.Equal(t, float64(3), testutil.ToFloat64(m.PoolIdleConns))
}

func TestRecordAsyncWaitTimeoutIncrementsTimeoutCounter(t *testing.T) {
	m := metrics.NewMetrics(t.Name())

	m.RecordAsyncWait(5.0, true)

	require.Equal(t, float64(1), testutil.ToFloat64(m.AsyncTimeouts))
}

func TestRecordEntriesSentAndReceived(t *testing.T) {
	m := metrics.NewMetrics(t.Name())

	m.RecordEntriesSent(3)
	m.RecordEntriesReceived(5)

	require.Equal(t, float64(3), testutil.ToFloat64(m.StreamEntriesSent))
	require.Equal(t, float64(5), testutil.ToFloat64(m.StreamEntriesReceived))
}
