package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_RecordsOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCart(reg)

	m.ObserveOperation("add", OutcomeSuccess, 10*time.Millisecond)
	m.ObserveOperation("add", OutcomeSuccess, 20*time.Millisecond)
	m.ObserveOperation("add", OutcomeStockExceeded, time.Millisecond)
	m.PersistFailed()
	m.SetEntries(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("add", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("add", OutcomeStockExceeded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistFailures))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.entries))

	count, err := testutil.GatherAndCount(reg, "cartstore_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCart_NilIsNoop(t *testing.T) {
	var m *Cart
	assert.NotPanics(t, func() {
		m.ObserveOperation("remove", OutcomeNotFound, time.Second)
		m.PersistFailed()
		m.SetEntries(1)
	})
}
