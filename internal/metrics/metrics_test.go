package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/halim/toolbridge/pkg/gateway"
)

func TestRecordCountsOutcomes(t *testing.T) {
	m := NewMetrics()

	m.Record(gateway.AuditRecord{
		ToolName: "add_subscribe",
		Outcome:  gateway.OutcomeSuccess,
		Duration: 100 * time.Millisecond,
	})
	m.Record(gateway.AuditRecord{
		ToolName: "add_subscribe",
		Outcome:  gateway.OutcomeHandlerError,
		Duration: 50 * time.Millisecond,
	})
	m.Record(gateway.AuditRecord{
		ToolName: "search_media",
		Outcome:  gateway.OutcomeHandlerTimeout,
		Duration: 30 * time.Second,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.DispatchesTotal.WithLabelValues("add_subscribe", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.DispatchesTotal.WithLabelValues("add_subscribe", "handler_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.DispatchFailures.WithLabelValues("search_media", "handler_timeout")))

	// Successes are not counted as failures.
	assert.Equal(t, 0.0, testutil.ToFloat64(
		m.DispatchFailures.WithLabelValues("add_subscribe", "success")))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := NewMetrics()
	m.ToolsRegistered.Set(11)

	assert.NotNil(t, m.Handler())
	assert.Equal(t, 11.0, testutil.ToFloat64(m.ToolsRegistered))
}
