package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/projects", "GET", 200, time.Millisecond)
	m.RecordRequest("/api/projects", "GET", 200, time.Millisecond)
	m.RecordError("/api/projects", "POST", "VALIDATION_FAILED")
	m.RecordStoreOp("memory", "write", OutcomeQuotaHit, time.Microsecond)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/api/projects|GET|200"])
	assert.Equal(t, int64(1), snap.Errors["/api/projects|POST|VALIDATION_FAILED"])
	assert.Equal(t, int64(1), snap.StoreOps["memory|write|quota"])

	snap.Requests["/api/projects|GET|200"] = 99
	assert.Equal(t, int64(2), m.Snapshot().Requests["/api/projects|GET|200"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordError("/", "GET", "X")
	m.RecordStoreOp("memory", "read", OutcomeOK, 0)
	assert.Empty(t, m.Snapshot().Requests)
}
