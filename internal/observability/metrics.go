package observability

import (
	"strconv"
	"sync"
	"time"
)

// Store operation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeMiss     = "miss"
	OutcomeError    = "error"
	OutcomeQuotaHit = "quota"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	storeOps     map[string]int64
	storeLatency map[string]time.Duration
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		storeOps:     make(map[string]int64),
		storeLatency: make(map[string]time.Duration),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordStoreOp counts a key-value store call by driver, operation and outcome.
func (m *Metrics) RecordStoreOp(driver, op, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	key := driver + "|" + op + "|" + outcome
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeOps[key]++
	m.storeLatency[driver+"|"+op] += duration
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Requests map[string]int64 `json:"requests"`
	Errors   map[string]int64 `json:"errors"`
	StoreOps map[string]int64 `json:"store_ops"`
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Requests: copyCounts(m.requestCount),
		Errors:   copyCounts(m.errorCount),
		StoreOps: copyCounts(m.storeOps),
	}
}

func copyCounts(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
