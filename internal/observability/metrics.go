package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64

	promotions          int64
	demotions           int64
	sweepErrors         int64
	staffCacheHits      int64
	staffCacheMisses    int64
	staffRefreshFailure int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
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

// RecordPromotion counts a rank-table promotion.
func (m *Metrics) RecordPromotion() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promotions++
}

// RecordDemotion counts a rank-table demotion.
func (m *Metrics) RecordDemotion() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.demotions++
}

// RecordSweepError counts a per-identity failure during a scheduled sweep.
func (m *Metrics) RecordSweepError() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepErrors++
}

// RecordStaffCacheHit counts an isStaff answer served from the snapshot.
func (m *Metrics) RecordStaffCacheHit() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staffCacheHits++
}

// RecordStaffCacheMiss counts a snapshot reload triggered by TTL expiry.
func (m *Metrics) RecordStaffCacheMiss() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staffCacheMisses++
}

// RecordStaffRefreshFailure counts a roster reload that kept the old snapshot.
func (m *Metrics) RecordStaffRefreshFailure() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staffRefreshFailure++
}

// Snapshot returns a copy of the domain counters for the health endpoint.
func (m *Metrics) Snapshot() map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]int64{
		"promotions":             m.promotions,
		"demotions":              m.demotions,
		"sweep_errors":           m.sweepErrors,
		"staff_cache_hits":       m.staffCacheHits,
		"staff_cache_misses":     m.staffCacheMisses,
		"staff_refresh_failures": m.staffRefreshFailure,
	}
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
