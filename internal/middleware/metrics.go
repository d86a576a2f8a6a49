package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics counts requests and gitleaks runs. Zero value is not usable; use NewMetrics.
type Metrics struct {
	requestsTotal      atomic.Uint64
	requestsInProgress atomic.Int64
	requestsSuccess    atomic.Uint64
	requestsFailed     atomic.Uint64
	scansTotal         atomic.Uint64
	scansRunning       atomic.Int64
	scansFailed        atomic.Uint64
	scansTimedOut      atomic.Uint64
	findingsTotal      atomic.Uint64
	startTime          time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// ScanStarted marks a gitleaks run in flight; call the returned func when it ends.
func (m *Metrics) ScanStarted() func(findings int, timedOut bool, err error) {
	m.scansTotal.Add(1)
	m.scansRunning.Add(1)
	return func(findings int, timedOut bool, err error) {
		m.scansRunning.Add(-1)
		switch {
		case err != nil:
			m.scansFailed.Add(1)
		case timedOut:
			m.scansTimedOut.Add(1)
		}
		if findings > 0 {
			m.findingsTotal.Add(uint64(findings))
		}
	}
}

// Snapshot returns current metrics
func (m *Metrics) Snapshot() map[string]any {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return map[string]any{
		"requests_total":       m.requestsTotal.Load(),
		"requests_in_progress": m.requestsInProgress.Load(),
		"requests_success":     m.requestsSuccess.Load(),
		"requests_failed":      m.requestsFailed.Load(),
		"scans_total":          m.scansTotal.Load(),
		"scans_running":        m.scansRunning.Load(),
		"scans_failed":         m.scansFailed.Load(),
		"scans_timed_out":      m.scansTimedOut.Load(),
		"findings_total":       m.findingsTotal.Load(),
		"uptime_seconds":       time.Since(m.startTime).Seconds(),
		"memory": map[string]any{
			"alloc_bytes":       mem.Alloc,
			"total_alloc_bytes": mem.TotalAlloc,
			"sys_bytes":         mem.Sys,
			"num_gc":            mem.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// Middleware tracks request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requestsTotal.Add(1)
		m.requestsInProgress.Add(1)
		defer m.requestsInProgress.Add(-1)

		wrapped := wrap(w)
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			m.requestsSuccess.Add(1)
		} else {
			m.requestsFailed.Add(1)
		}
	})
}

// Handler returns metrics as JSON
func (m *Metrics) Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m.Snapshot())
}
