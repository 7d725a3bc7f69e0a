package shared

import (
	"sort"
	"sync"
)

// MetricsSink receives counter increments from components. It is injected
// rather than accessed through package-global state so that the store and
// consumers stay independently testable.
type MetricsSink interface {
	// IncCounter increments a named counter by one, with optional tags.
	IncCounter(name string, tags map[string]string)
}

// Counter names emitted across the system.
const (
	MetricEventsAppended     = "events_appended"
	MetricEntriesPosted      = "journal_entries_posted"
	MetricEntriesReversed    = "journal_entries_reversed"
	MetricEventsPublished    = "events_published"
	MetricPublishFailures    = "event_publish_failures"
	MetricEventsProjected    = "events_projected"
	MetricEventsDuplicate    = "events_duplicate"
	MetricProjectionFailures = "projection_failures"
	MetricLinesSkipped       = "projection_lines_skipped"
)

// NopMetrics discards all increments.
type NopMetrics struct{}

// IncCounter implements MetricsSink.
func (NopMetrics) IncCounter(string, map[string]string) {}

// InMemoryMetrics accumulates counters in memory. Suitable for tests and
// for exposing a process-local stats endpoint.
type InMemoryMetrics struct {
	mu       sync.RWMutex
	counters map[string]int64
}

// NewInMemoryMetrics creates an empty in-memory metrics sink
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{counters: make(map[string]int64)}
}

// IncCounter implements MetricsSink. Tags are folded into the key in a
// deterministic order so tests can assert on exact series.
func (m *InMemoryMetrics) IncCounter(name string, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[seriesKey(name, tags)]++
}

// Value returns the current value of a counter series
func (m *InMemoryMetrics) Value(name string, tags map[string]string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[seriesKey(name, tags)]
}

// Snapshot returns a copy of all counter series
func (m *InMemoryMetrics) Snapshot() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out
}

func seriesKey(name string, tags map[string]string) string {
	if len(tags) == 0 {
		return name
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := name
	for _, k := range keys {
		out += "|" + k + "=" + tags[k]
	}
	return out
}

var _ MetricsSink = (*InMemoryMetrics)(nil)
var _ MetricsSink = NopMetrics{}
