package metrics

import (
	"sort"
	"sync"
	"time"
)

const maxSamples = 1000

type Metrics struct {
	mutex             sync.RWMutex
	endpoints         map[string]string
	started           map[string]int64
	successes         map[string]int64
	failures          map[string]int64
	discarded         map[string]int64
	lastRecords       map[string]int
	cycleTimes        map[string][]time.Duration
	statusCodes       map[string]map[int]int64
	configResolutions int64
	startTime         time.Time
}

type Snapshot struct {
	TotalCycles       int64                    `json:"total_cycles"`
	ConfigResolutions int64                    `json:"config_resolutions"`
	Uptime            time.Duration            `json:"uptime"`
	Sources           map[string]SourceMetrics `json:"sources"`
}

type SourceMetrics struct {
	Endpoint    string        `json:"endpoint"`
	Cycles      int64         `json:"cycles"`
	Successes   int64         `json:"successes"`
	Failures    int64         `json:"failures"`
	Discarded   int64         `json:"discarded"`
	LastRecords int           `json:"last_records"`
	AvgCycle    time.Duration `json:"avg_cycle"`
	P50Cycle    time.Duration `json:"p50_cycle"`
	P95Cycle    time.Duration `json:"p95_cycle"`
	P99Cycle    time.Duration `json:"p99_cycle"`
	StatusCodes map[int]int64 `json:"status_codes,omitempty"`
}

func (m *Metrics) RecordCycleStarted(source, endpoint string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.started[source]++
	m.endpoints[source] = endpoint
}

func (m *Metrics) RecordSuccess(source string, duration time.Duration, records int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.successes[source]++
	m.lastRecords[source] = records
	m.recordDuration(source, duration)
}

func (m *Metrics) RecordFailure(source string, duration time.Duration, statusCode int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.failures[source]++
	m.recordDuration(source, duration)

	if statusCode == 0 {
		return
	}
	if m.statusCodes[source] == nil {
		m.statusCodes[source] = make(map[int]int64)
	}
	m.statusCodes[source][statusCode]++
}

func (m *Metrics) RecordDiscarded(source string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.discarded[source]++
}

func (m *Metrics) RecordConfigResolved() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.configResolutions++
}

// recordDuration expects the write lock to be held.
func (m *Metrics) recordDuration(source string, duration time.Duration) {
	m.cycleTimes[source] = append(m.cycleTimes[source], duration)

	if len(m.cycleTimes[source]) > maxSamples {
		m.cycleTimes[source] = m.cycleTimes[source][1:]
	}
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		ConfigResolutions: m.configResolutions,
		Uptime:            time.Since(m.startTime),
		Sources:           make(map[string]SourceMetrics),
	}

	allSources := make(map[string]bool)
	for source := range m.started {
		allSources[source] = true
	}
	for source := range m.successes {
		allSources[source] = true
	}
	for source := range m.failures {
		allSources[source] = true
	}
	for source := range m.discarded {
		allSources[source] = true
	}

	for source := range allSources {
		snap.TotalCycles += m.started[source]

		sm := SourceMetrics{
			Endpoint:    m.endpoints[source],
			Cycles:      m.started[source],
			Successes:   m.successes[source],
			Failures:    m.failures[source],
			Discarded:   m.discarded[source],
			LastRecords: m.lastRecords[source],
		}

		if codes := m.statusCodes[source]; len(codes) > 0 {
			sm.StatusCodes = make(map[int]int64, len(codes))
			for code, n := range codes {
				sm.StatusCodes[code] = n
			}
		}

		durations := m.cycleTimes[source]
		if len(durations) > 0 {
			sorted := make([]time.Duration, len(durations))
			copy(sorted, durations)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			sm.AvgCycle = average(sorted)
			sm.P50Cycle = percentile(sorted, 0.50)
			sm.P95Cycle = percentile(sorted, 0.95)
			sm.P99Cycle = percentile(sorted, 0.99)
		}

		snap.Sources[source] = sm
	}

	return snap
}

func NewMetrics() *Metrics {
	return &Metrics{
		endpoints:   make(map[string]string),
		started:     make(map[string]int64),
		successes:   make(map[string]int64),
		failures:    make(map[string]int64),
		discarded:   make(map[string]int64),
		lastRecords: make(map[string]int),
		cycleTimes:  make(map[string][]time.Duration),
		statusCodes: make(map[string]map[int]int64),
		startTime:   time.Now(),
	}
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
