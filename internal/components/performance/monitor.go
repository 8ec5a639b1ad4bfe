package performance

import (
	"sync"
	"time"
)

// Monitor tracks render timings by name
type Monitor struct {
	metrics map[string]*Metric
	mutex   sync.RWMutex
}

// Metric represents a performance metric
type Metric struct {
	Name        string
	Count       int64
	TotalTime   time.Duration
	MinTime     time.Duration
	MaxTime     time.Duration
	LastTime    time.Duration
	LastUpdated time.Time
	Samples     []time.Duration
	MaxSamples  int
}

// NewMonitor creates a new performance monitor
func NewMonitor() *Monitor {
	return &Monitor{
		metrics: make(map[string]*Metric),
	}
}

// StartTimer starts timing an operation. Call the returned func when it ends.
func (pm *Monitor) StartTimer(name string) func() {
	start := time.Now()
	return func() {
		pm.RecordDuration(name, time.Since(start))
	}
}

// RecordDuration records a duration for a metric
func (pm *Monitor) RecordDuration(name string, duration time.Duration) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	metric, exists := pm.metrics[name]
	if !exists {
		metric = &Metric{
			Name:       name,
			MinTime:    duration,
			MaxTime:    duration,
			MaxSamples: 100, // Keep last 100 samples
			Samples:    make([]time.Duration, 0, 100),
		}
		pm.metrics[name] = metric
	}

	metric.Count++
	metric.TotalTime += duration
	metric.LastTime = duration
	metric.LastUpdated = time.Now()

	if duration < metric.MinTime {
		metric.MinTime = duration
	}
	if duration > metric.MaxTime {
		metric.MaxTime = duration
	}

	if len(metric.Samples) >= metric.MaxSamples {
		metric.Samples = metric.Samples[1:]
	}
	metric.Samples = append(metric.Samples, duration)
}

// GetMetric returns a copy of a metric by name, or nil
func (pm *Monitor) GetMetric(name string) *Metric {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	metric, exists := pm.metrics[name]
	if !exists {
		return nil
	}

	cp := *metric
	cp.Samples = append([]time.Duration(nil), metric.Samples...)
	return &cp
}

// AverageTime returns the average time for a metric
func (m *Metric) AverageTime() time.Duration {
	if m.Count == 0 {
		return 0
	}
	return m.TotalTime / time.Duration(m.Count)
}

// RecentAverageTime returns the average of the last sampleCount samples
func (m *Metric) RecentAverageTime(sampleCount int) time.Duration {
	if len(m.Samples) == 0 {
		return 0
	}

	start := max(len(m.Samples)-sampleCount, 0)

	var total time.Duration
	for _, s := range m.Samples[start:] {
		total += s
	}
	return total / time.Duration(len(m.Samples)-start)
}

// Summary returns a loggable summary of every metric
func (pm *Monitor) Summary() map[string]interface{} {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	summary := make(map[string]interface{}, len(pm.metrics))
	for name, metric := range pm.metrics {
		summary[name] = map[string]interface{}{
			"count":      metric.Count,
			"average":    metric.AverageTime().String(),
			"max":        metric.MaxTime.String(),
			"last":       metric.LastTime.String(),
			"recent_avg": metric.RecentAverageTime(10).String(),
		}
	}
	return summary
}

// Reset clears every metric
func (pm *Monitor) Reset() {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	pm.metrics = make(map[string]*Metric)
}
