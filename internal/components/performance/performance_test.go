package performance

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalescesTriggers(t *testing.T) {
	var calls int32
	d := NewDebouncer(20*time.Millisecond, func() {
		atomic.AddInt32(&calls, 1)
	})

	for i := 0; i < 5; i++ {
		d.Trigger()
	}
	if !d.IsPending() {
		t.Error("Expected a pending call after Trigger")
	}

	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected 1 callback, got %d", got)
	}
	if d.IsPending() {
		t.Error("Expected no pending call after the callback ran")
	}
}

func TestDebouncerCancel(t *testing.T) {
	var calls int32
	d := NewDebouncer(20*time.Millisecond, func() {
		atomic.AddInt32(&calls, 1)
	})

	d.Trigger()
	d.Cancel()
	time.Sleep(60 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("Expected cancelled debouncer not to fire, got %d calls", got)
	}
}

func TestMonitorRecordsDurations(t *testing.T) {
	pm := NewMonitor()

	pm.RecordDuration("render", 10*time.Millisecond)
	pm.RecordDuration("render", 30*time.Millisecond)

	metric := pm.GetMetric("render")
	if metric == nil {
		t.Fatal("Expected metric to exist")
	}
	if metric.Count != 2 {
		t.Errorf("Expected count 2, got %d", metric.Count)
	}
	if metric.MinTime != 10*time.Millisecond || metric.MaxTime != 30*time.Millisecond {
		t.Errorf("Unexpected min/max %v/%v", metric.MinTime, metric.MaxTime)
	}
	if metric.AverageTime() != 20*time.Millisecond {
		t.Errorf("Expected average 20ms, got %v", metric.AverageTime())
	}
	if metric.RecentAverageTime(1) != 30*time.Millisecond {
		t.Errorf("Expected recent average 30ms, got %v", metric.RecentAverageTime(1))
	}

	if pm.GetMetric("missing") != nil {
		t.Error("Expected nil for unknown metric")
	}

	summary := pm.Summary()
	if _, ok := summary["render"]; !ok {
		t.Error("Expected render in summary")
	}

	pm.Reset()
	if pm.GetMetric("render") != nil {
		t.Error("Expected metrics to be cleared")
	}
}

func TestMonitorSampleWindow(t *testing.T) {
	pm := NewMonitor()
	for i := 0; i < 150; i++ {
		pm.RecordDuration("op", time.Millisecond)
	}

	metric := pm.GetMetric("op")
	if len(metric.Samples) != metric.MaxSamples {
		t.Errorf("Expected %d samples, got %d", metric.MaxSamples, len(metric.Samples))
	}
}
