package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics snapshots process resources once at the end of a run
type RuntimeMetrics struct {
	heapAlloc  metric.Int64Gauge
	totalAlloc metric.Int64Gauge
	sysMemory  metric.Int64Gauge
	gcCount    metric.Int64Gauge
	runTime    metric.Float64Gauge
}

// RuntimeStats holds one snapshot
type RuntimeStats struct {
	HeapAlloc  int64
	TotalAlloc int64
	SysMemory  int64
	GCCount    uint32
	RunTime    time.Duration
}

// NewRuntimeMetrics creates the runtime instruments
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	heapAlloc, err := meter.Int64Gauge(
		"process_heap_alloc",
		metric.WithDescription("Heap bytes in use at the end of the run"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	totalAlloc, err := meter.Int64Gauge(
		"process_total_alloc",
		metric.WithDescription("Cumulative bytes allocated during the run"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	sysMemory, err := meter.Int64Gauge(
		"process_sys_memory",
		metric.WithDescription("Memory obtained from the OS"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcCount, err := meter.Int64Gauge(
		"process_gc_cycles",
		metric.WithDescription("Completed garbage collection cycles"),
	)
	if err != nil {
		return nil, err
	}

	runTime, err := meter.Float64Gauge(
		"pipeline_run_duration",
		metric.WithDescription("Wall time of the whole run"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RuntimeMetrics{
		heapAlloc:  heapAlloc,
		totalAlloc: totalAlloc,
		sysMemory:  sysMemory,
		gcCount:    gcCount,
		runTime:    runTime,
	}, nil
}

// Collect reads runtime memory statistics and records them
func (rm *RuntimeMetrics) Collect(ctx context.Context, startTime time.Time) RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := RuntimeStats{
		HeapAlloc:  int64(memStats.HeapAlloc),
		TotalAlloc: int64(memStats.TotalAlloc),
		SysMemory:  int64(memStats.Sys),
		GCCount:    memStats.NumGC,
		RunTime:    time.Since(startTime),
	}

	rm.heapAlloc.Record(ctx, stats.HeapAlloc)
	rm.totalAlloc.Record(ctx, stats.TotalAlloc)
	rm.sysMemory.Record(ctx, stats.SysMemory)
	rm.gcCount.Record(ctx, int64(stats.GCCount))
	rm.runTime.Record(ctx, stats.RunTime.Seconds())

	return stats
}

// Fields renders the snapshot for structured logs
func (s RuntimeStats) Fields() map[string]interface{} {
	return map[string]interface{}{
		"heap_alloc_mb":  s.HeapAlloc / 1024 / 1024,
		"total_alloc_mb": s.TotalAlloc / 1024 / 1024,
		"sys_memory_mb":  s.SysMemory / 1024 / 1024,
		"gc_cycles":      s.GCCount,
		"run_seconds":    s.RunTime.Seconds(),
	}
}
