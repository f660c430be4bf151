package monitoring

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// 计数器名称
const (
	MetricPredictions    = "predictions_total"
	MetricSurvived       = "predictions_survived_total"
	MetricRejectedInputs = "rejected_inputs_total"
	MetricCacheHits      = "cache_hits_total"
	MetricErrors         = "prediction_errors_total"
)

// LatencyStats 延迟统计
type LatencyStats struct {
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	MinMs   float64 `json:"min_ms"`
	MaxMs   float64 `json:"max_ms"`
	AvgMs   float64 `json:"avg_ms"`
}

// Snapshot 指标快照
type Snapshot struct {
	Counters   map[string]int64 `json:"counters"`
	Latency    LatencyStats     `json:"latency"`
	Uptime     string           `json:"uptime"`
	Goroutines int              `json:"goroutines"`
	HeapAlloc  uint64           `json:"heap_alloc"`
}

// MetricsCollector 预测服务指标收集器
type MetricsCollector struct {
	mu        sync.Mutex
	counters  map[string]int64
	latency   LatencyStats
	startTime time.Time
}

// NewMetricsCollector 创建指标收集器
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:  make(map[string]int64),
		startTime: time.Now(),
	}
}

// IncrCounter 计数器加一
func (mc *MetricsCollector) IncrCounter(name string) {
	if mc == nil {
		return
	}
	mc.mu.Lock()
	mc.counters[name]++
	mc.mu.Unlock()
}

// ObserveLatency 记录一次预测耗时
func (mc *MetricsCollector) ObserveLatency(d time.Duration) {
	if mc == nil {
		return
	}
	ms := float64(d) / float64(time.Millisecond)
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.latency.Count == 0 || ms < mc.latency.MinMs {
		mc.latency.MinMs = ms
	}
	if ms > mc.latency.MaxMs {
		mc.latency.MaxMs = ms
	}
	mc.latency.Count++
	mc.latency.TotalMs += ms
	mc.latency.AvgMs = mc.latency.TotalMs / float64(mc.latency.Count)
}

// Counter 读取计数器
func (mc *MetricsCollector) Counter(name string) int64 {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.counters[name]
}

// Snapshot 返回当前指标副本
func (mc *MetricsCollector) Snapshot() Snapshot {
	mc.mu.Lock()
	counters := make(map[string]int64, len(mc.counters))
	for name, value := range mc.counters {
		counters[name] = value
	}
	latency := mc.latency
	mc.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return Snapshot{
		Counters:   counters,
		Latency:    latency,
		Uptime:     time.Since(mc.startTime).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  m.HeapAlloc,
	}
}

// ExportPrometheus 以Prometheus文本格式导出
func (mc *MetricsCollector) ExportPrometheus() string {
	snapshot := mc.Snapshot()

	names := make([]string, 0, len(snapshot.Counters))
	for name := range snapshot.Counters {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("# TYPE titanic_%s counter\n", name))
		sb.WriteString(fmt.Sprintf("titanic_%s %d\n", name, snapshot.Counters[name]))
	}
	sb.WriteString("# TYPE titanic_prediction_latency_ms summary\n")
	sb.WriteString(fmt.Sprintf("titanic_prediction_latency_ms_sum %g\n", snapshot.Latency.TotalMs))
	sb.WriteString(fmt.Sprintf("titanic_prediction_latency_ms_count %d\n", snapshot.Latency.Count))
	return sb.String()
}
