package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	dispatchStartedTotal   atomic.Uint64
	targetsSucceededTotal  atomic.Uint64
	targetsFailedTotal     atomic.Uint64
	resumeWritesTotal      atomic.Uint64
	resumeWriteConflicts   atomic.Uint64

	targetDuration = newHistogram([]float64{50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000})
)

// IncDispatchStarted increments the batch dispatch counter.
func IncDispatchStarted() {
	dispatchStartedTotal.Add(1)
}

// IncTargetSucceeded increments the per-target success counter.
func IncTargetSucceeded() {
	targetsSucceededTotal.Add(1)
}

// IncTargetFailed increments the per-target failure counter.
func IncTargetFailed() {
	targetsFailedTotal.Add(1)
}

// IncResumeWrite increments the sub-collection write counter.
func IncResumeWrite() {
	resumeWritesTotal.Add(1)
}

// IncResumeWriteConflict increments the rejected-revision counter.
func IncResumeWriteConflict() {
	resumeWriteConflicts.Add(1)
}

// ObserveTargetDurationMs records one dispatch target's duration in milliseconds.
func ObserveTargetDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	targetDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "outreach_dispatch_started_total", "Total batch dispatches started", dispatchStartedTotal.Load())
	writeCounter(&buf, "outreach_targets_succeeded_total", "Total dispatch targets that succeeded", targetsSucceededTotal.Load())
	writeCounter(&buf, "outreach_targets_failed_total", "Total dispatch targets that failed", targetsFailedTotal.Load())
	writeCounter(&buf, "resume_subcollection_writes_total", "Total sub-collection writes persisted", resumeWritesTotal.Load())
	writeCounter(&buf, "resume_subcollection_write_conflicts_total", "Total sub-collection writes rejected on revision mismatch", resumeWriteConflicts.Load())
	writeHistogram(&buf, "outreach_target_duration_ms", "Dispatch target duration in milliseconds", targetDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
