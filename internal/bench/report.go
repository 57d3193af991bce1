package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/vango-dev/vstore/internal/errors"
)

// Report is the result of a run. Its JSON form is stable across versions
// with the same Version field.
type Report struct {
	Version    string            `json:"version"`
	Run        RunInfo           `json:"run"`
	Workload   Workload          `json:"workload"`
	Throughput Throughput        `json:"throughput"`
	LatencyUS  Latency           `json:"latency_us"`
	Renders    map[string]int    `json:"renders"`
	Outputs    map[string]string `json:"outputs"`
	GC         GCInfo            `json:"gc"`
}

type RunInfo struct {
	Timestamp string `json:"timestamp"`
	Go        string `json:"go"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUCount  int    `json:"cpu_count"`
}

type Workload struct {
	Iterations  int `json:"iterations"`
	Subscribers int `json:"subscribers"`
	Selectors   int `json:"selectors"`
	Listeners   int `json:"listeners"`
}

type Throughput struct {
	DurationMS    float64 `json:"duration_ms"`
	Accepted      int     `json:"accepted"`
	Notifications int     `json:"notifications"`
	UpdatesPerSec float64 `json:"updates_per_sec"`
}

type Latency struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

type GCInfo struct {
	AllocMB      float64 `json:"alloc_mb"`
	Mallocs      uint64  `json:"mallocs"`
	NumGC        uint32  `json:"num_gc"`
	PauseTotalMS float64 `json:"pause_total_ms"`
}

func buildReport(
	opts Options,
	elapsed time.Duration,
	latencies []time.Duration,
	accepted int,
	listeners int,
	t *tree,
	before runtime.MemStats,
	after runtime.MemStats,
) *Report {
	latency := Latency{}
	if len(latencies) > 0 {
		latency = Latency{
			Min: us(latencies[0]),
			P50: us(percentile(latencies, 0.50)),
			P95: us(percentile(latencies, 0.95)),
			P99: us(percentile(latencies, 0.99)),
			Max: us(latencies[len(latencies)-1]),
		}
	}

	return &Report{
		Version: "1",
		Run: RunInfo{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Go:        runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPUCount:  runtime.NumCPU(),
		},
		Workload: Workload{
			Iterations:  opts.Iterations,
			Subscribers: opts.Subscribers,
			Selectors:   opts.Selectors,
			Listeners:   listeners,
		},
		Throughput: Throughput{
			DurationMS:    float64(elapsed) / float64(time.Millisecond),
			Accepted:      accepted,
			Notifications: accepted * listeners,
			UpdatesPerSec: float64(accepted) / math.Max(elapsed.Seconds(), 1e-9),
		},
		LatencyUS: latency,
		Renders:   t.renders(),
		Outputs:   t.outputs(),
		GC: GCInfo{
			AllocMB:      float64(after.TotalAlloc-before.TotalAlloc) / (1024 * 1024),
			Mallocs:      after.Mallocs - before.Mallocs,
			NumGC:        after.NumGC - before.NumGC,
			PauseTotalMS: float64(after.PauseTotalNs-before.PauseTotalNs) / float64(time.Millisecond),
		},
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	return sorted[max(0, min(idx, len(sorted)-1))]
}

func us(d time.Duration) float64 {
	return float64(d) / float64(time.Microsecond)
}

// WriteSummary prints a human-readable summary of r.
func WriteSummary(w io.Writer, r *Report) {
	fmt.Fprintln(w, "=== vstore benchmark ===")
	fmt.Fprintf(w, "Iterations: %d\n", r.Workload.Iterations)
	fmt.Fprintf(w, "Listeners: %d (%d subscribers, %d selectors + progressive)\n",
		r.Workload.Listeners, r.Workload.Subscribers, r.Workload.Selectors)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Duration: %.3f ms\n", r.Throughput.DurationMS)
	fmt.Fprintf(w, "Accepted writes: %d\n", r.Throughput.Accepted)
	fmt.Fprintf(w, "Notifications: %d\n", r.Throughput.Notifications)
	fmt.Fprintf(w, "Throughput: %.0f updates/s\n", r.Throughput.UpdatesPerSec)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Update latency:")
	fmt.Fprintf(w, "  min: %.2f µs\n", r.LatencyUS.Min)
	fmt.Fprintf(w, "  p50: %.2f µs\n", r.LatencyUS.P50)
	fmt.Fprintf(w, "  p95: %.2f µs\n", r.LatencyUS.P95)
	fmt.Fprintf(w, "  p99: %.2f µs\n", r.LatencyUS.P99)
	fmt.Fprintf(w, "  max: %.2f µs\n", r.LatencyUS.Max)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Renders:")
	names := make([]string, 0, len(r.Renders))
	for name := range r.Renders {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		line := fmt.Sprintf("  %-20s %d", name, r.Renders[name])
		if out, ok := r.Outputs[name]; ok {
			line += "  (" + out + ")"
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Go runtime / GC:")
	fmt.Fprintf(w, "  alloc:    %.2f MB\n", r.GC.AllocMB)
	fmt.Fprintf(w, "  mallocs:  %d\n", r.GC.Mallocs)
	fmt.Fprintf(w, "  num_gc:   %d\n", r.GC.NumGC)
	fmt.Fprintf(w, "  gc_pause: %.2f ms (total)\n", r.GC.PauseTotalMS)
}

// WriteJSON writes r as indented JSON to path, or to stdout when path
// is "-".
func WriteJSON(path string, r *Report) error {
	var out io.Writer
	if path == "-" {
		out = os.Stdout
	} else {
		file, err := os.Create(path)
		if err != nil {
			return errors.New("E064").WithDetail(path).Wrap(err)
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return errors.New("E064").Wrap(err)
	}
	return nil
}
