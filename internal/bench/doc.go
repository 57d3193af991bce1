// Package bench measures the store's update pipeline through the binding
// layer.
//
// A run mounts a small component tree over a {count} store:
//
//	Benchmark
//	├── CountDisplay        UseStore, "Count: N"
//	├── DoubleDisplay       UseSelector(count*2)
//	└── ProgressiveDisplay  UseSelector(count%4 > 0)
//
// and then performs a number of functional updates, each incrementing
// count. The report carries the wall time of the update loop, per-update
// latency percentiles, render counts per component and GC statistics.
//
// # Usage
//
//	report, err := bench.Run(ctx, bench.Options{Iterations: 1000})
//	if err != nil {
//	    return err
//	}
//	bench.WriteSummary(os.Stdout, report)
package bench
