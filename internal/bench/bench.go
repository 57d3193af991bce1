package bench

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strconv"
	"time"

	"github.com/vango-dev/vstore/internal/config"
	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/bind"
	"github.com/vango-dev/vstore/pkg/store"
	"github.com/vango-dev/vstore/pkg/value"
)

// Component names used in Report.Renders.
const (
	Root        = "Benchmark"
	Count       = "CountDisplay"
	Double      = "DoubleDisplay"
	Progressive = "ProgressiveDisplay"
)

// Options configures a run.
type Options struct {
	// Iterations is the number of functional updates (default: 1000).
	Iterations int

	// Subscribers is the number of CountDisplay components.
	Subscribers int

	// Selectors is the number of DoubleDisplay components.
	Selectors int

	// Logger receives render logs at debug level (default: slog.Default()).
	Logger *slog.Logger

	// Metrics, if set, is attached to the benchmark store.
	Metrics *store.Metrics
}

// OptionsFromConfig converts the bench section of a configuration.
func OptionsFromConfig(cfg config.BenchConfig) Options {
	return Options{
		Iterations:  cfg.Iterations,
		Subscribers: cfg.Subscribers,
		Selectors:   cfg.Selectors,
	}
}

// tree is a mounted benchmark component tree.
type tree struct {
	root       *bind.Component
	components []*bind.Component
}

func countOf(v *value.Object) int {
	n, _ := v.Value("count").(int)
	return n
}

// mountTree mounts the benchmark components over s.
func mountTree(s *store.Store[*value.Object], opts Options, logger *slog.Logger) *tree {
	logRender := func(c *bind.Component) {
		logger.Debug("rendered", "component", c.Name(), "renders", c.Renders(), "output", c.Output())
	}

	t := &tree{}
	t.root = bind.Mount(nil, Root, func(*bind.Owner) string {
		return "Benchmark"
	}, logRender)

	mount := func(name string, view bind.View) {
		t.components = append(t.components, bind.Mount(t.root.Owner(), name, view, logRender))
	}

	for range opts.Subscribers {
		mount(Count, func(o *bind.Owner) string {
			return "Count: " + strconv.Itoa(countOf(bind.UseStore(o, s)))
		})
	}
	for range opts.Selectors {
		mount(Double, func(o *bind.Owner) string {
			double := bind.UseSelector(o, s, func(v *value.Object) int { return countOf(v) * 2 })
			return "Double Count: " + strconv.Itoa(double)
		})
	}
	mount(Progressive, func(o *bind.Owner) string {
		progressive := bind.UseSelector(o, s, func(v *value.Object) bool { return countOf(v)%4 > 0 })
		return "Progressive Count: " + strconv.FormatBool(progressive)
	})
	return t
}

// renders sums render counts per component name.
func (t *tree) renders() map[string]int {
	out := map[string]int{Root: t.root.Renders()}
	for _, c := range t.components {
		out[c.Name()] += c.Renders()
	}
	return out
}

// outputs returns the last output of each distinct component name.
func (t *tree) outputs() map[string]string {
	out := make(map[string]string)
	for _, c := range t.components {
		out[c.Name()] = c.Output()
	}
	return out
}

// Run mounts the benchmark tree, performs the updates and unmounts the
// tree. It stops early, returning ctx's error, when ctx is done.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Iterations == 0 {
		opts.Iterations = config.DefaultIterations
	}
	if opts.Iterations < 0 || opts.Subscribers < 0 || opts.Selectors < 0 {
		return nil, errors.New("E042").
			WithDetail(fmt.Sprintf("iterations=%d subscribers=%d selectors=%d", opts.Iterations, opts.Subscribers, opts.Selectors)).
			WithSuggestion("Counts cannot be negative")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	storeOpts := []store.Option[*value.Object]{
		store.WithName[*value.Object]("bench"),
		store.WithLogger[*value.Object](logger),
	}
	if opts.Metrics != nil {
		storeOpts = append(storeOpts, store.WithMetrics[*value.Object](opts.Metrics))
	}
	s := store.New(value.ObjectOf("count", 0), storeOpts...)

	t := mountTree(s, opts, logger)
	defer t.root.Unmount()
	listeners := s.Listeners()

	increment := func(prev *value.Object) *value.Object {
		return value.ObjectOf("count", countOf(prev)+1)
	}

	latencies := make([]time.Duration, 0, opts.Iterations)
	accepted := 0

	runtime.GC()
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)

	start := time.Now()
	for range opts.Iterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t0 := time.Now()
		if s.Update(increment) {
			accepted++
		}
		latencies = append(latencies, time.Since(t0))
	}
	elapsed := time.Since(start)

	runtime.ReadMemStats(&after)
	slices.Sort(latencies)

	logger.Info("benchmark finished",
		"iterations", opts.Iterations,
		"elapsed", elapsed,
		"count", countOf(s.Get()))

	return buildReport(opts, elapsed, latencies, accepted, listeners, t, before, after), nil
}
