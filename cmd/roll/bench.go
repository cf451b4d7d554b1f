package main

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/gofrs/uuid"
	"github.com/risor-io/roll"
	"github.com/risor-io/roll/bytecode"
	"github.com/risor-io/roll/rng"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var benchCmd = &cobra.Command{
	Use:   "bench [expr]",
	Short: "Benchmark the evaluation of a dice expression",
	Long: `Evaluate a dice expression repeatedly and report timing statistics.
Iteration i rolls with a generator derived from the seed and i, so every run
of the benchmark performs the same work.`,
	Args: cobra.MaximumNArgs(1),
	RunE: benchHandler,
}

func init() {
	benchCmd.Flags().IntP("iterations", "n", 100_000, "Number of timed evaluations")
	benchCmd.Flags().Int("warmup", 1000, "Number of untimed evaluations run first")
}

// BenchResult holds benchmark statistics
type BenchResult struct {
	RunID         string  `json:"run_id" yaml:"run_id"`
	Expression    string  `json:"expression" yaml:"expression"`
	Seed          uint64  `json:"seed" yaml:"seed"`
	Iterations    int     `json:"iterations" yaml:"iterations"`
	Warmup        int     `json:"warmup" yaml:"warmup"`
	Workers       int     `json:"workers" yaml:"workers"`
	Errors        int64   `json:"errors" yaml:"errors"`
	TotalNs       int64   `json:"total_ns" yaml:"total_ns"`
	TotalDuration string  `json:"total_duration" yaml:"total_duration"`
	OpsPerSec     float64 `json:"ops_per_sec" yaml:"ops_per_sec"`
	MinNs         int64   `json:"min_ns" yaml:"min_ns"`
	MaxNs         int64   `json:"max_ns" yaml:"max_ns"`
	AvgNs         int64   `json:"avg_ns" yaml:"avg_ns"`
	MedianNs      int64   `json:"median_ns" yaml:"median_ns"`
	P95Ns         int64   `json:"p95_ns" yaml:"p95_ns"`
	P99Ns         int64   `json:"p99_ns" yaml:"p99_ns"`
}

type benchConfig struct {
	iterations int
	warmup     int
	workers    int
	seed       uint64
	limit      uint64
}

// benchStats summarizes a set of per-evaluation durations.
type benchStats struct {
	min, max, avg, median, p95, p99 time.Duration
}

func computeStats(durations []time.Duration) benchStats {
	if len(durations) == 0 {
		return benchStats{}
	}
	sorted := slices.Clone(durations)
	slices.Sort(sorted)
	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	n := len(sorted)
	return benchStats{
		min:    sorted[0],
		max:    sorted[n-1],
		avg:    total / time.Duration(n),
		median: sorted[n/2],
		p95:    sorted[int(float64(n)*0.95)],
		p99:    sorted[int(float64(n)*0.99)],
	}
}

func runBench(ctx context.Context, code *bytecode.Code, cfg benchConfig) (*BenchResult, error) {
	if cfg.iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive (got %d)", cfg.iterations)
	}
	if cfg.workers <= 0 {
		cfg.workers = 1
	}
	if _, err := roll.Evaluate(code, cfg.limit, rng.New(cfg.seed)); err != nil {
		return nil, fmt.Errorf("code error: %w", err)
	}
	for i := 0; i < cfg.warmup; i++ {
		_, _ = roll.Evaluate(code, cfg.limit, rng.Derive(cfg.seed, uint64(i)))
	}
	runtime.GC()

	durations := make([]time.Duration, cfg.iterations)
	var failures atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	start := time.Now()
	for w := 0; w < cfg.workers; w++ {
		g.Go(func() error {
			for n, i := 0, w; i < cfg.iterations; n, i = n+1, i+cfg.workers {
				if n%1024 == 0 && ctx.Err() != nil {
					return ctx.Err()
				}
				sampler := rng.Derive(cfg.seed, uint64(i))
				t := time.Now()
				_, err := roll.Evaluate(code, cfg.limit, sampler)
				durations[i] = time.Since(t)
				if err != nil {
					failures.Add(1)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	total := time.Since(start)

	stats := computeStats(durations)
	return &BenchResult{
		Expression:    code.Source(),
		Seed:          cfg.seed,
		Iterations:    cfg.iterations,
		Warmup:        cfg.warmup,
		Workers:       cfg.workers,
		Errors:        failures.Load(),
		TotalNs:       total.Nanoseconds(),
		TotalDuration: total.Round(time.Microsecond).String(),
		OpsPerSec:     float64(cfg.iterations) / total.Seconds(),
		MinNs:         stats.min.Nanoseconds(),
		MaxNs:         stats.max.Nanoseconds(),
		AvgNs:         stats.avg.Nanoseconds(),
		MedianNs:      stats.median.Nanoseconds(),
		P95Ns:         stats.p95.Nanoseconds(),
		P99Ns:         stats.p99.Nanoseconds(),
	}, nil
}

func benchHandler(cmd *cobra.Command, args []string) error {
	source, err := getExpression(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	code, err := roll.Compile(source)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), red(describeError(err, source)))
		return errReported
	}
	seed, err := resolveSeed()
	if err != nil {
		return err
	}
	iterations, _ := cmd.Flags().GetInt("iterations")
	warmup, _ := cmd.Flags().GetInt("warmup")
	cfg := benchConfig{
		iterations: iterations,
		warmup:     warmup,
		workers:    viper.GetInt("workers"),
		seed:       seed,
		limit:      viper.GetUint64("limit"),
	}

	runID := uuid.Must(uuid.NewV4()).String()
	log := logger.With().Str("run_id", runID).Logger()
	log.Info().Str("expression", source).Uint64("seed", seed).
		Int("iterations", cfg.iterations).Int("workers", cfg.workers).Msg("starting benchmark")

	result, err := runBench(cmd.Context(), code, cfg)
	if err != nil {
		return err
	}
	result.RunID = runID
	log.Info().Str("total", result.TotalDuration).Int64("errors", result.Errors).Msg("benchmark complete")

	output, err := formatOutput(result, viper.GetString("output"), viper.GetBool("no-color"), func() string {
		return formatBenchText(result)
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

func formatBenchText(r *BenchResult) string {
	title := color.New(color.FgYellow, color.Bold).SprintFunc()
	label := color.New(color.FgMagenta).SprintFunc()
	value := color.New(color.FgGreen).SprintFunc()
	round := func(ns int64) string {
		return time.Duration(ns).String()
	}

	var sb strings.Builder
	sb.WriteString(title("RESULTS") + "\n")
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	rows := []struct{ name, value string }{
		{"Expression:", r.Expression},
		{"Seed:", fmt.Sprintf("%d", r.Seed)},
		{"Iterations:", fmt.Sprintf("%d", r.Iterations)},
		{"Workers:", fmt.Sprintf("%d", r.Workers)},
		{"Total time:", r.TotalDuration},
		{"Ops/sec:", fmt.Sprintf("%.2f", r.OpsPerSec)},
		{"Min:", round(r.MinNs)},
		{"Max:", round(r.MaxNs)},
		{"Avg:", round(r.AvgNs)},
		{"Median:", round(r.MedianNs)},
		{"p95:", round(r.P95Ns)},
		{"p99:", round(r.P99Ns)},
	}
	if r.Errors > 0 {
		rows = append(rows, struct{ name, value string }{"Errors:", fmt.Sprintf("%d", r.Errors)})
	}
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%s %s\n", label(fmt.Sprintf("%-12s", row.name)), value(row.value)))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
