package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/risor-io/roll"
	"github.com/risor-io/roll/bytecode"
	"github.com/risor-io/roll/rng"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var searchCmd = &cobra.Command{
	Use:   "search [expr]",
	Short: "Find the seeds for which an expression rolls a target value",
	Long: `Evaluate an expression once for every seed in [start, start+count) and
report the seeds whose result equals the target. Seeds are spread across
--workers goroutines.`,
	Example: `  roll search --target 400 "(1d20)d(1d20)"
  roll search --start 5000 --count 1000 --target 20 d20`,
	Args: cobra.MaximumNArgs(1),
	RunE: searchHandler,
}

func init() {
	searchCmd.Flags().Uint64("start", 0, "First seed to evaluate")
	searchCmd.Flags().Uint64("count", 1_000_000, "Number of seeds to evaluate")
	searchCmd.Flags().Int64("target", 0, "Result to search for")
}

const (
	// seeds claimed by a worker at a time
	searchChunk = 4096

	maxReportedErrors = 10
)

type searchConfig struct {
	start   uint64
	count   uint64
	target  int64
	limit   uint64
	workers int
}

type searchResult struct {
	RunID      string   `json:"run_id" yaml:"run_id"`
	Expression string   `json:"expression" yaml:"expression"`
	Target     int64    `json:"target" yaml:"target"`
	Start      uint64   `json:"start" yaml:"start"`
	Count      uint64   `json:"count" yaml:"count"`
	Matches    []uint64 `json:"matches" yaml:"matches"`
	Errors     int      `json:"errors" yaml:"errors"`
}

// searchSeeds evaluates code for every seed in the configured range and
// returns the matching seeds in ascending order along with the number of
// seeds whose evaluation failed. Failures are also returned as an aggregated
// error, holding the first few individual errors.
func searchSeeds(ctx context.Context, code *bytecode.Code, cfg searchConfig, progress func(n int)) ([]uint64, int, error) {
	if cfg.count > math.MaxUint64-cfg.start {
		cfg.count = math.MaxUint64 - cfg.start
	}
	if cfg.workers <= 0 {
		cfg.workers = 1
	}

	var (
		next     atomic.Uint64
		mu       sync.Mutex
		matches  = []uint64{}
		errs     *multierror.Error
		reported int
		failures int
	)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.workers; w++ {
		g.Go(func() error {
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				offset := next.Add(searchChunk) - searchChunk
				if offset >= cfg.count {
					return nil
				}
				end := min(offset+searchChunk, cfg.count)

				var found []uint64
				var failed []error
				for i := offset; i < end; i++ {
					seed := cfg.start + i
					result, err := roll.Evaluate(code, cfg.limit, rng.New(seed))
					if err != nil {
						failed = append(failed, fmt.Errorf("seed %d: %w", seed, err))
						continue
					}
					if result == cfg.target {
						found = append(found, seed)
					}
				}

				mu.Lock()
				matches = append(matches, found...)
				failures += len(failed)
				for _, err := range failed {
					if reported == maxReportedErrors {
						break
					}
					errs = multierror.Append(errs, err)
					reported++
				}
				mu.Unlock()

				if progress != nil {
					progress(int(end - offset))
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, failures, err
	}
	slices.Sort(matches)
	if failures > reported {
		errs = multierror.Append(errs, fmt.Errorf("%d more seeds failed", failures-reported))
	}
	return matches, failures, errs.ErrorOrNil()
}

// progressMax converts a seed count to a progress bar maximum, saturating
// at math.MaxInt64.
func progressMax(count uint64) int64 {
	if count > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(count)
}

func newSearchProgress(count uint64) *progressbar.ProgressBar {
	total := progressMax(count)
	if !isTerminal(os.Stderr) || viper.GetString("output") != "text" {
		return progressbar.DefaultSilent(total)
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("searching"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func searchHandler(cmd *cobra.Command, args []string) error {
	source, err := getExpression(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	code, err := roll.Compile(source)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), red(describeError(err, source)))
		return errReported
	}
	flags := cmd.Flags()
	start, _ := flags.GetUint64("start")
	count, _ := flags.GetUint64("count")
	target, _ := flags.GetInt64("target")
	cfg := searchConfig{
		start:   start,
		count:   count,
		target:  target,
		limit:   viper.GetUint64("limit"),
		workers: viper.GetInt("workers"),
	}

	runID := uuid.Must(uuid.NewV4()).String()
	log := logger.With().Str("run_id", runID).Logger()
	log.Info().Str("expression", source).Int64("target", target).
		Uint64("start", start).Uint64("count", count).Int("workers", cfg.workers).Msg("starting search")

	bar := newSearchProgress(count)
	began := time.Now()
	matches, failures, searchErr := searchSeeds(cmd.Context(), code, cfg, func(n int) {
		bar.Add(n)
	})
	bar.Finish()
	if matches == nil && searchErr != nil {
		return searchErr
	}
	log.Info().Int("matches", len(matches)).Int("errors", failures).
		Dur("elapsed", time.Since(began)).Msg("search complete")

	result := searchResult{
		RunID:      runID,
		Expression: source,
		Target:     target,
		Start:      start,
		Count:      count,
		Matches:    matches,
		Errors:     failures,
	}
	output, err := formatOutput(result, viper.GetString("output"), viper.GetBool("no-color"), func() string {
		return fmt.Sprintf("%v", matches)
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	if searchErr != nil {
		log.Warn().Int("errors", failures).Msg("some seeds failed to evaluate")
		fmt.Fprintln(cmd.ErrOrStderr(), red(searchErr.Error()))
	}
	return nil
}
