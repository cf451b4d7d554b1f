package main

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/risor-io/roll"
	"github.com/stretchr/testify/require"
)

func TestComputeStats(t *testing.T) {
	durations := make([]time.Duration, 100)
	for i := range durations {
		// reverse order to check that sorting happens
		durations[i] = time.Duration(100-i) * time.Microsecond
	}
	stats := computeStats(durations)
	require.Equal(t, time.Microsecond, stats.min)
	require.Equal(t, 100*time.Microsecond, stats.max)
	require.Equal(t, 50500*time.Nanosecond, stats.avg)
	require.Equal(t, 51*time.Microsecond, stats.median)
	require.Equal(t, 96*time.Microsecond, stats.p95)
	require.Equal(t, 100*time.Microsecond, stats.p99)

	// the input is left untouched
	require.Equal(t, 100*time.Microsecond, durations[0])

	require.Equal(t, benchStats{}, computeStats(nil))
}

func TestRunBench(t *testing.T) {
	code, err := roll.Compile("(1d20)d(1d20)")
	require.Nil(t, err)
	result, err := runBench(context.Background(), code, benchConfig{
		iterations: 200,
		warmup:     10,
		workers:    4,
		seed:       1423,
		limit:      math.MaxUint64,
	})
	require.Nil(t, err)
	require.Equal(t, 200, result.Iterations)
	require.Equal(t, int64(0), result.Errors)
	require.Equal(t, "(1d20)d(1d20)", result.Expression)
	require.LessOrEqual(t, result.MinNs, result.MedianNs)
	require.LessOrEqual(t, result.MedianNs, result.MaxNs)
	require.Greater(t, result.OpsPerSec, 0.0)
}

func TestRunBenchRejectsFailingCode(t *testing.T) {
	code, err := roll.Compile("1/0")
	require.Nil(t, err)
	_, err = runBench(context.Background(), code, benchConfig{iterations: 10, limit: 10})
	require.EqualError(t, err, "code error: can't divide by zero")

	code, err = roll.Compile("1")
	require.Nil(t, err)
	_, err = runBench(context.Background(), code, benchConfig{iterations: 0})
	require.EqualError(t, err, "iterations must be positive (got 0)")
}

func TestRunBenchCountsErrors(t *testing.T) {
	// fails whenever the die shows 1
	code, err := roll.Compile("6 / (1d2 - 1)")
	require.Nil(t, err)
	seed := uint64(0)
	for ; ; seed++ {
		if _, err := roll.Eval("6 / (1d2 - 1)", seed, 1); err == nil {
			break
		}
	}
	result, err := runBench(context.Background(), code, benchConfig{
		iterations: 500,
		workers:    2,
		seed:       seed,
		limit:      1,
	})
	require.Nil(t, err)
	require.Greater(t, result.Errors, int64(0))
	require.Less(t, result.Errors, int64(500))
}
