package main

import (
	"testing"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/crlib/testutils/leaktest"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	defer leaktest.AfterTest(t)()
	checkConfig.concurrency = 4
	checkConfig.seed = 1
	checkConfig.ops = 300
	checkConfig.runs = 2
	checkConfig.blockSizes = []int{1, 3, 64}
	checkConfig.maxLen = 128
	require.NoError(t, runCheck(checkCmd, nil))

	// An invalid block size fails every run.
	checkConfig.blockSizes = []int{-1}
	require.Error(t, runCheck(checkCmd, nil))

	// A run that panics fails the command instead of crashing it.
	checkConfig.blockSizes = []int{3}
	checkConfig.runs = 1
	checkConfig.maxLen = -1
	require.ErrorContains(t, runCheck(checkCmd, nil), "block size 3, seed 1")
}

func TestBench(t *testing.T) {
	for _, w := range []string{"queue", "stack", "mixed"} {
		t.Run(w, func(t *testing.T) {
			benchConfig.ops = 2000
			benchConfig.initial = 100
			benchConfig.blockSize = 4
			benchConfig.workload = w
			benchConfig.seed = 1
			benchConfig.rate = 0
			benchConfig.plot = true
			require.NoError(t, runBench(benchCmd, nil))
		})
	}

	benchConfig.workload = "lifo"
	require.Error(t, runBench(benchCmd, nil))
}

func TestBenchRate(t *testing.T) {
	benchConfig.ops = 200
	benchConfig.initial = 0
	benchConfig.blockSize = 0
	benchConfig.workload = "queue"
	benchConfig.rate = 20000
	benchConfig.plot = false
	require.NoError(t, runBench(benchCmd, nil))
}

func TestBenchNoOps(t *testing.T) {
	benchConfig.ops = 0
	benchConfig.initial = 10
	benchConfig.blockSize = 0
	benchConfig.workload = "mixed"
	benchConfig.rate = 0
	benchConfig.plot = true
	require.NoError(t, runBench(benchCmd, nil))
}

func TestRecordLatency(t *testing.T) {
	h := hdrhistogram.New(minLatency, maxLatency, 2)
	require.NoError(t, recordLatency(h, 5*time.Microsecond))
	require.NoError(t, recordLatency(h, time.Hour))
	require.Equal(t, int64(2), h.TotalCount())
	require.GreaterOrEqual(t, h.Max(), int64(time.Second))
}
