package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/crlib/crtime"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/metamorphic"
	"github.com/cockroachdb/tokenbucket"
	"github.com/guptarohit/asciigraph"
	"github.com/lucasgdosr/segdeque"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

const (
	minLatency = 1
	maxLatency = int64(10 * time.Second)
	// plotPoints is the number of throughput samples taken for --plot.
	plotPoints = 60
)

var benchConfig struct {
	ops       int
	initial   int
	blockSize int
	workload  string
	seed      int64
	rate      float64
	plot      bool
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "measure per-operation latency of a deque workload",
	Long: `
Runs a workload against a deque of int64 and reports latency percentiles per
operation, along with the final length and capacity. Workloads:

  queue  push-back and pop-front
  stack  push-back and pop-back
  mixed  pushes and pops at both ends, random reads, middle inserts and erases

With --rate, operations are paced by a token bucket and the latencies exclude
the time spent waiting for tokens.
`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

type benchOp struct {
	name string
	fn   func()
}

func runBench(cmd *cobra.Command, args []string) error {
	d, err := segdeque.MakeDequeWithOptions[int64](segdeque.Options{BlockSize: benchConfig.blockSize})
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(benchConfig.seed))
	for i := 0; i < benchConfig.initial; i++ {
		d.PushBack(int64(i))
	}

	ops, err := workload(benchConfig.workload, d, rng)
	if err != nil {
		return err
	}
	nextOp := ops.RandomDeck(rng)

	hists := make(map[string]*hdrhistogram.Histogram)
	var order []string
	for _, op := range ops {
		hists[op.Item.name] = hdrhistogram.New(minLatency, maxLatency, 2)
		order = append(order, op.Item.name)
	}

	var limiter tokenbucket.TokenBucket
	if r := benchConfig.rate; r > 0 {
		limiter.Init(tokenbucket.TokensPerSecond(r), tokenbucket.Tokens(max(r/10, 1)))
	}

	interval := max(benchConfig.ops/plotPoints, 1)
	var throughput []float64
	start := crtime.NowMono()
	lastSample := start
	for i := 0; i < benchConfig.ops; i++ {
		if benchConfig.rate > 0 {
			for {
				ok, d := limiter.TryToFulfill(1)
				if ok {
					break
				}
				time.Sleep(d)
			}
		}
		op := nextOp()
		t := crtime.NowMono()
		op.fn()
		if err := recordLatency(hists[op.name], t.Elapsed()); err != nil {
			return err
		}
		if (i+1)%interval == 0 {
			if secs := lastSample.Elapsed().Seconds(); secs > 0 {
				throughput = append(throughput, float64(interval)/secs)
			}
			lastSample = crtime.NowMono()
		}
	}
	elapsed := start.Elapsed()

	tbl := tablewriter.NewWriter(os.Stdout)
	tbl.SetHeader([]string{"Op", "Count", "p50", "p95", "p99", "Max"})
	for _, name := range order {
		h := hists[name]
		if h.TotalCount() == 0 {
			continue
		}
		tbl.Append([]string{
			name,
			string(crhumanize.Count(h.TotalCount(), crhumanize.Compact)),
			time.Duration(h.ValueAtQuantile(50)).String(),
			time.Duration(h.ValueAtQuantile(95)).String(),
			time.Duration(h.ValueAtQuantile(99)).String(),
			time.Duration(h.Max()).String(),
		})
	}
	tbl.Render()

	var opsPerSec int64
	if secs := elapsed.Seconds(); secs > 0 {
		opsPerSec = int64(float64(benchConfig.ops) / secs)
	}
	fmt.Printf("%s ops in %s (%s ops/sec)\n",
		crhumanize.Count(int64(benchConfig.ops), crhumanize.Compact),
		elapsed.Round(time.Millisecond),
		crhumanize.Count(opsPerSec, crhumanize.Compact))
	fmt.Printf("len %s, cap %s (%s), %d blocks of %d\n",
		crhumanize.Count(int64(d.Len()), crhumanize.Compact),
		crhumanize.Count(int64(d.Cap()), crhumanize.Compact),
		crhumanize.Bytes(int64(d.Cap())*8, crhumanize.Compact, crhumanize.OmitI),
		d.Cap()/d.BlockSize(), d.BlockSize())

	if benchConfig.plot && len(throughput) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(throughput, asciigraph.Height(10), asciigraph.Caption("ops/sec")))
	}
	return nil
}

// recordLatency records d in h. Latencies above maxLatency are recorded as
// maxLatency.
func recordLatency(h *hdrhistogram.Histogram, d time.Duration) error {
	return h.RecordValue(min(d.Nanoseconds(), maxLatency))
}

// workload returns the weighted operation mix of the named workload.
func workload(name string, d *segdeque.Deque[int64], rng *rand.Rand) (metamorphic.Weighted[benchOp], error) {
	var next int64
	pushBack := benchOp{"push-back", func() { next++; d.PushBack(next) }}
	pushFront := benchOp{"push-front", func() { next++; d.PushFront(next) }}
	popBack := benchOp{"pop-back", func() { d.PopBack() }}
	popFront := benchOp{"pop-front", func() { d.PopFront() }}

	switch name {
	case "queue":
		return metamorphic.Weighted[benchOp]{
			{Item: pushBack, Weight: 1},
			{Item: popFront, Weight: 1},
		}, nil
	case "stack":
		return metamorphic.Weighted[benchOp]{
			{Item: pushBack, Weight: 1},
			{Item: popBack, Weight: 1},
		}, nil
	case "mixed":
		at := benchOp{"at", func() {
			if n := d.Len(); n > 0 {
				_ = d.At(rng.Intn(n))
			}
		}}
		insert := benchOp{"insert", func() {
			next++
			d.Insert(d.Begin().Add(rng.Intn(d.Len()+1)), next)
		}}
		erase := benchOp{"erase", func() {
			if n := d.Len(); n > 0 {
				d.Erase(d.Begin().Add(rng.Intn(n)))
			}
		}}
		return metamorphic.Weighted[benchOp]{
			{Item: pushBack, Weight: 4},
			{Item: pushFront, Weight: 4},
			{Item: popBack, Weight: 4},
			{Item: popFront, Weight: 4},
			{Item: at, Weight: 8},
			{Item: insert, Weight: 1},
			{Item: erase, Weight: 1},
		}, nil
	default:
		return nil, errors.Newf("unknown workload %q", name)
	}
}
