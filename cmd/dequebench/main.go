package main

import (
	"log"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dequebench [command] (flags)",
	Short: "segmented deque model checking and benchmarking tool",
	Long:  ``,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(
		checkCmd,
		benchCmd,
	)

	checkCmd.Flags().IntVarP(
		&checkConfig.concurrency, "concurrency", "c", runtime.GOMAXPROCS(0), "number of runs checked concurrently")
	checkCmd.Flags().Int64Var(
		&checkConfig.seed, "seed", 1, "seed of the first run; run i uses seed+i")
	checkCmd.Flags().IntVarP(
		&checkConfig.ops, "ops", "n", 10000, "number of random operations per run")
	checkCmd.Flags().IntVar(
		&checkConfig.runs, "runs", 4, "number of runs per element type and block size")
	checkCmd.Flags().IntSliceVar(
		&checkConfig.blockSizes, "block-sizes", []int{1, 3, 64}, "block sizes to check")
	checkCmd.Flags().IntVar(
		&checkConfig.maxLen, "max-len", 4096, "maximum length the runs grow the deque to")

	benchCmd.Flags().IntVarP(
		&benchConfig.ops, "ops", "n", 1000000, "number of operations to measure")
	benchCmd.Flags().IntVar(
		&benchConfig.initial, "initial", 1000, "number of elements pushed before measuring")
	benchCmd.Flags().IntVar(
		&benchConfig.blockSize, "block-size", 0, "elements per block (0 means the default)")
	benchCmd.Flags().StringVarP(
		&benchConfig.workload, "workload", "w", "queue", "workload to run: queue, stack or mixed")
	benchCmd.Flags().Int64Var(
		&benchConfig.seed, "seed", 1, "seed for the operation mix")
	benchCmd.Flags().Float64Var(
		&benchConfig.rate, "rate", 0, "maximum operations per second (0 means unlimited)")
	benchCmd.Flags().BoolVar(
		&benchConfig.plot, "plot", false, "plot throughput over the run")

	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
