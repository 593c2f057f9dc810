// Command bitgemm is a small driver for the bit-serial GEMM library: it
// benchmarks random multiplies and reports the selected kernel tier.
package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/klauspost/cpuid/v2"
	"github.com/spf13/cobra"

	"github.com/liuguoyou/gemmbitserial"
	"github.com/liuguoyou/gemmbitserial/bitvec"
	"github.com/liuguoyou/gemmbitserial/internal/simd"
)

var (
	lhsRows, depth, rhsRows int
	lhsBits, rhsBits        int
	lhsSigned, rhsSigned    bool
	iters, workers          int
	seed                    int64
	verbose                 bool
)

func main() {
	root := &cobra.Command{
		Use:           "bitgemm",
		Short:         "Bit-serial GEMM driver",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	bench := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark a random bit-serial multiply and verify it against the bitmap reference",
		RunE:  runBench,
	}
	bench.Flags().IntVar(&lhsRows, "lhs-rows", 256, "LHS row count")
	bench.Flags().IntVar(&depth, "depth", 1024, "shared depth dimension")
	bench.Flags().IntVar(&rhsRows, "rhs-rows", 256, "RHS row count")
	bench.Flags().IntVar(&lhsBits, "lhs-bits", 2, "LHS bits of precision (1-8)")
	bench.Flags().IntVar(&rhsBits, "rhs-bits", 2, "RHS bits of precision (1-8)")
	bench.Flags().BoolVar(&lhsSigned, "lhs-signed", false, "treat LHS top bit-plane as negative")
	bench.Flags().BoolVar(&rhsSigned, "rhs-signed", false, "treat RHS top bit-plane as negative")
	bench.Flags().IntVar(&iters, "iters", 10, "multiply iterations to time")
	bench.Flags().IntVar(&workers, "workers", 1, "worker goroutines (1 = single-threaded kernel)")
	bench.Flags().Int64Var(&seed, "seed", 42, "random seed")
	bench.Flags().BoolVar(&verbose, "verbose", false, "log blocking decisions")

	info := &cobra.Command{
		Use:   "info",
		Short: "Print the selected kernel tier and detected cache sizes",
		Run:   runInfo,
	}

	root.AddCommand(bench, info)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runBench(cmd *cobra.Command, args []string) error {
	if lhsBits < 1 || lhsBits > 8 || rhsBits < 1 || rhsBits > 8 {
		return fmt.Errorf("bit depths must be in [1, 8], got %d and %d", lhsBits, rhsBits)
	}
	if (lhsBits == 1 && lhsSigned) || (rhsBits == 1 && rhsSigned) {
		// the bitmap reference path has no bipolar encoding to verify against
		return fmt.Errorf("signed operands need at least 2 bits in this driver")
	}

	opts := []gemmbitserial.Option{}
	if verbose {
		opts = append(opts, gemmbitserial.WithLogger(gemmbitserial.NewTextLogger(slog.LevelDebug)))
	}
	ctx, err := gemmbitserial.AllocGEMMContext(
		lhsRows, depth, rhsRows, lhsBits, rhsBits, lhsSigned, rhsSigned, opts...,
	)
	if err != nil {
		return err
	}
	defer ctx.Release()

	rng := rand.New(rand.NewSource(seed))
	lhsVals := bitvec.Random(rng, lhsBits, lhsRows*depth)
	rhsVals := bitvec.Random(rng, rhsBits, rhsRows*depth)
	if err := gemmbitserial.ImportRegular(ctx.LHS, lhsVals, false); err != nil {
		return err
	}
	if err := gemmbitserial.ImportRegular(ctx.RHS, rhsVals, false); err != nil {
		return err
	}

	mul := func() error { return gemmbitserial.Multiply(ctx) }
	if workers != 1 {
		mul = func() error { return gemmbitserial.MultiplyParallel(ctx, workers) }
	}

	start := time.Now()
	for i := 0; i < iters; i++ {
		if err := mul(); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	if err := verify(ctx, lhsVals, rhsVals); err != nil {
		return err
	}

	ops := 2 * float64(lhsRows) * float64(depth) * float64(rhsRows) * float64(iters)
	fmt.Printf("shape %dx%dx%d lhs %d-bit rhs %d-bit isa %s\n",
		lhsRows, depth, rhsRows, lhsBits, rhsBits, simd.ActiveISA())
	fmt.Printf("blocks lhs=%d rhs=%d\n", ctx.LHSBlock, ctx.RHSBlock)
	fmt.Printf("%d iterations in %v (%.2f GOPS)\n", iters, elapsed, ops/elapsed.Seconds()/1e9)
	return nil
}

// verify checks a handful of result rows against the bitmap-backed reference
// path.
func verify(ctx *gemmbitserial.GEMMContext, lhsVals, rhsVals []uint8) error {
	a := bitvec.ToMatrix(lhsVals, lhsRows, depth, lhsBits)
	step := max(rhsRows/8, 1)
	for j := 0; j < rhsRows; j += step {
		x := bitvec.ToVector(rhsVals[j*depth:(j+1)*depth], rhsBits)
		want := bitvec.MatrixVector(a, x, lhsSigned, rhsSigned)
		for i := 0; i < lhsRows; i++ {
			if got := ctx.Res[i*rhsRows+j]; got != want[i] {
				return fmt.Errorf("verification failed at [%d][%d]: got %d, want %d", i, j, got, want[i])
			}
		}
	}
	return nil
}

func runInfo(cmd *cobra.Command, args []string) {
	fmt.Println("kernel tier:", simd.ActiveISA())
	fmt.Println("override:", simd.IsOverridden())
	fmt.Println("cpu:", cpuid.CPU.BrandName)
	fmt.Println("l1d bytes:", cpuid.CPU.Cache.L1D)
	fmt.Println("l2 bytes:", cpuid.CPU.Cache.L2)
	fmt.Println("default cache budget bits:", gemmbitserial.DefaultCacheBits())
}
