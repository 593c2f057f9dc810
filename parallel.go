package gemmbitserial

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// MultiplyParallel is the caller-side composition of Multiply across worker
// goroutines: the LHS block rows are partitioned into disjoint, block-aligned
// ranges, each worker writing only its own slice of ctx.Res with read-only
// access to the operand matrices. Results are bit-exact with Multiply.
//
// workers <= 0 selects GOMAXPROCS. The kernel itself remains single-threaded
// per range; this helper only partitions the iteration space.
func MultiplyParallel(ctx *GEMMContext, workers int) error {
	p, err := newMulPlan(ctx)
	if err != nil {
		return err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	lhsRows := ctx.LHS.NRows
	numBlocks := (lhsRows + ctx.LHSBlock - 1) / ctx.LHSBlock
	if workers > numBlocks {
		workers = numBlocks
	}
	if workers <= 1 {
		p.run(0, lhsRows)
		return nil
	}

	var g errgroup.Group
	blocksPerWorker := (numBlocks + workers - 1) / workers
	for w := 0; w < workers; w++ {
		from := w * blocksPerWorker * ctx.LHSBlock
		to := min((w+1)*blocksPerWorker*ctx.LHSBlock, lhsRows)
		if from >= to {
			break
		}
		g.Go(func() error {
			p.run(from, to)
			return nil
		})
	}
	return g.Wait()
}
