package gemmbitserial

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MultiplyParallel must be bit-exact with Multiply for any worker count.
func TestMultiplyParallelMatchesSerial(t *testing.T) {
	const (
		lhsRows = 61
		depth   = 130
		rhsRows = 23
	)
	rng := rand.New(rand.NewSource(4))

	ctx, err := AllocGEMMContext(lhsRows, depth, rhsRows, 3, 2, true, false,
		WithCacheBits(8000))
	require.NoError(t, err)
	defer ctx.Release()

	lhsVals := make([]int32, lhsRows*depth)
	rhsVals := make([]int32, rhsRows*depth)
	randomOperand(rng, lhsVals, 3, true)
	randomOperand(rng, rhsVals, 2, false)
	require.NoError(t, ImportRegular(ctx.LHS, lhsVals, false))
	require.NoError(t, ImportRegular(ctx.RHS, rhsVals, false))

	require.NoError(t, Multiply(ctx))
	want := make([]int32, len(ctx.Res))
	copy(want, ctx.Res)

	for _, workers := range []int{0, 1, 2, 3, 4, 16} {
		clear(ctx.Res)
		require.NoError(t, MultiplyParallel(ctx, workers))
		assert.Equal(t, want, ctx.Res, "workers=%d", workers)
	}
}

func TestMultiplyParallelPropagatesValidation(t *testing.T) {
	lhs, err := Alloc(2, 4, 64, false, 2, 64)
	require.NoError(t, err)
	rhs, err := Alloc(2, 4, 128, false, 2, 64)
	require.NoError(t, err)

	ctx := &GEMMContext{LHS: lhs, RHS: rhs, LHSBlock: 2, RHSBlock: 2, Res: make([]int32, 16)}
	var dimErr *ErrDimensionMismatch
	assert.ErrorAs(t, MultiplyParallel(ctx, 4), &dimErr)
}
