package gemmbitserial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// For any feasible input the returned blocks must be positive, divisible by
// their multipliers, and keep the combined working-set estimate within the
// cache budget.
func TestComputeBlockSizeFeasibility(t *testing.T) {
	cases := []struct {
		lhsMult, rhsMult float64
		cacheBits        float64
		depthBits        float64
	}{
		{2, 2, 256 * 1024 * 8, 256},
		{2, 2, 32 * 1024 * 8, 4096},
		{4, 2, 1024 * 1024 * 8, 65536},
		{1, 1, 16 * 1024 * 8, 64},
		{8, 4, 512 * 1024 * 8, 8192},
	}
	for _, tc := range cases {
		lhsBlock, rhsBlock, err := computeBlockSize(tc.lhsMult, tc.rhsMult, tc.cacheBits, tc.depthBits)
		require.NoError(t, err)

		assert.Positive(t, lhsBlock)
		assert.Positive(t, rhsBlock)
		assert.Zero(t, lhsBlock%int(tc.lhsMult))
		assert.Zero(t, rhsBlock%int(tc.rhsMult))

		workingSet := float64(resultElemCost*lhsBlock*rhsBlock) +
			tc.depthBits*float64(lhsBlock+rhsBlock)
		assert.LessOrEqual(t, workingSet, tc.cacheBits)
	}
}

func TestComputeBlockSizeTooSmall(t *testing.T) {
	// budget below one register-blocking unit of depth
	_, _, err := computeBlockSize(2, 2, 16, 4096)
	assert.ErrorIs(t, err, ErrCacheTooSmall)
}

func TestFinetuneBlockSize(t *testing.T) {
	// 100 rows with a block of 64 pads to 128 (28 wasted); a smaller
	// divisible candidate must do better
	got := finetuneBlockSize(100, 64, 2)
	assert.Zero(t, got%2)
	assert.LessOrEqual(t, alignTo(100, got)-100, alignTo(100, 64)-100)

	// exact divisor incurs zero penalty
	got = finetuneBlockSize(96, 64, 2)
	assert.Zero(t, alignTo(96, got)-96)

	// never exceeds the cache-optimal maximum
	assert.LessOrEqual(t, got, 64)
}

func TestAllocGEMMContextRegisterBlockFallback(t *testing.T) {
	// tiny matrices: cache-optimal blocks exceed the row counts, so blocking
	// falls back to row counts rounded to the register factor
	ctx, err := AllocGEMMContext(3, 64, 5, 2, 2, false, false,
		WithCacheBits(1024*1024*8),
		WithRegisterBlocking(2, 1, 2),
	)
	require.NoError(t, err)
	defer ctx.Release()

	assert.Equal(t, 4, ctx.LHSBlock)
	assert.Equal(t, 6, ctx.RHSBlock)
	assert.Equal(t, 4, ctx.LHS.NRowsA)
	assert.Equal(t, 6, ctx.RHS.NRowsA)
	assert.Len(t, ctx.Res, 3*5)
}

func TestAllocGEMMContextCacheBlocking(t *testing.T) {
	ctx, err := AllocGEMMContext(4096, 1024, 4096, 2, 2, false, false,
		WithCacheBits(128*1024*8),
		WithRegisterBlocking(2, 1, 2),
	)
	require.NoError(t, err)
	defer ctx.Release()

	assert.Positive(t, ctx.LHSBlock)
	assert.Positive(t, ctx.RHSBlock)
	assert.Zero(t, ctx.LHSBlock%2)
	assert.Zero(t, ctx.RHSBlock%2)
	assert.LessOrEqual(t, ctx.LHSBlock, 4096)
	assert.LessOrEqual(t, ctx.RHSBlock, 4096)

	// operand rows are aligned to the chosen blocks
	assert.Zero(t, ctx.LHS.NRowsA%ctx.LHSBlock)
	assert.Zero(t, ctx.RHS.NRowsA%ctx.RHSBlock)
}

func TestAllocGEMMContextTooSmallCache(t *testing.T) {
	_, err := AllocGEMMContext(16, 4096, 16, 2, 2, false, false, WithCacheBits(1))
	assert.ErrorIs(t, err, ErrCacheTooSmall)
}

func TestDefaultCacheBits(t *testing.T) {
	assert.Positive(t, DefaultCacheBits())
}
