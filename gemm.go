package gemmbitserial

import (
	"github.com/liuguoyou/gemmbitserial/internal/simd"
)

// Multiply performs the blocked bit-serial multiply-accumulate, filling
// ctx.Res with one signed 32-bit accumulator per (lhs row, rhs row) pair.
// Every accumulator equals the ordinary integer dot product of the decoded
// rows; the packed layout, blocking and kernel tier never change the numbers.
//
// Accumulation is fixed-width int32: for large depth times high bit-depth
// operands overflow is possible and not detected. Callers must size their
// operands accordingly.
func Multiply(ctx *GEMMContext) error {
	p, err := newMulPlan(ctx)
	if err != nil {
		return err
	}
	p.run(0, ctx.LHS.NRows)
	return nil
}

// MultiplyThresholded multiplies and then folds each accumulator through the
// per-row threshold table, returning activation levels instead of raw sums:
// level[i*rhsRows+j] is the number of row i's thresholds that Res[i*rhsRows+j]
// meets or exceeds. The table must carry exactly one channel per LHS row;
// broadcast tables yield ErrThresholdBroadcast.
//
// ctx.Res still holds the raw accumulators afterwards.
func MultiplyThresholded(ctx *GEMMContext, thresholds *ThresholdTable) ([]int32, error) {
	if thresholds.NumChannels() != ctx.LHS.NRows {
		return nil, ErrThresholdBroadcast
	}
	if err := Multiply(ctx); err != nil {
		return nil, err
	}
	rhsRows := ctx.RHS.NRows
	out := make([]int32, ctx.LHS.NRows*rhsRows)
	for i := 0; i < ctx.LHS.NRows; i++ {
		for j := 0; j < rhsRows; j++ {
			out[i*rhsRows+j] = thresholds.Activation(i, ctx.Res[i*rhsRows+j])
		}
	}
	return out, nil
}

// mulPlan is the validated, precomputed state for one multiply call. The
// bipolar paths need per-row popcounts or weighted row sums of an operand;
// computing them once here keeps the inner loops at pure AND+popcount.
type mulPlan struct {
	ctx  *GEMMContext
	pair func(i, j int) int32

	// plane-0 popcounts per row, bipolar x bipolar only
	lhsRowPop, rhsRowPop []int32
	// weighted row sums of the regular operand, mixed case only
	lhsRowSums, rhsRowSums []int32
}

func newMulPlan(ctx *GEMMContext) (*mulPlan, error) {
	lhs, rhs := ctx.LHS, ctx.RHS
	if lhs.NCols != rhs.NCols {
		return nil, &ErrDimensionMismatch{Expected: lhs.NCols, Actual: rhs.NCols}
	}
	if lhs.NColsA != rhs.NColsA {
		return nil, &ErrDimensionMismatch{Expected: lhs.NColsA, Actual: rhs.NColsA}
	}
	if len(ctx.Res) < lhs.NRows*rhs.NRows {
		return nil, &ErrDimensionMismatch{Expected: lhs.NRows * rhs.NRows, Actual: len(ctx.Res)}
	}
	if ctx.LHSBlock < 1 || ctx.RHSBlock < 1 {
		return nil, ErrCacheTooSmall
	}

	p := &mulPlan{ctx: ctx}
	switch {
	case ctx.IsBipolarTimesBipolar():
		p.lhsRowPop = rowPopcounts(lhs)
		p.rhsRowPop = rowPopcounts(rhs)
		p.pair = p.pairBipolarBipolar
	case ctx.IsBipolarTimesRegular():
		if lhs.IsBipolar() {
			p.rhsRowSums = weightedRowSums(rhs)
			p.pair = p.pairBipolarLHS
		} else {
			p.lhsRowSums = weightedRowSums(lhs)
			p.pair = p.pairBipolarRHS
		}
	default:
		p.pair = p.pairRegular
	}
	return p, nil
}

// run multiplies LHS rows [lhsFrom, lhsTo) against all RHS rows. Tiles follow
// the context's block sizes so that the working bit-planes stay
// cache-resident; lhsFrom must be block-aligned.
func (p *mulPlan) run(lhsFrom, lhsTo int) {
	rhsRows := p.ctx.RHS.NRows
	res := p.ctx.Res
	for bl := lhsFrom; bl < lhsTo; bl += p.ctx.LHSBlock {
		iMax := min(bl+p.ctx.LHSBlock, lhsTo)
		for br := 0; br < rhsRows; br += p.ctx.RHSBlock {
			jMax := min(br+p.ctx.RHSBlock, rhsRows)
			for i := bl; i < iMax; i++ {
				for j := br; j < jMax; j++ {
					res[i*rhsRows+j] = p.pair(i, j)
				}
			}
		}
	}
}

// pairRegular accumulates across all (lhsBit, rhsBit) bit-plane pairs. Each
// contribution is scaled by its positional weight and negated when exactly
// one of the two planes is a signed top plane, matching two's-complement
// cross terms.
func (p *mulPlan) pairRegular(i, j int) int32 {
	lhs, rhs := p.ctx.LHS, p.ctx.RHS
	var acc int32
	for lb := 0; lb < lhs.NBits; lb++ {
		lrow := lhs.RowWords(lb, i)
		negL := lhs.Signed && lb == lhs.NBits-1
		for rb := 0; rb < rhs.NBits; rb++ {
			rrow := rhs.RowWords(rb, j)
			contr := int32(simd.AndPopcountWords(lrow, rrow)) << uint(lb+rb)
			if negL != (rhs.Signed && rb == rhs.NBits-1) {
				acc -= contr
			} else {
				acc += contr
			}
		}
	}
	return acc
}

// pairBipolarBipolar handles {-1,+1} x {-1,+1}. With presence bits a, b and
// logical depth d: dot = 4*pc(a&b) - 2*pc(a) - 2*pc(b) + d. Padding bits are
// zero on both sides, so only the logical depth enters the constant term.
func (p *mulPlan) pairBipolarBipolar(i, j int) int32 {
	lhs, rhs := p.ctx.LHS, p.ctx.RHS
	matches := int32(simd.AndPopcountWords(lhs.RowWords(0, i), rhs.RowWords(0, j)))
	return 4*matches - 2*p.lhsRowPop[i] - 2*p.rhsRowPop[j] + int32(lhs.NCols)
}

// pairBipolarLHS handles {-1,+1} x regular:
// dot = sum_b w_b*(2*pc(a & plane_b)) - weightedRowSum(rhs row).
func (p *mulPlan) pairBipolarLHS(i, j int) int32 {
	lhs, rhs := p.ctx.LHS, p.ctx.RHS
	lrow := lhs.RowWords(0, i)
	var acc int32
	for b := 0; b < rhs.NBits; b++ {
		contr := int32(2*simd.AndPopcountWords(lrow, rhs.RowWords(b, j))) << uint(b)
		if rhs.Signed && b == rhs.NBits-1 {
			acc -= contr
		} else {
			acc += contr
		}
	}
	return acc - p.rhsRowSums[j]
}

// pairBipolarRHS mirrors pairBipolarLHS with the operand roles swapped.
func (p *mulPlan) pairBipolarRHS(i, j int) int32 {
	lhs, rhs := p.ctx.LHS, p.ctx.RHS
	rrow := rhs.RowWords(0, j)
	var acc int32
	for b := 0; b < lhs.NBits; b++ {
		contr := int32(2*simd.AndPopcountWords(lhs.RowWords(b, i), rrow)) << uint(b)
		if lhs.Signed && b == lhs.NBits-1 {
			acc -= contr
		} else {
			acc += contr
		}
	}
	return acc - p.lhsRowSums[i]
}

// rowPopcounts returns the popcount of each logical row of plane 0.
func rowPopcounts(m *BitSerialMatrix) []int32 {
	pops := make([]int32, m.NRows)
	for r := 0; r < m.NRows; r++ {
		pops[r] = int32(simd.PopcountWords(m.RowWords(0, r)))
	}
	return pops
}

// weightedRowSums returns, per logical row, the sum of the decoded elements:
// sum over planes of +/-2^b * popcount(plane b row). The top plane weighs
// negative for signed matrices.
func weightedRowSums(m *BitSerialMatrix) []int32 {
	sums := make([]int32, m.NRows)
	for r := 0; r < m.NRows; r++ {
		var s int32
		for b := 0; b < m.NBits; b++ {
			contr := int32(simd.PopcountWords(m.RowWords(b, r))) << uint(b)
			if m.Signed && b == m.NBits-1 {
				s -= contr
			} else {
				s += contr
			}
		}
		sums[r] = s
	}
	return sums
}
