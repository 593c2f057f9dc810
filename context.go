package gemmbitserial

// GEMMContext owns the state of one multiplication job: both packed operand
// matrices, their blocking factors and the output buffer.
//
// The LHS has shape [lhsRows x depth] and the RHS [rhsRows x depth]; the RHS
// is stored row-major as if transposed, so every RHS row is a dot-product
// partner for every LHS row. Res holds lhsRows*rhsRows signed 32-bit
// accumulators, unaligned: only logical elements materialize.
//
// A context must not be shared across concurrent multiplies, and operand
// matrices must not be mutated while a multiply is in progress.
type GEMMContext struct {
	LHS, RHS *BitSerialMatrix
	// LHSBlock and RHSBlock are the row counts processed per cache-resident
	// tile. Each is divisible by its register-blocking multiplier.
	LHSBlock, RHSBlock int
	Res                []int32
}

// AllocGEMMContext allocates the packed operand matrices and result buffer
// for one multiplication job, choosing blocking factors for the configured
// cache budget.
//
// Cache-optimal block sizes come from the quadratic solver. If they exceed
// the actual row counts the context falls back to pure register blocking;
// otherwise a block is fine-tuned downward whenever its alignment padding
// would waste more than 10% of the actual rows.
func AllocGEMMContext(lhsRows, depth, rhsRows, lhsBits, rhsBits int, lhsSigned, rhsSigned bool, optFns ...Option) (*GEMMContext, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	depthAligned := alignTo(depth, o.regBlockDepth*wordBits)
	lhsBlock, rhsBlock, err := computeBlockSize(
		float64(o.regBlockLHS), float64(o.regBlockRHS),
		float64(o.cacheBits), float64(depthAligned),
	)
	if err != nil {
		return nil, err
	}
	if lhsBlock > lhsRows || rhsBlock > rhsRows {
		// use register blocking only
		lhsBlock = alignTo(lhsRows, o.regBlockLHS)
		rhsBlock = alignTo(rhsRows, o.regBlockRHS)
	} else {
		// see if there is too much wasted compute for current block sizes
		if float64(alignTo(lhsRows, lhsBlock)-lhsRows) > 0.1*float64(lhsRows) {
			lhsBlock = finetuneBlockSize(lhsRows, lhsBlock, o.regBlockLHS)
		}
		if float64(alignTo(rhsRows, rhsBlock)-rhsRows) > 0.1*float64(rhsRows) {
			rhsBlock = finetuneBlockSize(rhsRows, rhsBlock, o.regBlockRHS)
		}
	}

	lhs, err := Alloc(lhsBits, lhsRows, depth, lhsSigned, lhsBlock, o.regBlockDepth*wordBits)
	if err != nil {
		return nil, err
	}
	rhs, err := Alloc(rhsBits, rhsRows, depth, rhsSigned, rhsBlock, o.regBlockDepth*wordBits)
	if err != nil {
		return nil, err
	}

	o.logger.LogBlocking(lhsRows, depth, rhsRows, lhsBlock, rhsBlock, o.cacheBits)

	return &GEMMContext{
		LHS:      lhs,
		RHS:      rhs,
		LHSBlock: lhsBlock,
		RHSBlock: rhsBlock,
		Res:      make([]int32, lhsRows*rhsRows),
	}, nil
}

// Release drops the context's references to its operand matrices and result
// buffer so they can be collected. The context must not be used afterwards.
func (ctx *GEMMContext) Release() {
	ctx.LHS = nil
	ctx.RHS = nil
	ctx.Res = nil
}

// IsBipolarTimesRegular reports whether exactly one operand is bipolar.
func (ctx *GEMMContext) IsBipolarTimesRegular() bool {
	return ctx.LHS.IsBipolar() != ctx.RHS.IsBipolar()
}

// IsBipolarTimesBipolar reports whether both operands are bipolar.
func (ctx *GEMMContext) IsBipolarTimesBipolar() bool {
	return ctx.LHS.IsBipolar() && ctx.RHS.IsBipolar()
}
