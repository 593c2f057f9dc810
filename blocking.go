package gemmbitserial

import (
	"math"

	"github.com/klauspost/cpuid/v2"
)

// resultElemCost is the per-accumulator-element cost in the cache working-set
// model (int32 accumulators).
const resultElemCost = 4

// fallbackCacheBits is used when the CPU's cache hierarchy cannot be
// detected: 256 KiB.
const fallbackCacheBits = 256 * 1024 * 8

// DefaultCacheBits returns the target cache capacity, in bits, used for cache
// blocking when no explicit budget is configured. It prefers the detected L2
// data cache size.
func DefaultCacheBits() int {
	if l2 := cpuid.CPU.Cache.L2; l2 > 0 {
		return l2 * 8
	}
	if l1 := cpuid.CPU.Cache.L1D; l1 > 0 {
		return l1 * 8
	}
	return fallbackCacheBits
}

// computeBlockSize finds near-optimal blocking factors for the two operand
// matrices under these assumptions:
//   - lhs block + rhs block + result tile fit in cacheBits together
//   - no blocking along depth: only entire rows of depthBits bits
//   - lhsMult and rhsMult set the ratio of lhs to rhs rows kept in cache, and
//     the returned blocks are divisible by them
//
// With lhsBlock = lhsMult*x and rhsBlock = rhsMult*x the constraint is a
// quadratic in x; the larger real root is taken. A non-positive discriminant
// or root means the cache budget cannot fit one register-blocking unit of
// depth.
func computeBlockSize(lhsMult, rhsMult, cacheBits, depthBits float64) (int, int, error) {
	a := resultElemCost * lhsMult * rhsMult
	b := depthBits * (lhsMult + rhsMult)
	c := -cacheBits
	disc := b*b - 4*a*c
	if disc <= 0 {
		return 0, 0, ErrCacheTooSmall
	}
	sq := math.Sqrt(disc)
	x0 := math.Floor((-b + sq) / (2 * a))
	x1 := math.Floor((-b - sq) / (2 * a))
	x := math.Max(x0, x1)
	if x <= 0 {
		return 0, 0, ErrCacheTooSmall
	}
	return int(lhsMult * x), int(rhsMult * x), nil
}

// finetuneBlockSize searches downward from maxBlock in steps of blockDivisor
// for the candidate that minimizes alignment padding on rows. Used when the
// cache-optimal block would waste too much computation on padding; trades
// cache occupancy for less wasted work.
func finetuneBlockSize(rows, maxBlock, blockDivisor int) int {
	best := maxBlock
	minPenalty := alignTo(rows, best) - rows
	for cand := maxBlock; cand > blockDivisor; cand -= blockDivisor {
		if cand%blockDivisor != 0 {
			continue
		}
		penalty := alignTo(rows, cand) - rows
		if penalty < minPenalty {
			best = cand
			minPenalty = penalty
		}
	}
	return best
}
