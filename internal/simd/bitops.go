package simd

import "math/bits"

// ==============================================================================
// Bit-plane word operations
// ==============================================================================
//
// These are the only primitives the bit-serial multiply kernel needs: fused
// AND+popcount between two bit-plane rows, and plain popcount over one row.
// They operate on []uint64 bit arrays. Generic implementations are the
// default; selectKernels swaps in wider-unrolled variants on cores with
// hardware popcount (POPCNT on x86-64, CNT on NEON), where the extra
// instruction-level parallelism pays off.

// Kernel function pointers.
var (
	kernelAndPopcountWords = andPopcountWordsGeneric
	kernelPopcountWords    = popcountWordsGeneric
)

// selectKernels installs the kernel set for the active ISA. Called from
// initCapabilities after CPU detection; all variants are bit-exact.
func selectKernels() {
	switch activeISA {
	case NEON, AVX2, AVX512:
		kernelAndPopcountWords = andPopcountWordsUnrolled8
		kernelPopcountWords = popcountWordsUnrolled8
	default:
		kernelAndPopcountWords = andPopcountWordsGeneric
		kernelPopcountWords = popcountWordsGeneric
	}
}

// AndPopcountWords returns popcount(a[i] & b[i]) summed over all words.
// a and b must have equal length.
func AndPopcountWords(a, b []uint64) int {
	return kernelAndPopcountWords(a, b)
}

// PopcountWords counts all set bits across words.
func PopcountWords(words []uint64) int {
	return kernelPopcountWords(words)
}

// ==============================================================================
// Generic implementations
// ==============================================================================

func andPopcountWordsGeneric(a, b []uint64) int {
	count := 0
	i := 0
	for ; i+4 <= len(a); i += 4 {
		count += bits.OnesCount64(a[i] & b[i])
		count += bits.OnesCount64(a[i+1] & b[i+1])
		count += bits.OnesCount64(a[i+2] & b[i+2])
		count += bits.OnesCount64(a[i+3] & b[i+3])
	}
	for ; i < len(a); i++ {
		count += bits.OnesCount64(a[i] & b[i])
	}
	return count
}

func popcountWordsGeneric(words []uint64) int {
	count := 0
	i := 0
	for ; i+4 <= len(words); i += 4 {
		count += bits.OnesCount64(words[i])
		count += bits.OnesCount64(words[i+1])
		count += bits.OnesCount64(words[i+2])
		count += bits.OnesCount64(words[i+3])
	}
	for ; i < len(words); i++ {
		count += bits.OnesCount64(words[i])
	}
	return count
}

// ==============================================================================
// Hardware-popcount variants
// ==============================================================================
//
// Eight-way unrolling with independent partial sums keeps several POPCNT/CNT
// chains in flight, breaking the output dependency on a single accumulator.

func andPopcountWordsUnrolled8(a, b []uint64) int {
	var c0, c1, c2, c3 int
	i := 0
	for ; i+8 <= len(a); i += 8 {
		c0 += bits.OnesCount64(a[i]&b[i]) + bits.OnesCount64(a[i+4]&b[i+4])
		c1 += bits.OnesCount64(a[i+1]&b[i+1]) + bits.OnesCount64(a[i+5]&b[i+5])
		c2 += bits.OnesCount64(a[i+2]&b[i+2]) + bits.OnesCount64(a[i+6]&b[i+6])
		c3 += bits.OnesCount64(a[i+3]&b[i+3]) + bits.OnesCount64(a[i+7]&b[i+7])
	}
	count := c0 + c1 + c2 + c3
	for ; i < len(a); i++ {
		count += bits.OnesCount64(a[i] & b[i])
	}
	return count
}

func popcountWordsUnrolled8(words []uint64) int {
	var c0, c1, c2, c3 int
	i := 0
	for ; i+8 <= len(words); i += 8 {
		c0 += bits.OnesCount64(words[i]) + bits.OnesCount64(words[i+4])
		c1 += bits.OnesCount64(words[i+1]) + bits.OnesCount64(words[i+5])
		c2 += bits.OnesCount64(words[i+2]) + bits.OnesCount64(words[i+6])
		c3 += bits.OnesCount64(words[i+3]) + bits.OnesCount64(words[i+7])
	}
	count := c0 + c1 + c2 + c3
	for ; i < len(words); i++ {
		count += bits.OnesCount64(words[i])
	}
	return count
}
