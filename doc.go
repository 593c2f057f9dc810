// Package gemmbitserial computes matrix products over low-bitwidth integer
// matrices by decomposing each operand into binary bit-planes and accumulating
// AND+popcount partial products ("bit-serial" multiplication). It targets
// quantized neural-network inference on commodity CPUs without hardware
// low-precision multiply support.
//
// # Quick Start
//
//	ctx, _ := gemmbitserial.AllocGEMMContext(rowsA, depth, rowsB, 3, 1, true, false)
//	gemmbitserial.ImportRegular(ctx.LHS, a, false)
//	gemmbitserial.ImportRegular(ctx.RHS, b, false)
//	gemmbitserial.Multiply(ctx)
//	// ctx.Res[i*rowsB+j] == dot(a[i], b[j])
//
// Both operands are stored row-major with the right-hand side pre-transposed:
// each RHS row is a dot-product partner for every LHS row. Results are exact
// signed 32-bit integer dot products of the encoded values; the packed layout
// and the chosen cache/register blocking only change throughput, never the
// numbers.
//
// The multiply kernel is single-threaded and synchronous per call. For
// parallel execution, MultiplyParallel partitions the LHS block rows across
// goroutines with disjoint output ranges.
package gemmbitserial
