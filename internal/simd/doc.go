// Package simd provides the AND+popcount word kernels used by the bit-serial
// multiply, with CPU capability detection and runtime kernel selection.
//
// The active kernel tier can be forced with the GEMMBITSERIAL_SIMD environment
// variable (generic, neon, avx2, avx512); unavailable tiers fall back to
// auto-detection. Every tier produces identical results - only throughput
// differs.
package simd
