// Package bitvec is a bitmap-set-backed realization of the bit-serial
// multiply capability, intended for one-off vector and small-matrix
// operations and as a reference oracle for the packed kernel. Each bit
// position of a value vector becomes one compressed bitmap; dot products are
// AND-cardinalities scaled by positional weight.
//
// The element type is uint8, so bit depths are limited to 8. Signedness is an
// interpretation applied at multiply time: when an operand is flagged signed,
// its top bit-plane carries negative weight.
package bitvec

import (
	"math/rand"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/liuguoyou/gemmbitserial"
)

// Vector holds one bitmap per bit of precision.
type Vector []*roaring.Bitmap

// Matrix is a row-major collection of bit-serial vectors.
type Matrix []Vector

// ToVector converts a buffer of uint8 values into a bit-serial vector with
// the given bits of precision.
func ToVector(vals []uint8, bits int) Vector {
	v := make(Vector, bits)
	for b := 0; b < bits; b++ {
		bm := roaring.New()
		mask := uint8(1) << uint(b)
		for i, val := range vals {
			if val&mask != 0 {
				bm.Add(uint32(i))
			}
		}
		v[b] = bm
	}
	return v
}

// Export converts a bit-serial vector back into a buffer of n uint8 values.
func (v Vector) Export(n int) []uint8 {
	out := make([]uint8, n)
	for i := 0; i < n; i++ {
		var cur uint8
		for b := range v {
			if v[b].Contains(uint32(i)) {
				cur |= 1 << uint(b)
			}
		}
		out[i] = cur
	}
	return out
}

// ToMatrix converts a row-major rows x cols buffer of uint8 values into a
// bit-serial matrix.
func ToMatrix(vals []uint8, rows, cols, bits int) Matrix {
	m := make(Matrix, rows)
	for r := 0; r < rows; r++ {
		m[r] = ToVector(vals[r*cols:(r+1)*cols], bits)
	}
	return m
}

// Export converts a bit-serial matrix back into a row-major uint8 buffer.
func (m Matrix) Export(cols int) []uint8 {
	out := make([]uint8, len(m)*cols)
	for r, row := range m {
		copy(out[r*cols:], row.Export(cols))
	}
	return out
}

// MatrixVector multiplies a bit-serial matrix with a bit-serial vector,
// returning one signed 32-bit accumulator per matrix row. Contributions are
// AND-cardinalities shifted by the combined bit position and negated when
// exactly one signed top bit-plane participates, so the result equals the
// integer dot product of the decoded operands.
func MatrixVector(a Matrix, x Vector, aSigned, xSigned bool) []int32 {
	res := make([]int32, len(a))
	for r, row := range a {
		res[r] = dot(row, x, aSigned, xSigned)
	}
	return res
}

// MatrixVectorThresholded multiplies like MatrixVector and folds each row's
// accumulator through the threshold table, returning activation levels. The
// thresholding is fused into the multiply loop so no full-precision
// intermediate vector materializes. The table must have one channel per
// matrix row; broadcast tables yield ErrThresholdBroadcast.
func MatrixVectorThresholded(a Matrix, x Vector, aSigned, xSigned bool, thresholds *gemmbitserial.ThresholdTable) ([]int32, error) {
	if thresholds.NumChannels() != len(a) {
		return nil, gemmbitserial.ErrThresholdBroadcast
	}
	res := make([]int32, len(a))
	for r, row := range a {
		res[r] = thresholds.Activation(r, dot(row, x, aSigned, xSigned))
	}
	return res, nil
}

func dot(row Vector, x Vector, aSigned, xSigned bool) int32 {
	var acc int32
	for abit := range row {
		negA := aSigned && abit == len(row)-1
		for xbit := range x {
			contr := int32(row[abit].AndCardinality(x[xbit])) << uint(abit+xbit)
			if negA != (xSigned && xbit == len(x)-1) {
				acc -= contr
			} else {
				acc += contr
			}
		}
	}
	return acc
}

// Random fills a fresh buffer with dim random values of the given bit width
// (bits <= 8), covering the full unsigned range [0, 2^bits).
func Random(rng *rand.Rand, bits, dim int) []uint8 {
	out := make([]uint8, dim)
	for i := range out {
		out[i] = uint8(rng.Intn(1 << uint(bits)))
	}
	return out
}
