package gemmbitserial

// Integer is the element constraint for the codec. Element width is inferred
// from the type the caller supplies.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// srcIndex maps a logical (row, col) position to the flat source index for
// the given layout.
func srcIndex(row, col, nrows, ncols int, colMajor bool) int {
	if colMajor {
		return col*nrows + row
	}
	return row*ncols + col
}

// ImportRegular encodes an ordinary integer matrix into m's bit-plane form.
// src holds nrows*ncols elements, row-major unless colMajor is set.
//
// Bipolar matrices set the presence bit for strictly positive elements; all
// other values encode -1. Otherwise elements are reduced to their nbits-wide
// two's-complement representation and each plane receives the corresponding
// bit. Values outside the representable range, including negative values for
// unsigned targets, are reduced modulo 2^nbits; they round-trip to a
// different value rather than failing.
func ImportRegular[T Integer](m *BitSerialMatrix, src []T, colMajor bool) error {
	if len(src) < m.NRows*m.NCols {
		return &ErrDimensionMismatch{Expected: m.NRows * m.NCols, Actual: len(src)}
	}
	m.ClearAll()
	mask := uint64(1)<<uint(m.NBits) - 1
	for r := 0; r < m.NRows; r++ {
		for c := 0; c < m.NCols; c++ {
			elem := src[srcIndex(r, c, m.NRows, m.NCols, colMajor)]
			if m.IsBipolar() {
				// bipolar binary encoding: -1 and +1 only (sign)
				if int64(elem) > 0 {
					m.Set(0, r, c)
				}
				continue
			}
			enc := uint64(int64(elem)) & mask
			for b := 0; b < m.NBits; b++ {
				if enc&(1<<uint(b)) != 0 {
					m.Set(b, r, c)
				}
			}
		}
	}
	return nil
}

// ImportRegularAndQuantize threshold-quantizes src while encoding it into m.
// Each element becomes the index of the first threshold it does not exceed;
// elements above every threshold map to the top bin (level NumThresholds).
// Thresholds must be sorted ascending per channel, one channel per matrix
// row. Only unsigned target matrices are valid.
func ImportRegularAndQuantize[T Integer](m *BitSerialMatrix, src []T, thresholds *ThresholdTable, colMajor bool) error {
	if m.Signed {
		return ErrSignedQuantize
	}
	if len(src) < m.NRows*m.NCols {
		return &ErrDimensionMismatch{Expected: m.NRows * m.NCols, Actual: len(src)}
	}
	if thresholds.NumChannels() != m.NRows {
		return &ErrDimensionMismatch{Expected: m.NRows, Actual: thresholds.NumChannels()}
	}
	if thresholds.NumThresholds() >= 1<<uint(m.NBits) {
		return ErrBitDepth
	}
	m.ClearAll()
	nThres := thresholds.NumThresholds()
	for r := 0; r < m.NRows; r++ {
		for c := 0; c < m.NCols; c++ {
			elem := int64(src[srcIndex(r, c, m.NRows, m.NCols, colMajor)])
			level := nThres // top bin if every threshold is crossed
			for t := 0; t < nThres; t++ {
				if elem <= int64(thresholds.Get(t, r)) {
					level = t
					break
				}
			}
			for b := 0; b < m.NBits; b++ {
				if level&(1<<uint(b)) != 0 {
					m.Set(b, r, c)
				}
			}
		}
	}
	return nil
}

// ExportRegular decodes m back into an ordinary integer matrix, row-major.
// It is the exact inverse of ImportRegular for every value representable in
// m's bit depth and signedness.
func ExportRegular[T Integer](m *BitSerialMatrix, dst []T) error {
	if len(dst) < m.NRows*m.NCols {
		return &ErrDimensionMismatch{Expected: m.NRows * m.NCols, Actual: len(dst)}
	}
	for r := 0; r < m.NRows; r++ {
		for c := 0; c < m.NCols; c++ {
			if m.IsBipolar() {
				if m.Get(0, r, c) {
					dst[r*m.NCols+c] = T(1)
				} else {
					var one T = 1
					dst[r*m.NCols+c] = -one
				}
				continue
			}
			var elem int64
			for b := 0; b < m.NBits; b++ {
				if m.Get(b, r, c) {
					if b == m.NBits-1 && m.Signed {
						elem -= int64(1) << uint(b)
					} else {
						elem += int64(1) << uint(b)
					}
				}
			}
			dst[r*m.NCols+c] = T(elem)
		}
	}
	return nil
}
