package gemmbitserial

const (
	// wordBits is the machine word width of the packed layout. Column
	// addressing assumes this is a power of two (see bitpos).
	wordBits  = 64
	wordShift = 6
	wordMask  = wordBits - 1
)

// alignTo rounds n up to the next multiple of align.
func alignTo(n, align int) int {
	if n%align != 0 {
		return n + (align - n%align)
	}
	return n
}

// BitSerialMatrix stores a low-bitwidth integer matrix as nbits dense binary
// bit-planes. Plane b holds bit b of every element; the layout is
// [nbits][nrowsA][ncolsA/64] uint64 words, row-major within a plane.
//
// Rows and columns are padded to caller-chosen alignments so that the multiply
// kernel can stream whole aligned rows through AND+popcount. Padding bits are
// zero after ClearAll and stay zero across imports, so they never contribute
// to partial sums.
type BitSerialMatrix struct {
	// NBits is the bits of precision.
	NBits int
	// NRows and NCols are the logical (actual) extents.
	NRows, NCols int
	// NRowsA and NColsA are the allocated (padded) extents.
	NRowsA, NColsA int
	// Signed marks the highest-order bit-plane as carrying negative weight
	// (two's-complement semantics).
	Signed bool

	data []uint64
}

// Alloc allocates a zeroed BitSerialMatrix with the given bit depth, logical
// shape and alignment factors. rowAlign must be positive; colAlign must be a
// positive multiple of 64 so that rows occupy whole words.
func Alloc(nbits, nrows, ncols int, signed bool, rowAlign, colAlign int) (*BitSerialMatrix, error) {
	if nbits < 1 || nbits > 63 {
		return nil, ErrBitDepth
	}
	if rowAlign < 1 || colAlign < 1 || colAlign%wordBits != 0 {
		return nil, ErrAlignment
	}
	m := &BitSerialMatrix{
		NBits:  nbits,
		NRows:  nrows,
		NCols:  ncols,
		NRowsA: alignTo(nrows, rowAlign),
		NColsA: alignTo(ncols, colAlign),
		Signed: signed,
	}
	m.data = make([]uint64, nbits*m.WordsPerBitplane())
	return m, nil
}

// IsBipolar reports whether the matrix holds bipolar binary {-1, +1} values:
// a single signed bit-plane where a set bit encodes +1 and a clear bit -1.
func (m *BitSerialMatrix) IsBipolar() bool {
	return m.NBits == 1 && m.Signed
}

// WordsPerRow returns the number of storage words per row.
func (m *BitSerialMatrix) WordsPerRow() int {
	return m.NColsA / wordBits
}

// WordsPerBitplane returns the number of storage words per bit-plane.
func (m *BitSerialMatrix) WordsPerBitplane() int {
	return m.NRowsA * m.WordsPerRow()
}

// bitpos returns the bit position of col inside its word. Packing assumes a
// power-of-two word width, so this is the low 6 bits of col, not a general
// modulo.
func bitpos(col int) uint {
	return uint(col & wordMask)
}

// wordIndex returns the index of the word containing (bit, row, col).
func (m *BitSerialMatrix) wordIndex(bit, row, col int) int {
	return bit*m.WordsPerBitplane() + row*m.WordsPerRow() + col>>wordShift
}

// Get returns whether the given bit is set.
func (m *BitSerialMatrix) Get(bit, row, col int) bool {
	return (m.data[m.wordIndex(bit, row, col)]>>bitpos(col))&1 == 1
}

// Set sets the given bit to one.
func (m *BitSerialMatrix) Set(bit, row, col int) {
	m.data[m.wordIndex(bit, row, col)] |= 1 << bitpos(col)
}

// Unset sets the given bit to zero.
func (m *BitSerialMatrix) Unset(bit, row, col int) {
	m.data[m.wordIndex(bit, row, col)] &^= 1 << bitpos(col)
}

// ClearAll sets all bits, padding included, to zero. Required before any
// import: padding participates in popcount partial sums and must read as zero.
func (m *BitSerialMatrix) ClearAll() {
	clear(m.data)
}

// RowWords returns the packed words of one row of one bit-plane. This is the
// kernel's bulk access path; the returned slice aliases the matrix storage.
func (m *BitSerialMatrix) RowWords(bit, row int) []uint64 {
	w := m.WordsPerRow()
	off := bit*m.WordsPerBitplane() + row*w
	return m.data[off : off+w : off+w]
}

// Bitplane returns the packed words of one whole bit-plane.
func (m *BitSerialMatrix) Bitplane(bit int) []uint64 {
	w := m.WordsPerBitplane()
	off := bit * w
	return m.data[off : off+w : off+w]
}
