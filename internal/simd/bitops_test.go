package simd

import (
	"fmt"
	"math/bits"
	"math/rand"
	"testing"
)

func TestAndPopcountWords(t *testing.T) {
	tests := []struct {
		name string
		a    []uint64
		b    []uint64
		want int
	}{
		{
			name: "Empty",
			a:    []uint64{},
			b:    []uint64{},
			want: 0,
		},
		{
			name: "Single word",
			a:    []uint64{0xFF00FF00FF00FF00},
			b:    []uint64{0x0F0F0F0F0F0F0F0F},
			want: 16,
		},
		{
			name: "Disjoint masks",
			a:    []uint64{0xAAAAAAAAAAAAAAAA},
			b:    []uint64{0x5555555555555555},
			want: 0,
		},
		{
			name: "All ones",
			a:    []uint64{^uint64(0), ^uint64(0)},
			b:    []uint64{^uint64(0), ^uint64(0)},
			want: 128,
		},
		{
			name: "4 words (unroll boundary)",
			a:    []uint64{0xFF, 0xFF, 0xFF, 0xFF},
			b:    []uint64{0x0F, 0xF0, 0x55, 0xAA},
			want: 4 + 4 + 4 + 4,
		},
		{
			name: "5 words (unroll + tail)",
			a:    []uint64{0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
			b:    []uint64{0x0F, 0xF0, 0x55, 0xAA, 0x33},
			want: 4 + 4 + 4 + 4 + 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AndPopcountWords(tt.a, tt.b); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPopcountWords(t *testing.T) {
	tests := []struct {
		name  string
		words []uint64
		want  int
	}{
		{
			name:  "Empty",
			words: []uint64{},
			want:  0,
		},
		{
			name:  "All zeros",
			words: []uint64{0, 0, 0, 0},
			want:  0,
		},
		{
			name:  "All ones single word",
			words: []uint64{^uint64(0)},
			want:  64,
		},
		{
			name:  "Alternating bits",
			words: []uint64{0x5555555555555555},
			want:  32,
		},
		{
			name:  "Mixed",
			words: []uint64{0xFF, 0x00, 0x0F, 0xF0},
			want:  8 + 0 + 4 + 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PopcountWords(tt.words); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

// All kernel variants must be bit-exact with a scalar reference across
// lengths straddling the unroll boundaries.
func TestKernelEquivalenceBoundaries(t *testing.T) {
	sizes := []int{0, 1, 2, 3, 4, 5, 7, 8, 9, 15, 16, 17, 31, 32, 33, 63, 64, 65, 128, 256}

	rng := rand.New(rand.NewSource(42))

	variants := []struct {
		name        string
		andPopcount func(a, b []uint64) int
		popcount    func(words []uint64) int
	}{
		{"generic", andPopcountWordsGeneric, popcountWordsGeneric},
		{"unrolled8", andPopcountWordsUnrolled8, popcountWordsUnrolled8},
	}

	for _, size := range sizes {
		a := make([]uint64, size)
		b := make([]uint64, size)
		for i := range a {
			a[i] = rng.Uint64()
			b[i] = rng.Uint64()
		}

		wantAnd := 0
		wantPop := 0
		for i := range a {
			wantAnd += bits.OnesCount64(a[i] & b[i])
			wantPop += bits.OnesCount64(a[i])
		}

		for _, v := range variants {
			if got := v.andPopcount(a, b); got != wantAnd {
				t.Errorf("%s: size=%d: AndPopcount got %d, want %d", v.name, size, got, wantAnd)
			}
			if got := v.popcount(a); got != wantPop {
				t.Errorf("%s: size=%d: Popcount got %d, want %d", v.name, size, got, wantPop)
			}
		}
	}
}

func TestParseISA(t *testing.T) {
	tests := []struct {
		in     string
		want   ISA
		wantOK bool
	}{
		{"generic", Generic, true},
		{"NEON", NEON, true},
		{" avx2 ", AVX2, true},
		{"avx512", AVX512, true},
		{"sse9", Generic, false},
		{"", Generic, false},
	}
	for _, tt := range tests {
		got, ok := ParseISA(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseISA(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestISAString(t *testing.T) {
	for _, isa := range []ISA{Generic, NEON, AVX2, AVX512} {
		if isa.String() == "unknown" {
			t.Errorf("ISA %d has no string representation", isa)
		}
	}
	if ISA(250).String() != "unknown" {
		t.Error("out-of-range ISA should stringify as unknown")
	}
}

// Benchmarks

func BenchmarkAndPopcountWords(b *testing.B) {
	sizes := []int{16, 64, 256, 1024}
	for _, size := range sizes {
		x := make([]uint64, size)
		y := make([]uint64, size)
		for i := range x {
			x[i] = uint64(i) * 0x9E3779B97F4A7C15
			y[i] = uint64(i) * 0xC2B2AE3D27D4EB4F
		}
		b.Run(fmt.Sprintf("words_%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				AndPopcountWords(x, y)
			}
		})
	}
}

func BenchmarkPopcountWords(b *testing.B) {
	sizes := []int{16, 64, 256, 1024}
	for _, size := range sizes {
		words := make([]uint64, size)
		for i := range words {
			words[i] = uint64(i) * 0x9E3779B97F4A7C15
		}
		b.Run(fmt.Sprintf("words_%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				PopcountWords(words)
			}
		})
	}
}
