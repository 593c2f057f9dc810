package gemmbitserial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewThresholdTableValidation(t *testing.T) {
	var dimErr *ErrDimensionMismatch
	_, err := NewThresholdTable(2, 3, []int32{1, 2, 3})
	assert.ErrorAs(t, err, &dimErr)

	// channel 1 descends: 5 then 4
	_, err = NewThresholdTable(2, 2, []int32{1, 5, 2, 4})
	assert.ErrorIs(t, err, ErrThresholdOrder)

	tt, err := NewThresholdTable(2, 2, []int32{1, 5, 2, 5})
	require.NoError(t, err)
	assert.Equal(t, 2, tt.NumThresholds())
	assert.Equal(t, 2, tt.NumChannels())
	assert.Equal(t, int32(5), tt.Get(0, 1))
	assert.Equal(t, int32(2), tt.Get(1, 0))
}

// The activation level equals the number of the channel's thresholds the
// accumulator meets or exceeds.
func TestActivation(t *testing.T) {
	tt, err := NewThresholdTable(4, 1, []int32{-10, 0, 10, 20})
	require.NoError(t, err)

	tests := []struct {
		acc  int32
		want int32
	}{
		{-11, 0},
		{-10, 1},
		{-1, 1},
		{0, 2},
		{9, 2},
		{10, 3},
		{19, 3},
		{20, 4},
		{1000, 4},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tt.Activation(0, tc.acc), "acc=%d", tc.acc)
	}
}

func TestApply(t *testing.T) {
	// channel 0: 0, 10; channel 1: 5, 5; channel 2: -3, 8
	tt, err := NewThresholdTable(2, 3, []int32{0, 5, -3, 10, 5, 8})
	require.NoError(t, err)

	levels, err := tt.Apply([]int32{10, 5, 0})
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 2, 1}, levels)

	_, err = tt.Apply([]int32{1, 2})
	assert.ErrorIs(t, err, ErrThresholdBroadcast)
}
