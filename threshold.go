package gemmbitserial

// ThresholdTable maps (threshold index, channel) to an integer threshold,
// sorted ascending per channel. It is read-only input to threshold
// quantization and thresholded accumulation: an accumulator's activation
// level is the number of its channel's thresholds it meets or exceeds.
type ThresholdTable struct {
	numThresholds int
	numChannels   int
	// data holds [numThresholds][numChannels] values.
	data []int32
}

// NewThresholdTable builds a table from values laid out as
// [numThresholds][numChannels], row-major. Per-channel threshold sequences
// must be ascending.
func NewThresholdTable(numThresholds, numChannels int, values []int32) (*ThresholdTable, error) {
	if len(values) != numThresholds*numChannels {
		return nil, &ErrDimensionMismatch{Expected: numThresholds * numChannels, Actual: len(values)}
	}
	for ch := 0; ch < numChannels; ch++ {
		for t := 1; t < numThresholds; t++ {
			if values[t*numChannels+ch] < values[(t-1)*numChannels+ch] {
				return nil, ErrThresholdOrder
			}
		}
	}
	tt := &ThresholdTable{
		numThresholds: numThresholds,
		numChannels:   numChannels,
		data:          make([]int32, len(values)),
	}
	copy(tt.data, values)
	return tt, nil
}

// NumThresholds returns the number of thresholds per channel.
func (tt *ThresholdTable) NumThresholds() int { return tt.numThresholds }

// NumChannels returns the number of channels.
func (tt *ThresholdTable) NumChannels() int { return tt.numChannels }

// Get returns threshold t of the given channel.
func (tt *ThresholdTable) Get(t, channel int) int32 {
	return tt.data[t*tt.numChannels+channel]
}

// Activation returns the number of the channel's thresholds that acc meets or
// exceeds. Thresholds are ascending, so this is the quantized activation
// level in [0, NumThresholds].
func (tt *ThresholdTable) Activation(channel int, acc int32) int32 {
	var level int32
	for t := 0; t < tt.numThresholds; t++ {
		if acc >= tt.data[t*tt.numChannels+channel] {
			level++
		}
	}
	return level
}

// Apply thresholds a vector of accumulators, one channel per element,
// returning per-element activation levels. The channel count must equal
// len(acc); broadcast thresholds are not supported.
func (tt *ThresholdTable) Apply(acc []int32) ([]int32, error) {
	if tt.numChannels != len(acc) {
		return nil, ErrThresholdBroadcast
	}
	out := make([]int32, len(acc))
	for i, v := range acc {
		out[i] = tt.Activation(i, v)
	}
	return out, nil
}
