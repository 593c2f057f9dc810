package gemmbitserial

import (
	"errors"
	"fmt"
)

var (
	// ErrCacheTooSmall is returned when the cache budget cannot fit even one
	// register-blocking unit of depth.
	ErrCacheTooSmall = errors.New("cache budget too small for blocking")

	// ErrSignedQuantize is returned when threshold quantization is requested
	// on a signed target matrix.
	ErrSignedQuantize = errors.New("threshold quantization requires an unsigned target")

	// ErrThresholdBroadcast is returned when a threshold table's channel count
	// does not match the row count. Broadcasting one threshold channel across
	// multiple rows is not supported.
	ErrThresholdBroadcast = errors.New("unsupported threshold broadcast configuration")

	// ErrThresholdOrder is returned when per-channel thresholds are not sorted
	// ascending.
	ErrThresholdOrder = errors.New("thresholds must be sorted ascending per channel")

	// ErrBitDepth is returned for bit depths outside [1, 63].
	ErrBitDepth = errors.New("unsupported bit depth")

	// ErrAlignment is returned for invalid alignment factors.
	ErrAlignment = errors.New("invalid alignment factor")
)

// ErrDimensionMismatch indicates a shape mismatch between a matrix and the
// buffer or table supplied for it.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }
