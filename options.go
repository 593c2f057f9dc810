package gemmbitserial

type options struct {
	regBlockLHS   int
	regBlockDepth int
	regBlockRHS   int
	cacheBits     int
	logger        *Logger
}

// Option configures GEMM context allocation.
//
// Today options primarily exist to avoid exploding the API surface with
// constructor variants for every blocking parameter.
type Option func(*options)

// WithRegisterBlocking sets the register-blocking multipliers for the LHS
// rows, the depth dimension and the RHS rows. The chosen cache block sizes are
// always divisible by the corresponding row multiplier, and the packed depth
// is aligned to depth*64 bits.
//
// Defaults are 2, 1, 2.
func WithRegisterBlocking(lhs, depth, rhs int) Option {
	return func(o *options) {
		if lhs > 0 {
			o.regBlockLHS = lhs
		}
		if depth > 0 {
			o.regBlockDepth = depth
		}
		if rhs > 0 {
			o.regBlockRHS = rhs
		}
	}
}

// WithCacheBits sets the on-chip cache budget, in bits, that the three
// working tiles (LHS block, RHS block, result tile) must fit into.
//
// If unset, the budget is detected from the CPU's L2 cache size, falling back
// to 256 KiB when detection is unavailable.
func WithCacheBits(bits int) Option {
	return func(o *options) {
		if bits > 0 {
			o.cacheBits = bits
		}
	}
}

// WithLogger sets the logger used during context allocation.
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

func defaultOptions() options {
	return options{
		regBlockLHS:   2,
		regBlockDepth: 1,
		regBlockRHS:   2,
		cacheBits:     DefaultCacheBits(),
		logger:        NoopLogger(),
	}
}
