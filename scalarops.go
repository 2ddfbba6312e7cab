// Completion: 100% - Reference lane semantics complete
package vise

// Reference semantics for the lane operations whose encodings this
// package emits. Front ends use these for constant folding; the tests
// use them to pin down what the emitted sequences must compute.

// LaneSatAddSigned adds two signed lane values and clamps to the lane
// range.
func LaneSatAddSigned(a, b int64, bits int) int64 {
	return clampSigned(a+b, bits)
}

// LaneSatSubSigned subtracts with signed clamping.
func LaneSatSubSigned(a, b int64, bits int) int64 {
	return clampSigned(a-b, bits)
}

// LaneSatAddUnsigned adds two unsigned lane values and clamps to the
// lane maximum.
func LaneSatAddUnsigned(a, b uint64, bits int) uint64 {
	hi := uint64(1)<<bits - 1
	s := a + b
	if s > hi {
		return hi
	}
	return s
}

// LaneSatSubUnsigned subtracts with clamping at zero.
func LaneSatSubUnsigned(a, b uint64, bits int) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

func clampSigned(v int64, bits int) int64 {
	hi := int64(1)<<(bits-1) - 1
	lo := -(int64(1) << (bits - 1))
	if v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}

// RecipRefineStep is one Newton-Raphson step toward 1/x from the
// current approximation r.
func RecipRefineStep(r, x float64) float64 {
	return r * (2 - x*r)
}

// RsqrtRefineStep is one Newton-Raphson step toward 1/sqrt(x).
func RsqrtRefineStep(r, x float64) float64 {
	return r * (1.5 - 0.5*x*r*r)
}

// ReduceAllSet reports whether every one of the low lane bits is set.
func ReduceAllSet(mask uint64, lanes int) bool {
	var full uint64
	if lanes >= 64 {
		full = ^uint64(0)
	} else {
		full = uint64(1)<<lanes - 1
	}
	return mask&full == full
}

// ReduceNoneSet reports whether none of the low lane bits is set.
func ReduceNoneSet(mask uint64, lanes int) bool {
	var full uint64
	if lanes >= 64 {
		full = ^uint64(0)
	} else {
		full = uint64(1)<<lanes - 1
	}
	return mask&full == 0
}
