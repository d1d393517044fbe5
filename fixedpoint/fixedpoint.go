// Package fixedpoint implements the deterministic numeric kernel (spec.md
// §4.1, component C1): Q16.16 and Q48.16 signed fixed-point arithmetic,
// a bit-exact Newton-iteration square root, FNV-1a-64 hashing, and the
// splitmix64 mixer used to seed per-command RNG streams. Every operation
// here must produce identical output on every platform — no native
// float is used anywhere in this package.
package fixedpoint

// Q16 is a Q16.16 signed fixed-point number: 16 integer bits, 16
// fractional bits, stored in the low 32 bits of an int64 for headroom
// during intermediate multiplication.
type Q16 int64

// Q48 is a Q48.16 signed fixed-point number: a wide accumulator with the
// same 16 fractional bits as Q16, used where Q16's multiplication would
// overflow (risk accumulation, claim payouts).
type Q48 int64

const (
	fracBits = 16
	fracOne  = int64(1) << fracBits
)

// One is 1.0 in Q16.16.
const One Q16 = Q16(fracOne)

// Zero is 0 in either fixed-point representation.
const Zero Q16 = 0

// FromInt converts an integer to Q16.16.
func FromInt(n int64) Q16 { return Q16(n * fracOne) }

// ToInt truncates a Q16.16 value toward zero.
func (a Q16) ToInt() int64 { return int64(a) / fracOne }

// Add returns a + b. Q16.16 addition cannot overflow int64 for any two
// valid Q16 values, so no saturation is needed.
func (a Q16) Add(b Q16) Q16 { return a + b }

// Sub returns a - b.
func (a Q16) Sub(b Q16) Q16 { return a - b }

// Mul returns a * b, rescaled by an arithmetic right shift, which rounds
// toward negative infinity.
func (a Q16) Mul(b Q16) Q16 {
	return Q16((int64(a) * int64(b)) >> fracBits)
}

// Div returns a / b. Division by zero returns 0 and sets no flag — per
// spec.md §4.1 callers are required to pre-check the divisor.
func (a Q16) Div(b Q16) Q16 {
	if b == 0 {
		return 0
	}
	return Q16((int64(a) << fracBits) / int64(b))
}

// Neg returns -a.
func (a Q16) Neg() Q16 { return -a }

// Abs returns |a|.
func (a Q16) Abs() Q16 {
	if a < 0 {
		return -a
	}
	return a
}

// Min returns the smaller of a and b.
func (a Q16) Min(b Q16) Q16 {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func (a Q16) Max(b Q16) Q16 {
	if a > b {
		return a
	}
	return b
}

// Clamp restricts a to [lo, hi].
func (a Q16) Clamp(lo, hi Q16) Q16 {
	return a.Max(lo).Min(hi)
}

// ToQ48 widens a Q16.16 value to Q48.16, preserving sign and scale.
func (a Q16) ToQ48() Q48 { return Q48(a) }

// Raw returns the underlying scaled integer (value * 2^16).
func (a Q16) Raw() int64 { return int64(a) }

// Q16FromRaw reconstructs a Q16 value from its scaled integer.
func Q16FromRaw(raw int64) Q16 { return Q16(raw) }

// --- Q48.16 ---

// Q48FromInt converts an integer to Q48.16.
func Q48FromInt(n int64) Q48 { return Q48(n * fracOne) }

// ToInt truncates a Q48.16 value toward zero.
func (a Q48) ToInt() int64 { return int64(a) / fracOne }

// Add returns a + b.
func (a Q48) Add(b Q48) Q48 { return a + b }

// Sub returns a - b.
func (a Q48) Sub(b Q48) Q48 { return a - b }

// Mul returns a * b. Because Q48 already carries the wide accumulator,
// this rescales directly; callers multiplying two Q48 values that are
// both near the top of their range accept the same overflow risk the
// source's wide accumulator accepts.
func (a Q48) Mul(b Q48) Q48 {
	return Q48((int64(a) * int64(b)) >> fracBits)
}

// MulQ16 multiplies a Q48 accumulator by a Q16 ratio, the common case of
// scaling an accumulated exposure/loss by a dimensionless factor.
func (a Q48) MulQ16(b Q16) Q48 {
	return Q48((int64(a) * int64(b)) >> fracBits)
}

// Div returns a / b. Division by zero returns 0, matching Q16.Div.
func (a Q48) Div(b Q48) Q48 {
	if b == 0 {
		return 0
	}
	return Q48((int64(a) << fracBits) / int64(b))
}

// Neg returns -a.
func (a Q48) Neg() Q48 { return -a }

// Max returns the larger of a and b.
func (a Q48) Max(b Q48) Q48 {
	if a > b {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func (a Q48) Min(b Q48) Q48 {
	if a < b {
		return a
	}
	return b
}

// Clamp restricts a to [lo, hi].
func (a Q48) Clamp(lo, hi Q48) Q48 {
	return a.Max(lo).Min(hi)
}

// ToQ16 narrows a Q48.16 accumulator back to Q16.16, truncating any bits
// that do not fit. Callers must ensure the value is in range; this
// mirrors the source's narrowing casts between q48_16 and q16_16.
func (a Q48) ToQ16() Q16 { return Q16(a) }

// Raw returns the underlying scaled integer.
func (a Q48) Raw() int64 { return int64(a) }

// Q48FromRaw reconstructs a Q48 value from its scaled integer.
func Q48FromRaw(raw int64) Q48 { return Q48(raw) }

// sqrtIterations is the fixed Newton iteration count. Fixed, not
// convergence-checked, so the result is bit-identical across platforms
// regardless of how quickly a given input would otherwise converge
// (spec.md §4.1, §9).
const sqrtIterations = 24

// SqrtQ16 computes an approximate square root of a non-negative Q16.16
// value using a fixed number of Newton iterations in 64-bit integer
// arithmetic. Negative inputs return 0.
func SqrtQ16(a Q16) Q16 {
	if a <= 0 {
		return 0
	}
	x := int64(a)
	// Initial guess: x itself (in raw units) is never zero here since a>0.
	guess := x
	if guess < fracOne {
		guess = fracOne
	}
	for i := 0; i < sqrtIterations; i++ {
		// guess = (guess + x*2^16/guess) / 2, all in raw Q16.16 units.
		next := (guess + (x<<fracBits)/guess) / 2
		guess = next
	}
	return Q16(guess)
}
