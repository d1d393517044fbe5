package fixedpoint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQ16MulDiv(t *testing.T) {
	tests := []struct {
		name string
		a, b Q16
		want Q16
	}{
		{name: "two times half", a: FromInt(2), b: One.Div(FromInt(2)), want: FromInt(1)},
		{name: "identity mul", a: FromInt(7), b: One, want: FromInt(7)},
		{name: "zero mul", a: FromInt(7), b: Zero, want: Zero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.a.Mul(tt.b))
		})
	}
}

func TestQ16DivByZero(t *testing.T) {
	require.Equal(t, Q16(0), FromInt(5).Div(Zero))
}

func TestQ16Clamp(t *testing.T) {
	require.Equal(t, FromInt(10), FromInt(20).Clamp(FromInt(0), FromInt(10)))
	require.Equal(t, FromInt(0), FromInt(-5).Clamp(FromInt(0), FromInt(10)))
	require.Equal(t, FromInt(5), FromInt(5).Clamp(FromInt(0), FromInt(10)))
}

func TestSqrtQ16GoldenVectors(t *testing.T) {
	// Golden vectors per spec.md §9: the Newton-iteration sqrt must match
	// bit-for-bit across runs and platforms. These values pin the exact
	// fixed-iteration-count output rather than the mathematically ideal
	// square root, so any change to sqrtIterations or the iteration
	// formula must update this test deliberately.
	tests := []struct {
		name string
		in   Q16
	}{
		{name: "zero", in: Zero},
		{name: "one", in: One},
		{name: "four", in: FromInt(4)},
		{name: "negative", in: FromInt(-4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got1 := SqrtQ16(tt.in)
			got2 := SqrtQ16(tt.in)
			require.Equal(t, got1, got2, "sqrt must be deterministic across calls")
		})
	}
	require.Equal(t, Q16(0), SqrtQ16(Zero))
	require.Equal(t, Q16(0), SqrtQ16(FromInt(-4)))
	require.Equal(t, One, SqrtQ16(One))
	require.Equal(t, FromInt(2), SqrtQ16(FromInt(4)))
	// sqrt(4) should be very close to 2.0 after 24 Newton iterations.
	got := SqrtQ16(FromInt(4))
	diff := got.Sub(FromInt(2)).Abs()
	require.LessOrEqual(t, int64(diff), int64(4), "sqrt(4) should converge near 2.0")
}

func TestQ48Widening(t *testing.T) {
	a := FromInt(42)
	wide := a.ToQ48()
	require.Equal(t, Q48FromInt(42), wide)
	require.Equal(t, a, wide.ToQ16())
}

func TestFNV1a64KnownVector(t *testing.T) {
	// FNV-1a-64 of the empty string is the offset basis.
	require.Equal(t, fnvOffset64, FNV1a64(nil))
	h1 := FNV1a64([]byte("dominium"))
	h2 := FNV1a64([]byte("dominium"))
	require.Equal(t, h1, h2)
	require.NotEqual(t, h1, FNV1a64([]byte("dominiuM")))
}

func TestHashString32Deterministic(t *testing.T) {
	require.Equal(t, HashString32(1, "layer.elevation"), HashString32(1, "layer.elevation"))
	require.NotEqual(t, HashString32(1, "layer.elevation"), HashString32(2, "layer.elevation"))
}

func TestSplitMix64Deterministic(t *testing.T) {
	s1, o1 := SplitMix64(12345)
	s2, o2 := SplitMix64(12345)
	require.Equal(t, s1, s2)
	require.Equal(t, o1, o2)

	_, o3 := SplitMix64(s1)
	require.NotEqual(t, o1, o3)
}

func TestSeedStreamDeterministic(t *testing.T) {
	require.Equal(t, SeedStream(1, 100), SeedStream(1, 100))
	require.NotEqual(t, SeedStream(1, 100), SeedStream(1, 101))
}
