package poolmath_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/tmsdkeys/pairpool/x/amm/poolmath"
)

func TestSafeAdd_Valid(t *testing.T) {
	result, err := poolmath.SafeAdd(math.NewInt(100), math.NewInt(200))
	require.NoError(t, err)
	require.Equal(t, math.NewInt(300), result)
}

func TestSafeAdd_Overflow(t *testing.T) {
	huge, ok := math.NewIntFromString("57896044618658097711785492504343953926634992332820282019728792003956564819967")
	require.True(t, ok)

	_, err := poolmath.SafeAdd(huge, huge)
	require.Error(t, err)
	require.Contains(t, err.Error(), "overflow")
}

func TestSafeSub_Valid(t *testing.T) {
	result, err := poolmath.SafeSub(math.NewInt(300), math.NewInt(100))
	require.NoError(t, err)
	require.Equal(t, math.NewInt(200), result)
}

func TestSafeSub_Underflow(t *testing.T) {
	_, err := poolmath.SafeSub(math.NewInt(100), math.NewInt(300))
	require.Error(t, err)
	require.Contains(t, err.Error(), "underflow")
}

func TestSafeSub_Exact(t *testing.T) {
	result, err := poolmath.SafeSub(math.NewInt(100), math.NewInt(100))
	require.NoError(t, err)
	require.True(t, result.IsZero())
}

func TestSafeMul_Valid(t *testing.T) {
	result, err := poolmath.SafeMul(math.NewInt(1000), math.NewInt(997))
	require.NoError(t, err)
	require.Equal(t, math.NewInt(997000), result)
}

func TestSafeMul_Zero(t *testing.T) {
	result, err := poolmath.SafeMul(math.ZeroInt(), math.NewInt(997))
	require.NoError(t, err)
	require.True(t, result.IsZero())
}

func TestSafeQuo_Floors(t *testing.T) {
	result, err := poolmath.SafeQuo(math.NewInt(7), math.NewInt(2))
	require.NoError(t, err)
	require.Equal(t, math.NewInt(3), result)
}

func TestSafeQuo_DivisionByZero(t *testing.T) {
	_, err := poolmath.SafeQuo(math.NewInt(7), math.ZeroInt())
	require.Error(t, err)
	require.Contains(t, err.Error(), "division by zero")
}

func TestMulDiv_Floors(t *testing.T) {
	// 10 * 10 / 3 = 33.33 -> 33
	result, err := poolmath.MulDiv(math.NewInt(10), math.NewInt(10), math.NewInt(3))
	require.NoError(t, err)
	require.Equal(t, math.NewInt(33), result)
}

func TestMulDiv_LargeIntermediate(t *testing.T) {
	// The product overflows int64 but the quotient does not.
	a := math.NewInt(1).MulRaw(1_000_000_000).MulRaw(1_000_000_000)
	result, err := poolmath.MulDiv(a, math.NewInt(1_000_000), a)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1_000_000), result)
}

func TestMulDiv_DivisionByZero(t *testing.T) {
	_, err := poolmath.MulDiv(math.NewInt(10), math.NewInt(10), math.ZeroInt())
	require.Error(t, err)
	require.Contains(t, err.Error(), "division by zero")
}

func TestMin(t *testing.T) {
	require.Equal(t, math.NewInt(3), poolmath.Min(math.NewInt(3), math.NewInt(7)))
	require.Equal(t, math.NewInt(3), poolmath.Min(math.NewInt(7), math.NewInt(3)))
	require.Equal(t, math.NewInt(5), poolmath.Min(math.NewInt(5), math.NewInt(5)))
}

func TestSqrt_Vectors(t *testing.T) {
	cases := []struct {
		input int64
		want  int64
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 1},
		{4, 2},
		{99, 9},
		{100, 10},
		{101, 10},
		{999_999, 999},
		{1_000_000, 1000},
	}
	for _, tc := range cases {
		require.Equal(t, math.NewInt(tc.want), poolmath.Sqrt(math.NewInt(tc.input)),
			"sqrt(%d)", tc.input)
	}
}

func TestSqrt_Large(t *testing.T) {
	// sqrt(10^36) = 10^18
	x := math.NewIntWithDecimal(1, 36)
	want := math.NewIntWithDecimal(1, 18)
	require.Equal(t, want, poolmath.Sqrt(x))
}

func TestSqrt_FloorsBetweenSquares(t *testing.T) {
	// For any result y, y*y <= x < (y+1)*(y+1).
	for _, input := range []int64{5, 17, 1234, 99999, 123456789} {
		x := math.NewInt(input)
		y := poolmath.Sqrt(x)
		require.True(t, y.Mul(y).LTE(x), "sqrt(%d)=%s too large", input, y)
		next := y.AddRaw(1)
		require.True(t, next.Mul(next).GT(x), "sqrt(%d)=%s too small", input, y)
	}
}

func TestSqrt_NegativePanics(t *testing.T) {
	require.Panics(t, func() {
		poolmath.Sqrt(math.NewInt(-1))
	})
}
