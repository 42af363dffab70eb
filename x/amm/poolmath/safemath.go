package poolmath

import (
	"fmt"
	"math/big"

	"cosmossdk.io/math"
)

// Overflow-safe arithmetic for pool accounting. Every product is taken on
// big.Int before dividing, and every division floors toward zero. Callers
// decide who absorbs the remainder; in this module the pool always does.

var maxInt = new(big.Int).Exp(big.NewInt(2), big.NewInt(256), nil)

// SafeAdd adds two math.Int values with overflow checking
func SafeAdd(a, b math.Int) (math.Int, error) {
	result := new(big.Int).Add(a.BigInt(), b.BigInt())
	if result.Cmp(maxInt) >= 0 {
		return math.Int{}, fmt.Errorf("overflow: addition result exceeds maximum value")
	}
	return math.NewIntFromBigInt(result), nil
}

// SafeSub subtracts b from a, failing on underflow rather than wrapping.
// Reserve updates rely on this as the checked-subtraction guard: amountOut
// is strictly below reserveOut by construction, so an underflow here is an
// internal invariant failure, never a user error.
func SafeSub(a, b math.Int) (math.Int, error) {
	if a.LT(b) {
		return math.Int{}, fmt.Errorf("underflow: cannot subtract %s from %s", b.String(), a.String())
	}
	return math.NewIntFromBigInt(new(big.Int).Sub(a.BigInt(), b.BigInt())), nil
}

// SafeMul multiplies two math.Int values with overflow checking
func SafeMul(a, b math.Int) (math.Int, error) {
	if a.IsZero() || b.IsZero() {
		return math.ZeroInt(), nil
	}
	result := new(big.Int).Mul(a.BigInt(), b.BigInt())
	if result.Cmp(maxInt) >= 0 {
		return math.Int{}, fmt.Errorf("overflow: multiplication result exceeds maximum value")
	}
	return math.NewIntFromBigInt(result), nil
}

// SafeQuo divides a by b with division-by-zero checking, flooring toward zero.
func SafeQuo(a, b math.Int) (math.Int, error) {
	if b.IsZero() {
		return math.Int{}, fmt.Errorf("division by zero")
	}
	return math.NewIntFromBigInt(new(big.Int).Quo(a.BigInt(), b.BigInt())), nil
}

// MulDiv computes floor(a*b/denom). The product is held as a big.Int so the
// only precision loss is the final truncating division.
func MulDiv(a, b, denom math.Int) (math.Int, error) {
	if denom.IsZero() {
		return math.Int{}, fmt.Errorf("division by zero")
	}
	intermediate := new(big.Int).Mul(a.BigInt(), b.BigInt())
	if intermediate.Cmp(maxInt) >= 0 {
		return math.Int{}, fmt.Errorf("overflow in multiplication step")
	}
	return math.NewIntFromBigInt(new(big.Int).Quo(intermediate, denom.BigInt())), nil
}

// Min returns the smaller of a and b.
func Min(a, b math.Int) math.Int {
	if a.LT(b) {
		return a
	}
	return b
}

// Sqrt returns the largest y such that y*y <= x, computed with the
// Newton/Babylonian iteration on integers: z0 = (x+1)/2, then
// z = (x/z + z)/2 until it stops decreasing. Converges in O(log x) steps.
// Sqrt(0) == 0.
func Sqrt(x math.Int) math.Int {
	if x.IsNegative() {
		panic(fmt.Sprintf("square root of negative value %s", x.String()))
	}
	xb := x.BigInt()
	if xb.Sign() == 0 {
		return math.ZeroInt()
	}

	one := big.NewInt(1)
	two := big.NewInt(2)

	z := new(big.Int).Add(xb, one)
	z.Quo(z, two)
	y := new(big.Int).Set(xb)

	tmp := new(big.Int)
	for z.Cmp(y) < 0 {
		y.Set(z)
		tmp.Quo(xb, z)
		z.Add(z, tmp)
		z.Quo(z, two)
	}
	return math.NewIntFromBigInt(y)
}
