package vtc

import (
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	bigOne = big.NewInt(1)
	bigTen = big.NewInt(10)
	ratOne = big.NewRat(1, 1)
)

func ratInt(n int64) *big.Rat {
	return new(big.Rat).SetInt64(n)
}

func ratCopy(r *big.Rat) *big.Rat {
	return new(big.Rat).Set(r)
}

// roundHalfEven rounds r to the nearest integer, ties to even.
func roundHalfEven(r *big.Rat) *big.Int {
	den := r.Denom()
	q, m := new(big.Int).DivMod(r.Num(), den, new(big.Int))
	switch new(big.Int).Lsh(m, 1).Cmp(den) {
	case 1:
		q.Add(q, bigOne)
	case 0:
		if q.Bit(0) == 1 {
			q.Add(q, bigOne)
		}
	}
	return q
}

// floorRat returns the largest integer not greater than r.
func floorRat(r *big.Rat) *big.Int {
	q, _ := new(big.Int).DivMod(r.Num(), r.Denom(), new(big.Int))
	return q
}

// truncRat drops the fractional part of r, rounding toward zero.
func truncRat(r *big.Rat) *big.Int {
	return new(big.Int).Quo(r.Num(), r.Denom())
}

// pow10Rat returns 10^exp as a rational; exp may be negative.
func pow10Rat(exp int) *big.Rat {
	if exp < 0 {
		return new(big.Rat).Inv(pow10Rat(-exp))
	}
	return new(big.Rat).SetInt(new(big.Int).Exp(bigTen, big.NewInt(int64(exp)), nil))
}

// roundPlaces rounds r half-even to places fractional digits and returns the
// result scaled by 10^places.
func roundPlaces(r *big.Rat, places int) *big.Int {
	return roundHalfEven(new(big.Rat).Mul(r, pow10Rat(places)))
}

// ratToDecimal converts r to a decimal carrying at most digits significant
// digits, rounding half-even. Terminating values come back exact.
func ratToDecimal(r *big.Rat, digits int) decimal.Decimal {
	if r.IsInt() {
		return decimal.NewFromBigInt(r.Num(), 0)
	}

	abs := new(big.Rat).Abs(r)
	magnitude := 0
	if whole := floorRat(abs); whole.Sign() > 0 {
		magnitude = len(whole.String())
	} else {
		scaled := ratCopy(abs)
		for scaled.Cmp(ratOne) < 0 {
			scaled.Mul(scaled, ratInt(10))
			magnitude--
		}
		magnitude++
	}

	places := digits - magnitude
	return decimal.NewFromBigInt(roundPlaces(r, places), int32(-places))
}
