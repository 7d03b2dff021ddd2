package vtc

import (
	"math/big"

	"github.com/pkg/errors"
)

// Coerce converts src into a Timecode at tc's rate. A Timecode is returned
// unchanged. Use it to compare or combine tc with strings, frame counts and
// other raw values.
func (tc Timecode) Coerce(src Source) (Timecode, error) {
	if other, ok := src.(Timecode); ok {
		return other, nil
	}
	return New(src, tc.rate)
}

// Cmp compares the elapsed time of tc and other, returning -1, 0 or +1.
func (tc Timecode) Cmp(other Timecode) int {
	return tc.value().Cmp(other.value())
}

// Equal reports whether tc and other represent the same elapsed time.
func (tc Timecode) Equal(other Timecode) bool { return tc.Cmp(other) == 0 }

// Less reports whether tc is before other.
func (tc Timecode) Less(other Timecode) bool { return tc.Cmp(other) < 0 }

// LessEq reports whether tc is before or equal to other.
func (tc Timecode) LessEq(other Timecode) bool { return tc.Cmp(other) <= 0 }

// Greater reports whether tc is after other.
func (tc Timecode) Greater(other Timecode) bool { return tc.Cmp(other) > 0 }

// GreaterEq reports whether tc is after or equal to other.
func (tc Timecode) GreaterEq(other Timecode) bool { return tc.Cmp(other) >= 0 }

// withSeconds returns a Timecode at tc's rate holding seconds snapped to a
// frame.
func (tc Timecode) withSeconds(seconds *big.Rat) Timecode {
	return Timecode{rational: snapSeconds(seconds, tc.rate), rate: tc.rate}
}

func (tc Timecode) withFrames(frames *big.Int) Timecode {
	return Timecode{rational: framesToSeconds(frames, tc.rate), rate: tc.rate}
}

// Add returns tc+other at tc's rate.
func (tc Timecode) Add(other Timecode) Timecode {
	return tc.withSeconds(new(big.Rat).Add(tc.value(), other.value()))
}

// Sub returns tc-other at tc's rate.
func (tc Timecode) Sub(other Timecode) Timecode {
	return tc.withSeconds(new(big.Rat).Sub(tc.value(), other.value()))
}

// Neg returns -tc.
func (tc Timecode) Neg() Timecode {
	return tc.withSeconds(new(big.Rat).Neg(tc.value()))
}

// Abs returns |tc|.
func (tc Timecode) Abs() Timecode {
	return tc.withSeconds(new(big.Rat).Abs(tc.value()))
}

// Mul scales the frame count by x, rounding half to even. A nil x reads as
// zero, as it does for the division methods.
func (tc Timecode) Mul(x *big.Rat) Timecode {
	if x == nil {
		return tc.withFrames(new(big.Int))
	}
	frames := new(big.Rat).Mul(new(big.Rat).SetInt(tc.BigFrames()), x)
	return tc.withFrames(roundHalfEven(frames))
}

// MulInt scales the frame count by n.
func (tc Timecode) MulInt(n int64) Timecode {
	return tc.withFrames(new(big.Int).Mul(tc.BigFrames(), big.NewInt(n)))
}

// Div divides the frame count by x, rounding half to even.
func (tc Timecode) Div(x *big.Rat) (Timecode, error) {
	frames, err := tc.framesOver(x)
	if err != nil {
		return Timecode{}, err
	}
	return tc.withFrames(roundHalfEven(frames)), nil
}

// FloorDiv divides the frame count by x, rounding toward negative infinity.
func (tc Timecode) FloorDiv(x *big.Rat) (Timecode, error) {
	frames, err := tc.framesOver(x)
	if err != nil {
		return Timecode{}, err
	}
	return tc.withFrames(floorRat(frames)), nil
}

// Mod returns the frame count modulo x. The remainder takes the sign of x and
// is truncated to a whole frame.
func (tc Timecode) Mod(x *big.Rat) (Timecode, error) {
	_, rem, err := tc.DivMod(x)
	return rem, err
}

// DivMod returns FloorDiv and Mod together.
func (tc Timecode) DivMod(x *big.Rat) (Timecode, Timecode, error) {
	frames, err := tc.framesOver(x)
	if err != nil {
		return Timecode{}, Timecode{}, err
	}

	q := floorRat(frames)
	rem := new(big.Rat).SetInt(tc.BigFrames())
	rem.Sub(rem, new(big.Rat).Mul(x, new(big.Rat).SetInt(q)))

	return tc.withFrames(q), tc.withFrames(truncRat(rem)), nil
}

func (tc Timecode) framesOver(x *big.Rat) (*big.Rat, error) {
	if x == nil || x.Sign() == 0 {
		return nil, errors.WithStack(ErrDivisionByZero)
	}
	return new(big.Rat).Quo(new(big.Rat).SetInt(tc.BigFrames()), x), nil
}
