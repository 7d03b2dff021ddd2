package vtc

import (
	"math/big"
)

// TicksPerSecond is the fixed resolution of Adobe Premiere Pro's internal
// time counter, independent of framerate.
const TicksPerSecond = 254016000000

// PremiereTicks is a Premiere Pro tick count. Arithmetic methods return
// PremiereTicks so the unit survives calculation. An int64 holds a little
// over 400 days of ticks.
type PremiereTicks int64

// Add returns t+o.
func (t PremiereTicks) Add(o PremiereTicks) PremiereTicks { return t + o }

// Sub returns t-o.
func (t PremiereTicks) Sub(o PremiereTicks) PremiereTicks { return t - o }

// Mul returns t*n.
func (t PremiereTicks) Mul(n int64) PremiereTicks { return t * PremiereTicks(n) }

// FloorDiv returns t divided by n, rounded toward negative infinity. It panics
// if n is zero.
func (t PremiereTicks) FloorDiv(n int64) PremiereTicks {
	q, _ := t.DivMod(n)
	return q
}

// Mod returns the remainder of FloorDiv, which takes the sign of n.
func (t PremiereTicks) Mod(n int64) PremiereTicks {
	_, r := t.DivMod(n)
	return r
}

// DivMod returns FloorDiv and Mod together.
func (t PremiereTicks) DivMod(n int64) (PremiereTicks, PremiereTicks) {
	q, r := int64(t)/n, int64(t)%n
	if r != 0 && (r < 0) != (n < 0) {
		q--
		r += n
	}
	return PremiereTicks(q), PremiereTicks(r)
}

// Neg returns -t.
func (t PremiereTicks) Neg() PremiereTicks { return -t }

// Abs returns |t|.
func (t PremiereTicks) Abs() PremiereTicks {
	if t < 0 {
		return -t
	}
	return t
}

// Seconds returns the exact number of seconds t represents.
func (t PremiereTicks) Seconds() *big.Rat {
	return big.NewRat(int64(t), TicksPerSecond)
}
