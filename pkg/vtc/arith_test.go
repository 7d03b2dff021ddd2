package vtc

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimecodeCompare(t *testing.T) {
	hour24 := MustNew(Text("01:00:00:00"), F24)
	hour48 := MustNew(Frames(172800), F48)
	hour60 := MustNew(Seconds(3600), F60)
	later := MustNew(Text("01:00:00:01"), F24)

	assert.True(t, hour24.Equal(hour48))
	assert.True(t, hour48.Equal(hour60))
	assert.True(t, hour24.Equal(hour60))

	assert.True(t, hour24.Less(later))
	assert.True(t, hour48.LessEq(later))
	assert.True(t, hour48.LessEq(hour60))
	assert.True(t, later.Greater(hour60))
	assert.True(t, later.GreaterEq(later))
	assert.False(t, later.Less(hour24))

	assert.Equal(t, -1, hour24.Cmp(later))
	assert.Equal(t, 0, hour24.Cmp(hour48))
	assert.Equal(t, 1, later.Cmp(hour48))

	// 01:00:00:00 at 23.98 is later in real time than at 24.
	assert.True(t, MustNew(Text("01:00:00:00"), F23_98).Greater(hour24))
}

func TestTimecodeCoerce(t *testing.T) {
	tc := MustNew(Text("01:00:00:00"), F24)

	tests := []struct {
		name string
		src  Source
	}{
		{name: "text", src: Text("01:00:00:00")},
		{name: "frames", src: Frames(86400)},
		{name: "seconds", src: Seconds(3600)},
		{name: "ticks", src: PremiereTicks(914457600000000)},
		{name: "timecode", src: MustNew(Frames(172800), F48)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other, err := tc.Coerce(tt.src)
			require.NoError(t, err)
			assert.True(t, tc.Equal(other))
		})
	}

	other, err := tc.Coerce(Frames(24))
	require.NoError(t, err)
	assert.True(t, other.Rate().Equal(F24))

	_, err = tc.Coerce(Text("bad"))
	assert.ErrorIs(t, err, ErrValue)
}

func TestTimecodeAddSub(t *testing.T) {
	tc := MustNew(Text("01:00:00:00"), F24)
	frame := MustNew(Text("00:00:00:01"), F24)

	assert.Equal(t, "01:00:00:01", tc.Add(frame).Timecode())
	assert.Equal(t, "00:59:59:23", tc.Sub(frame).Timecode())

	zero := MustNew(Frames(0), F24)
	second := MustNew(Text("00:00:01:00"), F24)
	assert.Equal(t, "-00:00:01:00", zero.Sub(second).Timecode())

	// The result keeps the receiver's rate and snaps to its frames.
	half := MustNew(Frames(1), F48)
	sum := tc.Add(half)
	assert.True(t, sum.Rate().Equal(F24))
	assert.Equal(t, int64(86400), sum.Frames())

	sum = MustNew(Frames(0), F48).Add(tc)
	assert.True(t, sum.Rate().Equal(F48))
	assert.Equal(t, int64(172800), sum.Frames())
}

func TestTimecodeNegAbs(t *testing.T) {
	tc := MustNew(Text("01:00:00:00"), F23_98)

	neg := tc.Neg()
	assert.Equal(t, "-01:00:00:00", neg.Timecode())
	assert.True(t, neg.Rate().Equal(F23_98))
	assert.True(t, neg.Abs().Equal(tc))
	assert.True(t, tc.Abs().Equal(tc))
	assert.True(t, neg.Neg().Equal(tc))
}

func TestTimecodeScaling(t *testing.T) {
	hour := MustNew(Text("01:00:00:00"), F24)

	assert.True(t, hour.Mul(big.NewRat(3, 2)).Equal(MustNew(Text("01:30:00:00"), F24)))
	assert.Equal(t, "02:00:00:00", hour.MulInt(2).Timecode())

	odd := MustNew(Frames(12345), F23_98)
	assert.Equal(t, int64(12345), odd.Mul(big.NewRat(2, 1)).Mul(big.NewRat(1, 2)).Frames())

	half, err := hour.Div(big.NewRat(2, 1))
	require.NoError(t, err)
	assert.Equal(t, "00:30:00:00", half.Timecode())

	tests := []struct {
		name   string
		frames int64
		x      *big.Rat
		mul    int64
		div    int64
		floor  int64
		mod    int64
	}{
		{name: "even split", frames: 100, x: big.NewRat(4, 1), mul: 400, div: 25, floor: 25, mod: 0},
		{name: "remainder", frames: 100, x: big.NewRat(7, 1), mul: 700, div: 14, floor: 14, mod: 2},
		{name: "negative frames", frames: -100, x: big.NewRat(7, 1), mul: -700, div: -14, floor: -15, mod: 5},
		{name: "negative divisor", frames: 100, x: big.NewRat(-7, 1), mul: -700, div: -14, floor: -15, mod: -5},
		{name: "fractional divisor", frames: 100, x: big.NewRat(3, 2), mul: 150, div: 67, floor: 66, mod: 1},
		{name: "fractional remainder truncates", frames: 101, x: big.NewRat(3, 2), mul: 152, div: 67, floor: 67, mod: 0},
		{name: "half to even down", frames: 5, x: big.NewRat(2, 1), mul: 10, div: 2, floor: 2, mod: 1},
		{name: "half to even up", frames: 3, x: big.NewRat(2, 1), mul: 6, div: 2, floor: 1, mod: 1},
		{name: "half scale", frames: 5, x: big.NewRat(1, 2), mul: 2, div: 10, floor: 10, mod: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := MustNew(Frames(tt.frames), F24)

			assert.Equal(t, tt.mul, tc.Mul(tt.x).Frames(), "mul")

			div, err := tc.Div(tt.x)
			require.NoError(t, err)
			assert.Equal(t, tt.div, div.Frames(), "div")

			floor, err := tc.FloorDiv(tt.x)
			require.NoError(t, err)
			assert.Equal(t, tt.floor, floor.Frames(), "floordiv")

			mod, err := tc.Mod(tt.x)
			require.NoError(t, err)
			assert.Equal(t, tt.mod, mod.Frames(), "mod")

			q, r, err := tc.DivMod(tt.x)
			require.NoError(t, err)
			assert.Equal(t, tt.floor, q.Frames())
			assert.Equal(t, tt.mod, r.Frames())
			assert.True(t, q.Rate().Equal(F24))
		})
	}
}

func TestTimecodeDivisionByZero(t *testing.T) {
	tc := MustNew(Frames(100), F24)
	zero := new(big.Rat)

	_, err := tc.Div(zero)
	assert.EqualError(t, err, "division by zero")
	assert.ErrorIs(t, err, ErrValue)
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = tc.FloorDiv(zero)
	assert.ErrorIs(t, err, ErrValue)

	_, err = tc.Mod(nil)
	assert.ErrorIs(t, err, ErrValue)

	_, _, err = tc.DivMod(zero)
	assert.ErrorIs(t, err, ErrValue)
}

func TestTimecodeNilScalar(t *testing.T) {
	tc := MustNew(Frames(100), F24)

	got := tc.Mul(nil)
	assert.Equal(t, int64(0), got.Frames())
	assert.True(t, got.Rate().Equal(F24))

	_, err := tc.Div(nil)
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = tc.FloorDiv(nil)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}
