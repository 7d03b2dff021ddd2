package vtc

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundHalfEven(t *testing.T) {
	tests := []struct {
		num, den int64
		want     int64
	}{
		{1, 3, 0},
		{2, 3, 1},
		{1, 2, 0},
		{3, 2, 2},
		{5, 2, 2},
		{7, 2, 4},
		{-1, 3, 0},
		{-2, 3, -1},
		{-5, 2, -2},
		{-7, 2, -4},
		{10, 1, 10},
	}

	for _, tt := range tests {
		got := roundHalfEven(big.NewRat(tt.num, tt.den))
		assert.Equal(t, tt.want, got.Int64(), "%d/%d", tt.num, tt.den)
	}
}

func TestFloorAndTrunc(t *testing.T) {
	assert.Equal(t, int64(-3), floorRat(big.NewRat(-5, 2)).Int64())
	assert.Equal(t, int64(2), floorRat(big.NewRat(5, 2)).Int64())
	assert.Equal(t, int64(-2), truncRat(big.NewRat(-5, 2)).Int64())
	assert.Equal(t, int64(2), truncRat(big.NewRat(5, 2)).Int64())
}

func TestRatToDecimal(t *testing.T) {
	tests := []struct {
		r    *big.Rat
		want string
	}{
		{big.NewRat(1, 3), "0.3333333333333333333333333333"},
		{big.NewRat(2, 3), "0.6666666666666666666666666667"},
		{big.NewRat(-1, 3), "-0.3333333333333333333333333333"},
		{big.NewRat(1, 30), "0.03333333333333333333333333333"},
		{big.NewRat(18018, 5), "3603.6"},
		{big.NewRat(1, 8), "0.125"},
		{big.NewRat(3600, 1), "3600"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ratToDecimal(tt.r, 28).String(), tt.r.String())
	}
}
