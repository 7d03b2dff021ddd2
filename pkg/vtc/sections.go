package vtc

import (
	"math"
	"math/big"
)

// Sections is the HH:MM:SS:FF decomposition of a timecode. All fields are
// non-negative; the sign is carried separately.
type Sections struct {
	Negative bool
	Hours    int64
	Minutes  int64
	Seconds  int64
	Frames   int64
}

// splitSections decomposes a non-negative frame number using timebase
// boundaries. Minutes, seconds and frames are bounded by the timebase; hours
// are returned exactly.
func splitSections(frames *big.Int, timebase *big.Rat) (*big.Int, Sections) {
	rem := new(big.Rat).SetInt(frames)

	perHour := new(big.Rat).Mul(timebase, ratInt(secondsPerHour))
	perMinute := new(big.Rat).Mul(timebase, ratInt(secondsPerMinute))

	var s Sections
	hours, rem := divModRat(rem, perHour)
	minutes, rem := divModRat(rem, perMinute)
	seconds, rem := divModRat(rem, timebase)
	s.Minutes = minutes.Int64()
	s.Seconds = seconds.Int64()
	s.Frames = roundHalfEven(rem).Int64()
	s.Hours = clampInt64(hours)
	return hours, s
}

func divModRat(x, y *big.Rat) (*big.Int, *big.Rat) {
	q := floorRat(new(big.Rat).Quo(x, y))
	rem := new(big.Rat).Sub(x, new(big.Rat).Mul(y, new(big.Rat).SetInt(q)))
	return q, rem
}

// clampInt64 returns x, saturated to the int64 range.
func clampInt64(x *big.Int) int64 {
	switch {
	case x.IsInt64():
		return x.Int64()
	case x.Sign() > 0:
		return math.MaxInt64
	default:
		return math.MinInt64
	}
}
