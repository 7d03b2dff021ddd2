package vtc

import (
	"math/big"
)

// Drop-frame counting follows David Heidelberger's description:
// https://www.davidheidelberger.com/2010/06/10/drop-frame-timecode/

// dropFrameCount returns how many frame numbers are skipped at the top of each
// non-tenth minute: 2 at 29.97, 4 at 59.94.
func dropFrameCount(timebase int64) int64 {
	return roundHalfEven(big.NewRat(timebase*66666, 1000000)).Int64()
}

// frameToDropFrame maps a non-negative frame count to the frame number whose
// non-drop HH:MM:SS:FF decomposition reads as the drop-frame timecode of that
// frame.
func frameToDropFrame(frame *big.Int, timebase int64) *big.Int {
	drop := dropFrameCount(timebase)
	perMinuteWhole := timebase * 60
	perMinuteDrop := perMinuteWhole - drop
	perTenMinutes := perMinuteDrop*9 + perMinuteWhole

	tens, rem := new(big.Int).QuoRem(frame, big.NewInt(perTenMinutes), new(big.Int))
	adjustment := new(big.Int).Mul(tens, big.NewInt(9*drop))
	out := new(big.Int).Add(frame, adjustment)

	// The first minute of every ten keeps all of its frame numbers.
	r := rem.Int64()
	if r < perMinuteWhole {
		return out
	}

	r -= perMinuteWhole
	return out.Add(out, big.NewInt(drop+drop*(r/perMinuteDrop)))
}

// dropFrameAdjustment returns the frame correction for parsed drop-frame
// sections. It rejects frame numbers that drop-frame counting skips.
func dropFrameAdjustment(hours, minutes, frames *big.Int, timebase int64) (*big.Int, error) {
	drop := big.NewInt(dropFrameCount(timebase))
	ten := big.NewInt(10)

	tenthMinute := new(big.Int).Rem(minutes, ten).Sign() == 0
	if frames.Cmp(drop) < 0 && !tenthMinute {
		return nil, valueErrorf(
			"drop-frame tc cannot have a frames value of less than %d on minutes not divisible by 10, found '%d'",
			drop, frames,
		)
	}

	total := new(big.Int).Mul(hours, big.NewInt(60))
	total.Add(total, minutes)
	skipped := new(big.Int).Sub(total, new(big.Int).Quo(total, ten))
	return skipped.Mul(skipped, drop).Neg(skipped), nil
}
