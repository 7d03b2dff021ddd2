package vtc

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// FramerateSource is a value a Framerate can be built from: a Framerate, FPS,
// FPSFloat, FPSString, FPSPair or FPSRat.
type FramerateSource interface {
	framerateSource()
}

// FPS is a whole-number framerate such as 24.
type FPS int64

// FPSFloat is a decimal framerate such as 23.976. Non-whole values are read as
// NTSC rates.
type FPSFloat float64

// FPSString is a textual framerate: "24000/1001", "29.97" or "24".
type FPSString string

// FPSPair is a numerator, denominator pair such as {24000, 1001}.
type FPSPair []int64

// FPSRat is an exact rational framerate.
type FPSRat struct {
	Rat *big.Rat
}

func (FPS) framerateSource()       {}
func (FPSFloat) framerateSource()  {}
func (FPSString) framerateSource() {}
func (FPSPair) framerateSource()   {}
func (FPSRat) framerateSource()    {}
func (Framerate) framerateSource() {}

// FramerateOption adjusts how NewFramerate interprets its source.
type FramerateOption func(*framerateOptions)

type framerateOptions struct {
	ntsc      *bool
	dropFrame bool
}

// WithNTSC forces the NTSC flag. Without it, NTSC is inferred from a 1001
// denominator.
func WithNTSC(ntsc bool) FramerateOption {
	return func(o *framerateOptions) {
		o.ntsc = &ntsc
	}
}

// WithDropFrame marks the rate as drop-frame. Implies NTSC.
func WithDropFrame(dropFrame bool) FramerateOption {
	return func(o *framerateOptions) {
		o.dropFrame = dropFrame
	}
}

// Framerate is the rate at which video plays back and timecode increments.
// The zero value is an unset rate and is only meaningful as the rate argument
// of New when the source is itself a Timecode.
type Framerate struct {
	playback  *big.Rat
	ntsc      bool
	dropFrame bool
}

var ntscDropFrameBase = big.NewRat(30000, 1001)

// NewFramerate normalizes src into a Framerate.
func NewFramerate(src FramerateSource, opts ...FramerateOption) (Framerate, error) {
	var o framerateOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.dropFrame {
		if o.ntsc != nil && !*o.ntsc {
			return Framerate{}, valueErrorf("ntsc must be [true] or [unset] if dropframe is [true]")
		}
		ntsc := true
		o.ntsc = &ntsc
	}

	if fr, ok := src.(Framerate); ok {
		if fr.IsZero() {
			return Framerate{}, valueErrorf("cannot build a Framerate from an unset Framerate")
		}
		if fr.dropFrame {
			o.dropFrame = true
		}
		if o.ntsc == nil {
			ntsc := fr.ntsc
			o.ntsc = &ntsc
		}
		if o.dropFrame && !*o.ntsc {
			return Framerate{}, valueErrorf("ntsc must be [true] or [unset] if dropframe is [true]")
		}
	}

	value, err := framerateValue(src, o.ntsc)
	if err != nil {
		return Framerate{}, err
	}

	if value.Sign() <= 0 {
		return Framerate{}, valueErrorf("framerate must be positive, got %q", value.RatString())
	}

	if value.Num().Cmp(value.Denom()) < 0 {
		value = new(big.Rat).SetFrac(value.Denom(), value.Num())
	}

	if o.ntsc != nil && *o.ntsc {
		value = ntscRate(roundHalfEven(value))
	}

	rate := Framerate{playback: value, dropFrame: o.dropFrame}
	if o.ntsc == nil {
		rate.ntsc = value.Denom().Cmp(big.NewInt(1001)) == 0
	} else {
		rate.ntsc = *o.ntsc
	}

	if rate.dropFrame && !new(big.Rat).Quo(value, ntscDropFrameBase).IsInt() {
		return Framerate{}, valueErrorf("dropframe may only be true if framerate is divisible by 30000/1001 (29.97)")
	}

	return rate, nil
}

// MustFramerate is like NewFramerate but panics on error. It is meant for
// package-level rate declarations.
func MustFramerate(src FramerateSource, opts ...FramerateOption) Framerate {
	rate, err := NewFramerate(src, opts...)
	if err != nil {
		panic(err)
	}
	return rate
}

func framerateValue(src FramerateSource, ntsc *bool) (*big.Rat, error) {
	switch v := src.(type) {
	case Framerate:
		return ratCopy(v.playback), nil
	case FPS:
		return ratInt(int64(v)), nil
	case FPSFloat:
		return floatFramerate(float64(v), ntsc)
	case FPSString:
		return stringFramerate(string(v), ntsc)
	case FPSPair:
		if len(v) != 2 {
			return nil, valueErrorf("framerate pair must contain exactly 2 values, got %d", len(v))
		}
		if v[1] == 0 {
			return nil, valueErrorf("framerate pair has a zero denominator")
		}
		return big.NewRat(v[0], v[1]), nil
	case FPSRat:
		if v.Rat == nil {
			return nil, valueErrorf("framerate rational is nil")
		}
		return ratCopy(v.Rat), nil
	default:
		return nil, typeErrorf("unsupported type for Framerate conversion: %T", src)
	}
}

func floatFramerate(f float64, ntsc *bool) (*big.Rat, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, valueErrorf("could not parse Framerate value of %q", strconv.FormatFloat(f, 'g', -1, 64))
	}

	whole := f == math.Trunc(f)
	if !whole && ntsc != nil && !*ntsc {
		return nil, valueErrorf("non-whole-number float values cannot be parsed when ntsc is false, use an exact fraction instead")
	}

	exact := new(big.Rat).SetFloat64(f)
	if whole {
		return exact, nil
	}
	return ntscRate(roundHalfEven(exact)), nil
}

func stringFramerate(s string, ntsc *bool) (*big.Rat, error) {
	if strings.Contains(s, "/") {
		r, ok := new(big.Rat).SetString(s)
		if !ok {
			return nil, valueErrorf("could not parse Framerate value of %q", s)
		}
		return r, nil
	}

	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatFramerate(f, ntsc)
		}
	}

	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, valueErrorf("could not parse Framerate value of %q", s)
	}
	if n.Sign() == 0 {
		return nil, valueErrorf("framerate must be positive, got %q", s)
	}
	// A bare integer is read as a timebase and inverted back by the caller.
	return new(big.Rat).SetFrac(bigOne, n), nil
}

func ntscRate(nominal *big.Int) *big.Rat {
	return new(big.Rat).SetFrac(new(big.Int).Mul(nominal, big.NewInt(1000)), big.NewInt(1001))
}

// IsZero reports whether the rate is unset.
func (r Framerate) IsZero() bool {
	return r.playback == nil
}

// Playback returns the true signal rate in frames per second.
func (r Framerate) Playback() *big.Rat {
	if r.playback == nil {
		return new(big.Rat)
	}
	return ratCopy(r.playback)
}

// Timebase returns the rate used for HH:MM:SS:FF arithmetic. For NTSC rates it
// is the playback rate rounded to a whole number.
func (r Framerate) Timebase() *big.Rat {
	if r.playback == nil {
		return new(big.Rat)
	}
	if r.ntsc {
		return new(big.Rat).SetInt(roundHalfEven(r.playback))
	}
	return ratCopy(r.playback)
}

// NTSC reports whether the rate is an NTSC pulldown of a whole-number rate.
func (r Framerate) NTSC() bool {
	return r.ntsc
}

// DropFrame reports whether the rate counts timecode in drop-frame.
func (r Framerate) DropFrame() bool {
	return r.dropFrame
}

// Equal reports whether both rates share playback, NTSC and drop-frame.
func (r Framerate) Equal(other Framerate) bool {
	if r.IsZero() || other.IsZero() {
		return r.IsZero() && other.IsZero()
	}
	return r.playback.Cmp(other.playback) == 0 &&
		r.ntsc == other.ntsc &&
		r.dropFrame == other.dropFrame
}

// Fraction returns the playback rate as "num/den", or just "num" for whole
// rates.
func (r Framerate) Fraction() string {
	return r.Playback().RatString()
}

// String returns a display form such as "[29.97 fps NTSC DF]".
func (r Framerate) String() string {
	if r.IsZero() {
		return "[unset fps]"
	}

	f, _ := r.playback.Float64()
	value := strconv.FormatFloat(math.Round(f*100)/100, 'f', 2, 64)
	value = strings.TrimRight(strings.TrimRight(value, "0"), ".")

	var b strings.Builder
	fmt.Fprintf(&b, "[%s fps", value)
	if r.ntsc {
		b.WriteString(" NTSC")
	}
	if r.dropFrame {
		b.WriteString(" DF")
	}
	b.WriteString("]")
	return b.String()
}
