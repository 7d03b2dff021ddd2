package vtc

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultRuntimePrecision is the number of fractional digits Runtime rounds to
// when callers have no preference.
const DefaultRuntimePrecision = 9

// secondsDigits is the number of significant digits carried by Seconds.
const secondsDigits = 28

// Source is a value a Timecode can be built from: a Timecode, Text, Frames,
// Seconds, SecondsRat, SecondsDecimal or PremiereTicks.
type Source interface {
	timecodeSource()
}

// Text is a timecode ("01:00:00:00", "01:00:00;00"), runtime ("01:00:03.6")
// or feet+frames ("5400+00") string.
type Text string

// Frames is an exact frame count.
type Frames int64

// Seconds is elapsed time in seconds, snapped to the nearest frame.
type Seconds float64

// SecondsRat is exact elapsed seconds, snapped to the nearest frame.
type SecondsRat struct {
	Rat *big.Rat
}

// SecondsDecimal is decimal elapsed seconds, snapped to the nearest frame.
type SecondsDecimal struct {
	decimal.Decimal
}

func (Text) timecodeSource()           {}
func (Frames) timecodeSource()         {}
func (Seconds) timecodeSource()        {}
func (SecondsRat) timecodeSource()     {}
func (SecondsDecimal) timecodeSource() {}
func (PremiereTicks) timecodeSource()  {}
func (Timecode) timecodeSource()       {}

// Timecode is an exact point in time paired with the framerate used to
// present it. Two timecodes are equal when they represent the same elapsed
// time, whatever their rates.
type Timecode struct {
	rational *big.Rat
	rate     Framerate
}

// New builds a Timecode from src at rate. When src is a Timecode, rate must be
// the zero Framerate and the source is returned unchanged; use Rebase to
// change the rate.
func New(src Source, rate Framerate) (Timecode, error) {
	if tc, ok := src.(Timecode); ok {
		if !rate.IsZero() {
			return Timecode{}, valueErrorf("rate must be unset if src is a Timecode, use Timecode.Rebase to change rate")
		}
		if tc.rational == nil {
			return Timecode{}, valueErrorf("source Timecode is unset")
		}
		return tc, nil
	}

	if rate.IsZero() {
		return Timecode{}, valueErrorf("rate must be set for all Timecode sources except Timecode")
	}

	seconds, err := sourceSeconds(src, rate)
	if err != nil {
		return Timecode{}, err
	}
	return Timecode{rational: seconds, rate: rate}, nil
}

// MustNew is like New but panics on error.
func MustNew(src Source, rate Framerate) Timecode {
	tc, err := New(src, rate)
	if err != nil {
		panic(err)
	}
	return tc
}

// Parse builds a Timecode from a timecode, runtime or feet+frames string.
func Parse(s string, rate Framerate) (Timecode, error) {
	return New(Text(s), rate)
}

// FromFrames builds a Timecode from a frame count.
func FromFrames(frames int64, rate Framerate) (Timecode, error) {
	return New(Frames(frames), rate)
}

// FromSeconds builds a Timecode from exact seconds, snapped to a frame.
func FromSeconds(seconds *big.Rat, rate Framerate) (Timecode, error) {
	return New(SecondsRat{Rat: seconds}, rate)
}

func sourceSeconds(src Source, rate Framerate) (*big.Rat, error) {
	switch v := src.(type) {
	case Text:
		return parseText(string(v), rate)
	case Frames:
		return framesToSeconds(big.NewInt(int64(v)), rate), nil
	case Seconds:
		r := new(big.Rat).SetFloat64(float64(v))
		if r == nil {
			return nil, valueErrorf("cannot convert non-finite seconds value %v", float64(v))
		}
		return snapSeconds(r, rate), nil
	case SecondsRat:
		if v.Rat == nil {
			return nil, valueErrorf("seconds rational is nil")
		}
		return snapSeconds(v.Rat, rate), nil
	case SecondsDecimal:
		return snapSeconds(v.Rat(), rate), nil
	case PremiereTicks:
		return snapSeconds(v.Seconds(), rate), nil
	default:
		return nil, typeErrorf("unsupported type for Timecode conversion: %T", src)
	}
}

func (tc Timecode) value() *big.Rat {
	if tc.rational == nil {
		return new(big.Rat)
	}
	return tc.rational
}

// Rate returns the framerate the timecode is presented at.
func (tc Timecode) Rate() Framerate {
	return tc.rate
}

// Rational returns the exact elapsed seconds.
func (tc Timecode) Rational() *big.Rat {
	return ratCopy(tc.value())
}

// Frames returns the frame number at the timecode's rate, saturated to the
// int64 range. BigFrames is exact.
func (tc Timecode) Frames() int64 {
	return clampInt64(tc.BigFrames())
}

// BigFrames returns the exact frame number at the timecode's rate.
func (tc Timecode) BigFrames() *big.Int {
	if tc.rate.IsZero() {
		return new(big.Int)
	}
	return roundHalfEven(new(big.Rat).Mul(tc.value(), tc.rate.playback))
}

// Seconds returns the elapsed seconds as a decimal with up to 28 significant
// digits.
func (tc Timecode) Seconds() decimal.Decimal {
	return ratToDecimal(tc.value(), secondsDigits)
}

// Negative reports whether the timecode is before zero.
func (tc Timecode) Negative() bool {
	return tc.value().Sign() < 0
}

func (tc Timecode) sign() string {
	if tc.Negative() {
		return "-"
	}
	return ""
}

// Sections returns the HH:MM:SS:FF decomposition shown by Timecode, with
// drop-frame numbering applied. Hours saturate at math.MaxInt64.
func (tc Timecode) Sections() Sections {
	_, s := tc.sections()
	return s
}

func (tc Timecode) sections() (*big.Int, Sections) {
	if tc.rate.IsZero() {
		return new(big.Int), Sections{}
	}

	frames := new(big.Int).Abs(tc.BigFrames())

	timebase := tc.rate.Timebase()
	if tc.rate.dropFrame {
		frames = frameToDropFrame(frames, timebase.Num().Int64())
	}

	hours, s := splitSections(frames, timebase)
	s.Negative = tc.Negative()
	return hours, s
}

// Timecode returns the SMPTE timecode string, using ';' before the frames for
// drop-frame rates.
func (tc Timecode) Timecode() string {
	hours, s := tc.sections()
	sep := ":"
	if tc.rate.dropFrame {
		sep = ";"
	}
	return fmt.Sprintf("%s%02d:%02d:%02d%s%02d", tc.sign(), hours, s.Minutes, s.Seconds, sep, s.Frames)
}

// Runtime returns the true elapsed time as HH:MM:SS.fff, rounded to precision
// fractional digits. Trailing zeros are trimmed but at least one fractional
// digit is kept.
func (tc Timecode) Runtime(precision int) string {
	if precision < 0 {
		precision = 0
	}

	abs := new(big.Rat).Abs(tc.value())
	scaled := roundPlaces(abs, precision)
	unit := new(big.Int).Exp(bigTen, big.NewInt(int64(precision)), nil)
	whole, frac := new(big.Int).QuoRem(scaled, unit, new(big.Int))

	hours, rem := new(big.Int).QuoRem(whole, big.NewInt(secondsPerHour), new(big.Int))
	minutes := rem.Int64() / secondsPerMinute
	seconds := rem.Int64() % secondsPerMinute

	fraction := ""
	if precision > 0 {
		digits := frac.String()
		fraction = strings.Repeat("0", precision-len(digits)) + digits
		fraction = strings.TrimRight(fraction, "0")
	}
	if fraction == "" {
		fraction = "0"
	}

	return fmt.Sprintf("%s%02d:%02d:%02d.%s", tc.sign(), hours, minutes, seconds, fraction)
}

// FeetAndFrames returns 35mm 4-perf footage, 16 frames to the foot, such as
// "5400+00".
func (tc Timecode) FeetAndFrames() string {
	frames := new(big.Int).Abs(tc.BigFrames())
	feet, rem := new(big.Int).QuoRem(frames, big.NewInt(framesPerFoot), new(big.Int))
	return fmt.Sprintf("%s%d+%02d", tc.sign(), feet, rem.Int64())
}

// PremiereTicks returns the elapsed time in Premiere Pro ticks, saturated to
// the int64 range. BigPremiereTicks is exact.
func (tc Timecode) PremiereTicks() PremiereTicks {
	return PremiereTicks(clampInt64(tc.BigPremiereTicks()))
}

// BigPremiereTicks returns the exact elapsed time in Premiere Pro ticks.
func (tc Timecode) BigPremiereTicks() *big.Int {
	return roundHalfEven(new(big.Rat).Mul(tc.value(), ratInt(TicksPerSecond)))
}

// Rebase returns the timecode with the same frame number at rate. The
// elapsed time changes unless the rates share a playback speed.
func (tc Timecode) Rebase(rate Framerate) (Timecode, error) {
	if rate.IsZero() {
		return Timecode{}, valueErrorf("rate must be set to rebase a Timecode")
	}
	return Timecode{rational: framesToSeconds(tc.BigFrames(), rate), rate: rate}, nil
}

// String returns the SMPTE timecode string.
func (tc Timecode) String() string {
	return tc.Timecode()
}

// GoString returns a debug form such as "[01:00:00:00 @ [23.98 fps NTSC]]".
func (tc Timecode) GoString() string {
	return fmt.Sprintf("[%s @ %s]", tc.Timecode(), tc.rate)
}
