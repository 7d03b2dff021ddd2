package vtc

import (
	"fmt"
)

// Range is the half-open interval [In, Out) between two timecodes that share
// a framerate.
type Range struct {
	in  Timecode
	out Timecode
}

// NewRange returns the range between tc1 and tc2, in whichever order they
// fall.
func NewRange(tc1, tc2 Timecode) (Range, error) {
	if !tc1.rate.Equal(tc2.rate) {
		return Range{}, valueErrorf("range in and out must have matching framerate")
	}
	if tc1.GreaterEq(tc2) {
		tc1, tc2 = tc2, tc1
	}
	return Range{in: tc1, out: tc2}, nil
}

// In returns the first timecode of the range.
func (r Range) In() Timecode { return r.in }

// Out returns the timecode just past the end of the range.
func (r Range) Out() Timecode { return r.out }

// Rate returns the shared framerate.
func (r Range) Rate() Framerate { return r.in.rate }

// Duration returns Out-In.
func (r Range) Duration() Timecode {
	return r.out.Sub(r.in).Abs()
}

// Len returns the number of frames in the range.
func (r Range) Len() int64 {
	return r.Duration().Frames()
}

// Contains reports whether tc falls within [In, Out).
func (r Range) Contains(tc Timecode) bool {
	return r.in.LessEq(tc) && tc.Less(r.out)
}

// Overlaps reports whether r and other share any time.
func (r Range) Overlaps(other Range) bool {
	return !(r.in.GreaterEq(other.out) || r.out.LessEq(other.in))
}

// Intersection returns the overlap of r and other. ok is false when they do
// not overlap.
func (r Range) Intersection(other Range) (Range, bool) {
	if !r.Overlaps(other) {
		return Range{}, false
	}
	return r.between(other), true
}

// Separation returns the gap between r and other. ok is false when they
// overlap or touch.
func (r Range) Separation(other Range) (Range, bool) {
	if r.Overlaps(other) || r.out.Equal(other.in) || r.in.Equal(other.out) {
		return Range{}, false
	}
	return r.between(other), true
}

// between spans the later of the two ins to the earlier of the two outs,
// reordered if that runs backwards.
func (r Range) between(other Range) Range {
	in := r.in
	if other.in.Greater(in) {
		in = other.in
	}
	out := r.out
	if other.out.Less(out) {
		out = other.out
	}
	if in.GreaterEq(out) {
		in, out = out, in
	}
	return Range{in: in, out: out}
}

// Equal reports whether both ranges share in and out points.
func (r Range) Equal(other Range) bool {
	return r.in.Equal(other.in) && r.out.Equal(other.out)
}

// String returns "in - out".
func (r Range) String() string {
	return fmt.Sprintf("%s - %s", r.in, r.out)
}

// GoString returns a debug form including the rate.
func (r Range) GoString() string {
	return fmt.Sprintf("[%s - %s @ %s]", r.in, r.out, r.Rate())
}
