package vtc

import (
	"math/big"
	"regexp"

	"github.com/shopspring/decimal"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	framesPerFoot    = 16
)

var (
	timecodePattern = regexp.MustCompile(
		`^(?P<negative>-)?((?P<section1>[0-9]+)[:;])?((?P<section2>[0-9]+)[:;])?((?P<section3>[0-9]+)[:;])?(?P<frames>[0-9]+)$`,
	)
	runtimePattern = regexp.MustCompile(
		`^(?P<negative>-)?((?P<section1>[0-9]+)[:;])?((?P<section2>[0-9]+)[:;])?(?P<seconds>[0-9]+(\.[0-9]+)?)$`,
	)
	feetAndFramesPattern = regexp.MustCompile(
		`^(?P<negative>-)?(?P<feet>[0-9]+)\+(?P<frames>[0-9]+)$`,
	)
)

type match struct {
	pattern *regexp.Regexp
	groups  []string
}

func (m match) group(name string) string {
	return m.groups[m.pattern.SubexpIndex(name)]
}

func (m match) negative() bool {
	return m.group("negative") != ""
}

// leading returns the HH, MM and SS sections that precede the final group,
// right-aligned so missing leading sections read as zero.
func (m match) leading(names ...string) []*big.Int {
	var present []*big.Int
	for _, name := range names {
		if raw := m.group(name); raw != "" {
			present = append(present, m.integer(name))
		}
	}

	out := make([]*big.Int, len(names))
	for i := range out {
		out[i] = new(big.Int)
	}
	copy(out[len(names)-len(present):], present)
	return out
}

// integer returns a digits-only group as an integer. The grammars guarantee
// the group is a decimal number.
func (m match) integer(name string) *big.Int {
	v, _ := new(big.Int).SetString(m.group(name), 10)
	if v == nil {
		return new(big.Int)
	}
	return v
}

func matchPattern(p *regexp.Regexp, s string) (match, bool) {
	groups := p.FindStringSubmatch(s)
	if groups == nil {
		return match{}, false
	}
	return match{pattern: p, groups: groups}, true
}

// parseText converts a timecode, runtime or feet+frames string into rational
// seconds at rate.
func parseText(s string, rate Framerate) (*big.Rat, error) {
	if m, ok := matchPattern(timecodePattern, s); ok {
		return parseTimecodeMatch(m, rate)
	}
	if m, ok := matchPattern(runtimePattern, s); ok {
		return parseRuntimeMatch(m, rate)
	}
	if m, ok := matchPattern(feetAndFramesPattern, s); ok {
		return parseFeetAndFramesMatch(m, rate)
	}
	return nil, valueErrorf("'%s' is not a recognized timecode format", s)
}

func parseTimecodeMatch(m match, rate Framerate) (*big.Rat, error) {
	leading := m.leading("section1", "section2", "section3")
	hours, minutes, seconds := leading[0], leading[1], leading[2]
	frames := m.integer("frames")

	// NTSC timecode counts HH:MM:SS at the whole-number rate.
	calcRate := rate.Timebase()

	adjusted := new(big.Int).Set(frames)
	if rate.dropFrame {
		adjustment, err := dropFrameAdjustment(hours, minutes, frames, calcRate.Num().Int64())
		if err != nil {
			return nil, err
		}
		adjusted.Add(adjusted, adjustment)
	}

	total := new(big.Rat).Mul(new(big.Rat).SetInt(sectionSeconds(hours, minutes, seconds)), calcRate)
	total.Add(total, new(big.Rat).SetInt(adjusted))
	if m.negative() {
		total.Neg(total)
	}

	return framesToSeconds(roundHalfEven(total), rate), nil
}

func parseRuntimeMatch(m match, rate Framerate) (*big.Rat, error) {
	leading := m.leading("section1", "section2")
	secs, err := decimal.NewFromString(m.group("seconds"))
	if err != nil {
		return nil, valueErrorf("'%s' is not a recognized timecode format", m.groups[0])
	}

	total := secs.Rat()
	total.Add(total, new(big.Rat).SetInt(sectionSeconds(leading[0], leading[1], new(big.Int))))
	if m.negative() {
		total.Neg(total)
	}
	return snapSeconds(total, rate), nil
}

func parseFeetAndFramesMatch(m match, rate Framerate) (*big.Rat, error) {
	total := new(big.Int).Mul(m.integer("feet"), big.NewInt(framesPerFoot))
	total.Add(total, m.integer("frames"))
	if m.negative() {
		total.Neg(total)
	}
	return framesToSeconds(total, rate), nil
}

// sectionSeconds returns hours*3600 + minutes*60 + seconds.
func sectionSeconds(hours, minutes, seconds *big.Int) *big.Int {
	total := new(big.Int).Mul(hours, big.NewInt(secondsPerHour))
	total.Add(total, new(big.Int).Mul(minutes, big.NewInt(secondsPerMinute)))
	return total.Add(total, seconds)
}

// framesToSeconds returns the rational time of frame number n.
func framesToSeconds(n *big.Int, rate Framerate) *big.Rat {
	return new(big.Rat).Quo(new(big.Rat).SetInt(n), rate.playback)
}

// snapSeconds moves seconds onto the nearest frame boundary of rate.
func snapSeconds(seconds *big.Rat, rate Framerate) *big.Rat {
	frames := roundHalfEven(new(big.Rat).Mul(seconds, rate.playback))
	return framesToSeconds(frames, rate)
}
