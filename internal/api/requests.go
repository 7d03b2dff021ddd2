package api

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zsiec/vtc/internal/errors"
	"github.com/zsiec/vtc/pkg/vtc"
)

// Value kinds accepted in requests.
const (
	KindText     = "text"
	KindFrames   = "frames"
	KindSeconds  = "seconds"
	KindRational = "rational"
	KindTicks    = "ticks"
)

// RateParam is a framerate in a request. It decodes from a string such as
// "29.97df" or "24000/1001", or from an object with explicit flags.
type RateParam struct {
	Value     string `json:"value"`
	NTSC      *bool  `json:"ntsc,omitempty"`
	DropFrame *bool  `json:"dropframe,omitempty"`
}

// UnmarshalJSON accepts either form.
func (r *RateParam) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*r = RateParam{Value: name}
		return nil
	}

	type plain RateParam
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("rate must be a string or an object: %w", err)
	}
	*r = RateParam(p)
	return nil
}

// IsZero reports whether no rate was given.
func (r RateParam) IsZero() bool {
	return r.Value == "" && r.NTSC == nil && r.DropFrame == nil
}

// Framerate resolves the parameter, falling back to def when it is empty.
func (r RateParam) Framerate(def vtc.Framerate) (vtc.Framerate, error) {
	if r.IsZero() {
		return def, nil
	}

	base, err := vtc.ParseRate(r.Value)
	if err != nil {
		return vtc.Framerate{}, err
	}
	if r.NTSC == nil && r.DropFrame == nil {
		return base, nil
	}

	// Rebuild from the playback fraction so explicit flags replace the
	// ones implied by the name.
	var opts []vtc.FramerateOption
	if r.NTSC != nil {
		opts = append(opts, vtc.WithNTSC(*r.NTSC))
	}
	if r.DropFrame != nil {
		opts = append(opts, vtc.WithDropFrame(*r.DropFrame))
	}
	return vtc.NewFramerate(vtc.FPSString(base.Fraction()), opts...)
}

// rateKey identifies the resolved rate exactly.
func rateKey(rate vtc.Framerate) string {
	return fmt.Sprintf("%s|ntsc=%t|df=%t", rate.Fraction(), rate.NTSC(), rate.DropFrame())
}

// SourceFor converts a raw request value of the given kind into a timecode
// source. An empty kind means text.
func SourceFor(kind, value string) (vtc.Source, error) {
	value = strings.TrimSpace(value)

	switch kind {
	case "", KindText:
		return vtc.Text(value), nil
	case KindFrames:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, invalidValue(kind, value)
		}
		return vtc.Frames(n), nil
	case KindSeconds:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, invalidValue(kind, value)
		}
		return vtc.SecondsDecimal{Decimal: d}, nil
	case KindRational:
		r, ok := new(big.Rat).SetString(value)
		if !ok {
			return nil, invalidValue(kind, value)
		}
		return vtc.SecondsRat{Rat: r}, nil
	case KindTicks:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, invalidValue(kind, value)
		}
		return vtc.PremiereTicks(n), nil
	default:
		return nil, errors.NewValidationError(fmt.Sprintf("unknown value kind %q", kind)).
			WithCode(errors.CodeInvalidValue).
			WithDetails(map[string]interface{}{
				"allowed": []string{KindText, KindFrames, KindSeconds, KindRational, KindTicks},
			})
	}
}

func invalidValue(kind, value string) error {
	return errors.NewValidationError(fmt.Sprintf("%q is not a valid %s value", value, kind)).
		WithCode(errors.CodeInvalidValue)
}

// parseScalar reads a multiplier or divisor such as "2", "0.5" or "1/3".
func parseScalar(value string) (*big.Rat, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(value))
	if !ok {
		return nil, errors.NewValidationError(fmt.Sprintf("%q is not a number", value)).
			WithCode(errors.CodeInvalidValue)
	}
	return r, nil
}

// ConvertRequest is the body of POST /timecode and /timecode/rebase.
type ConvertRequest struct {
	Value   string    `json:"value"`
	Kind    string    `json:"kind,omitempty"`
	Rate    RateParam `json:"rate"`
	NewRate RateParam `json:"new_rate,omitempty"`
}

// CalcRequest is the body of POST /timecode/calc.
type CalcRequest struct {
	A    string    `json:"a"`
	B    string    `json:"b,omitempty"`
	Op   string    `json:"op"`
	Kind string    `json:"kind,omitempty"`
	Rate RateParam `json:"rate"`
}

// RangeBounds is an in and out point pair.
type RangeBounds struct {
	In  string `json:"in"`
	Out string `json:"out"`
}

// RangeRequest is the body of POST /range.
type RangeRequest struct {
	RangeBounds
	Rate  RateParam    `json:"rate"`
	Point string       `json:"point,omitempty"`
	Other *RangeBounds `json:"other,omitempty"`
}
