package calc

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/zsiec/vtc/pkg/vtc"
)

// Operators accepted between two operands. + and - take a timecode, the rest
// take a rational scalar such as 2, 1.5 or 3/2.
var operators = map[string]bool{
	"+":  true,
	"-":  true,
	"*":  true,
	"/":  true,
	"//": true,
	"%":  true,
}

// Evaluate runs one calculator line against the running value acc.
//
//	01:00:00:00            replace the running value
//	+ 00:00:10:00          apply an operator to the running value
//	01:00:00:00 * 2        evaluate a fresh expression
//	neg, abs               unary operations on the running value
func Evaluate(acc vtc.Timecode, line string, rate vtc.Framerate) (vtc.Timecode, error) {
	fields := strings.Fields(line)

	switch len(fields) {
	case 0:
		return acc, nil
	case 1:
		switch strings.ToLower(fields[0]) {
		case "neg":
			return acc.Neg(), nil
		case "abs":
			return acc.Abs(), nil
		}
		return vtc.Parse(fields[0], rate)
	case 2:
		return apply(acc, fields[0], fields[1], rate)
	case 3:
		left, err := vtc.Parse(fields[0], rate)
		if err != nil {
			return vtc.Timecode{}, err
		}
		return apply(left, fields[1], fields[2], rate)
	default:
		return vtc.Timecode{}, fmt.Errorf("expected at most 3 terms, got %d", len(fields))
	}
}

func apply(left vtc.Timecode, op, operand string, rate vtc.Framerate) (vtc.Timecode, error) {
	if !operators[op] {
		return vtc.Timecode{}, fmt.Errorf("unknown operator %q", op)
	}

	if op == "+" || op == "-" {
		right, err := vtc.Parse(operand, rate)
		if err != nil {
			return vtc.Timecode{}, err
		}
		if op == "+" {
			return left.Add(right), nil
		}
		return left.Sub(right), nil
	}

	x, ok := new(big.Rat).SetString(operand)
	if !ok {
		return vtc.Timecode{}, fmt.Errorf("invalid scalar %q", operand)
	}

	switch op {
	case "*":
		return left.Mul(x), nil
	case "/":
		return left.Div(x)
	case "//":
		return left.FloorDiv(x)
	default:
		return left.Mod(x)
	}
}
