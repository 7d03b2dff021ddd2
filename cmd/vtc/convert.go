package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/zsiec/vtc/internal/api"
	"github.com/zsiec/vtc/pkg/vtc"
)

func runConvert(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("convert", stderr)
	rateName := fs.String("rate", "23.98", "Framerate, e.g. 23.98, 29.97df or 24000/1001")
	kind := fs.String("kind", api.KindText, "Value kind: text, frames, seconds, rational or ticks")
	precision := fs.Int("precision", vtc.DefaultRuntimePrecision, "Runtime fractional digits")
	rebase := fs.String("rebase", "", "Also show the same frame number at this rate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one value, got %d", fs.NArg())
	}

	rate, err := vtc.ParseRate(*rateName)
	if err != nil {
		return err
	}
	src, err := api.SourceFor(*kind, fs.Arg(0))
	if err != nil {
		return err
	}
	tc, err := vtc.New(src, rate)
	if err != nil {
		return err
	}

	printTimecode(stdout, tc, *precision)

	if *rebase != "" {
		newRate, err := vtc.ParseRate(*rebase)
		if err != nil {
			return err
		}
		rebased, err := tc.Rebase(newRate)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout)
		printTimecode(stdout, rebased, *precision)
	}
	return nil
}

func printTimecode(w io.Writer, tc vtc.Timecode, precision int) {
	rows := [][2]string{
		{"Rate", tc.Rate().String()},
		{"Timecode", tc.Timecode()},
		{"Frames", tc.BigFrames().String()},
		{"Seconds", tc.Seconds().String()},
		{"Rational", tc.Rational().RatString()},
		{"Runtime", tc.Runtime(precision)},
		{"Feet+Frames", tc.FeetAndFrames()},
		{"Premiere Ticks", tc.BigPremiereTicks().String()},
	}

	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%-16s%s\n", r[0], r[1])
	}
	io.WriteString(w, b.String())
}
