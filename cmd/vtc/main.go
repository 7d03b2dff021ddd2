package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/zsiec/vtc/pkg/version"
)

const usage = `Usage: vtc <command> [flags]

Commands:
  convert   print every representation of a timecode value
  calc      interactive timecode calculator
  monitor   stamp incoming RTP packets with timecode
  query     convert a value on a running vtc-server over HTTP/3
  version   show version information

Run 'vtc <command> -h' for command flags.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "convert":
		err = runConvert(args[1:], stdout, stderr)
	case "calc":
		err = runCalc(args[1:], stderr)
	case "monitor":
		err = runMonitor(args[1:], stdout, stderr)
	case "query":
		err = runQuery(args[1:], stdout, stderr)
	case "version", "-version", "--version":
		fmt.Fprintln(stdout, version.GetInfo().String())
		return 0
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	if err == flag.ErrHelp {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "vtc %s: %v\n", args[0], err)
		return 1
	}
	return 0
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("vtc "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}
