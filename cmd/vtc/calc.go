package main

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zsiec/vtc/internal/calc"
	"github.com/zsiec/vtc/pkg/vtc"
)

func runCalc(args []string, stderr io.Writer) error {
	fs := newFlagSet("calc", stderr)
	rateName := fs.String("rate", "23.98", "Starting framerate")
	precision := fs.Int("precision", 3, "Runtime fractional digits")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *precision < 0 || *precision > vtc.DefaultRuntimePrecision {
		*precision = vtc.DefaultRuntimePrecision
	}

	model, err := calc.NewModel(*rateName, *precision)
	if err != nil {
		return err
	}

	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
