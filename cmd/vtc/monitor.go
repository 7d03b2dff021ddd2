package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/zsiec/vtc/internal/config"
	"github.com/zsiec/vtc/internal/logger"
	"github.com/zsiec/vtc/internal/stamp"
)

func runMonitor(args []string, stdout, stderr io.Writer) error {
	cfg := config.StampConfig{BufferSize: 1500}
	var logLevel string

	fs := newFlagSet("monitor", stderr)
	fs.StringVar(&cfg.ListenAddr, "listen", ":5004", "UDP address to receive RTP on")
	fs.StringVar(&cfg.Rate, "rate", "29.97df", "Timecode framerate")
	fs.StringVar(&cfg.StartTimecode, "start", "00:00:00;00", "Timecode of the first packet of each stream")
	clockRate := fs.Uint("clock-rate", 90000, "RTP clock rate in Hz")
	fs.StringVar(&logLevel, "log-level", "info", "Log level")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.ClockRate = uint32(*clockRate)

	log, err := logger.New(&config.LoggingConfig{Level: logLevel, Format: "text", Output: "stderr"})
	if err != nil {
		return err
	}

	monitor, err := stamp.NewMonitor(&cfg, log)
	if err != nil {
		return err
	}
	monitor.OnStamp(func(s stamp.Stamp) {
		fmt.Fprintln(stdout, formatStamp(s))
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return monitor.Run(ctx)
}

func formatStamp(s stamp.Stamp) string {
	line := fmt.Sprintf("ssrc=0x%08x seq=%-5d rtp=%-10d %s", s.SSRC, s.Sequence, s.RTPTime, s.Timecode.Timecode())
	if s.TimeOfDay != nil {
		line += " tod=" + s.TimeOfDay.Timecode()
	}
	return line
}
