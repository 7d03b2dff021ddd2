package stamp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/zsiec/vtc/internal/config"
	"github.com/zsiec/vtc/internal/logger"
	"github.com/zsiec/vtc/internal/metrics"
	"github.com/zsiec/vtc/pkg/vtc"
)

// Stamp is the timecode assigned to one RTP packet.
type Stamp struct {
	SSRC     uint32
	Sequence uint16
	RTPTime  uint32
	Timecode vtc.Timecode
	// TimeOfDay is nil until the stream has sent an RTCP sender report.
	TimeOfDay *vtc.Timecode
}

// Monitor listens for RTP on a UDP socket and stamps every packet with
// timecode, keeping one Stamper per synchronization source.
type Monitor struct {
	cfg    *config.StampConfig
	start  vtc.Timecode
	logger *logrus.Logger

	mu      sync.Mutex
	streams map[uint32]*Stamper
	onStamp func(Stamp)

	sample rate.Sometimes
}

// NewMonitor creates a monitor from the stamp configuration.
func NewMonitor(cfg *config.StampConfig, log *logrus.Logger) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stamp config: %w", err)
	}
	start, err := cfg.Start()
	if err != nil {
		return nil, err
	}

	return &Monitor{
		cfg:     cfg,
		start:   start,
		logger:  log,
		streams: make(map[uint32]*Stamper),
		sample:  rate.Sometimes{First: 1, Interval: time.Second},
	}, nil
}

// OnStamp registers a callback invoked for every stamped packet.
func (m *Monitor) OnStamp(fn func(Stamp)) {
	m.mu.Lock()
	m.onStamp = fn
	m.mu.Unlock()
}

// Stamper returns the stamper tracking ssrc, if the stream has been seen.
func (m *Monitor) Stamper(ssrc uint32) (*Stamper, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.streams[ssrc]
	return s, ok
}

// StreamCount returns the number of streams seen so far.
func (m *Monitor) StreamCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.streams)
}

func (m *Monitor) stamper(ssrc uint32) (*Stamper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.streams[ssrc]; ok {
		return s, nil
	}

	s, err := NewStamper(m.cfg.ClockRate, m.start)
	if err != nil {
		return nil, err
	}
	m.streams[ssrc] = s

	logger.WithStream(m.logger, ssrc).WithFields(logrus.Fields{
		"rate":       s.Rate().String(),
		"clock_rate": m.cfg.ClockRate,
		"start":      m.start.Timecode(),
	}).Info("New RTP stream")
	return s, nil
}

// Run listens on the configured address until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	conn, err := net.ListenPacket("udp", m.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", m.cfg.ListenAddr, err)
	}
	defer conn.Close()

	logger.WithComponent(m.logger, "stamp").WithField("addr", conn.LocalAddr().String()).Info("Timecode monitor listening")
	return m.Serve(ctx, conn)
}

// Serve reads datagrams from conn until ctx is cancelled. The caller owns conn.
func (m *Monitor) Serve(ctx context.Context, conn net.PacketConn) error {
	buf := make([]byte, m.cfg.BufferSize)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		conn.SetReadDeadline(time.Now().Add(time.Second))

		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to read datagram: %w", err)
		}

		if _, err := m.HandleDatagram(buf[:n]); err != nil {
			m.logger.WithError(err).WithField("remote_addr", addr.String()).Debug("Dropped datagram")
		}
	}
}

// isRTCP reports whether data carries an RTCP packet type (RFC 5761).
func isRTCP(data []byte) bool {
	return len(data) >= 2 && data[1] >= 192 && data[1] <= 223
}

// HandleDatagram stamps one RTP packet or applies one compound RTCP packet.
// RTCP yields a nil Stamp.
func (m *Monitor) HandleDatagram(data []byte) (*Stamp, error) {
	if isRTCP(data) {
		return nil, m.handleRTCP(data)
	}

	pkt := &rtp.Packet{}
	if err := pkt.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("failed to parse RTP packet: %w", err)
	}

	s, err := m.stamper(pkt.SSRC)
	if err != nil {
		return nil, err
	}

	wraps := s.Wraps()
	tc, err := s.StampPacket(pkt)
	if err != nil {
		return nil, err
	}
	if s.Wraps() > wraps {
		metrics.IncrementStampWraps(pkt.SSRC)
		logger.WithStream(m.logger, pkt.SSRC).WithField("wraps", s.Wraps()).Info("RTP timestamp wrapped")
	}

	stamp := &Stamp{
		SSRC:     pkt.SSRC,
		Sequence: pkt.SequenceNumber,
		RTPTime:  pkt.Timestamp,
		Timecode: tc,
	}
	if tod, err := s.StampTimeOfDay(pkt); err == nil {
		stamp.TimeOfDay = &tod
	}

	metrics.RecordStampedPacket(pkt.SSRC, tc.Frames())

	m.sample.Do(func() {
		entry := logger.WithStream(m.logger, pkt.SSRC).WithFields(logrus.Fields{
			"sequence": pkt.SequenceNumber,
			"rtp_time": pkt.Timestamp,
			"timecode": tc.Timecode(),
		})
		if stamp.TimeOfDay != nil {
			entry = entry.WithField("time_of_day", stamp.TimeOfDay.Timecode())
		}
		entry.Debug("Stamped packet")
	})

	m.mu.Lock()
	fn := m.onStamp
	m.mu.Unlock()
	if fn != nil {
		fn(*stamp)
	}
	return stamp, nil
}

func (m *Monitor) handleRTCP(data []byte) error {
	packets, err := rtcp.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("failed to parse RTCP: %w", err)
	}

	for _, p := range packets {
		sr, ok := p.(*rtcp.SenderReport)
		if !ok {
			continue
		}
		s, err := m.stamper(sr.SSRC)
		if err != nil {
			return err
		}
		s.AnchorSenderReport(sr)
		logger.WithStream(m.logger, sr.SSRC).WithField("rtp_time", sr.RTPTime).Debug("Anchored stream to sender report")
	}
	return nil
}
