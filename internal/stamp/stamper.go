package stamp

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"

	"github.com/zsiec/vtc/pkg/vtc"
)

const secondsPerDay = 86400

// ErrNoSenderReport is returned by StampTimeOfDay until an RTCP sender report
// has anchored the stream to wall time.
var ErrNoSenderReport = errors.New("no sender report received")

// Stamper maps the RTP timestamps of a single stream onto timecode.
//
// The first packet seen is stamped with the start timecode. Later packets are
// offset from it by their distance in clock ticks, with 32-bit timestamp
// wraparound extended into a 64-bit timeline.
type Stamper struct {
	clockRate uint32
	rate      vtc.Framerate
	start     vtc.Timecode

	mu          sync.Mutex
	initialized bool
	ssrc        uint32
	baseExt     int64
	lastRTP     uint32
	lastExt     int64
	wraps       int

	// RTCP sender report anchor. anchorExt is only meaningful once a packet
	// has fixed the extended timeline.
	anchored  bool
	anchorRTP uint32
	anchorExt int64
	anchorTOD *big.Rat
}

// NewStamper creates a stamper for a stream sampled at clockRate ticks per
// second. Timecodes are produced at the rate of start.
func NewStamper(clockRate uint32, start vtc.Timecode) (*Stamper, error) {
	if clockRate == 0 {
		return nil, fmt.Errorf("clock rate must be positive")
	}
	if start.Rate().IsZero() {
		return nil, fmt.Errorf("start timecode is unset")
	}

	return &Stamper{
		clockRate: clockRate,
		rate:      start.Rate(),
		start:     start,
	}, nil
}

// Rate returns the framerate timecodes are produced at.
func (s *Stamper) Rate() vtc.Framerate {
	return s.rate
}

// Wraps returns the number of 32-bit timestamp wraparounds seen so far.
func (s *Stamper) Wraps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wraps
}

// SSRC returns the synchronization source of the stream, once a packet has
// been stamped.
func (s *Stamper) SSRC() (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ssrc, s.initialized
}

// peekExtend places ts on the extended timeline without moving it forward.
// Timestamps within half the 32-bit space of the last one are treated as
// nearby, so a late packet from before a wrap lands in the previous cycle.
func (s *Stamper) peekExtend(ts uint32) int64 {
	if !s.initialized {
		return int64(ts)
	}
	return s.lastExt + int64(int32(ts-s.lastRTP))
}

// extend places ts on the extended timeline and advances it.
func (s *Stamper) extend(ts uint32) int64 {
	if !s.initialized {
		s.initialized = true
		s.baseExt = int64(ts)
		s.lastExt = int64(ts)
		s.lastRTP = ts
		if s.anchored {
			s.anchorExt = s.peekExtend(s.anchorRTP)
		}
		return s.lastExt
	}

	ext := s.peekExtend(ts)
	if ext > s.lastExt {
		if ext>>32 > s.lastExt>>32 {
			s.wraps++
		}
		s.lastExt = ext
		s.lastRTP = ts
	}
	return ext
}

// ticksToTimecode converts a signed tick offset to a timecode at the stream rate.
func (s *Stamper) ticksToTimecode(ticks int64) (vtc.Timecode, error) {
	return vtc.FromSeconds(big.NewRat(ticks, int64(s.clockRate)), s.rate)
}

// StampPacket returns the timecode of pkt relative to the first packet of the
// stream.
func (s *Stamper) StampPacket(pkt *rtp.Packet) (vtc.Timecode, error) {
	if pkt == nil {
		return vtc.Timecode{}, fmt.Errorf("nil packet")
	}

	s.mu.Lock()
	if !s.initialized {
		s.ssrc = pkt.SSRC
	}
	ticks := s.extend(pkt.Timestamp) - s.baseExt
	s.mu.Unlock()

	offset, err := s.ticksToTimecode(ticks)
	if err != nil {
		return vtc.Timecode{}, err
	}
	return s.start.Add(offset), nil
}

// ProcessRTCP parses a compound RTCP packet and anchors the stream to wall
// time from any sender report it carries for this stream.
func (s *Stamper) ProcessRTCP(data []byte) error {
	packets, err := rtcp.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("failed to parse RTCP: %w", err)
	}

	for _, p := range packets {
		if sr, ok := p.(*rtcp.SenderReport); ok {
			s.AnchorSenderReport(sr)
		}
	}
	return nil
}

// AnchorSenderReport records the NTP to RTP mapping carried by sr. Reports
// for another synchronization source are ignored once the stream's own is
// known. A report that arrives before any packet is placed on the extended
// timeline relative to the first packet.
func (s *Stamper) AnchorSenderReport(sr *rtcp.SenderReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized && sr.SSRC != s.ssrc {
		return
	}

	s.anchored = true
	s.anchorRTP = sr.RTPTime
	s.anchorExt = s.peekExtend(sr.RTPTime)
	s.anchorTOD = ntpTimeOfDay(sr.NTPTime)
}

// anchorOffset returns the ticks from the sender report anchor to ts.
func (s *Stamper) anchorOffset(ts uint32) int64 {
	if !s.initialized {
		return int64(int32(ts - s.anchorRTP))
	}
	return s.peekExtend(ts) - s.anchorExt
}

// StampTimeOfDay returns the wall clock time of day pkt was sampled at, as
// timecode. It needs a sender report first.
func (s *Stamper) StampTimeOfDay(pkt *rtp.Packet) (vtc.Timecode, error) {
	if pkt == nil {
		return vtc.Timecode{}, fmt.Errorf("nil packet")
	}

	s.mu.Lock()
	if !s.anchored {
		s.mu.Unlock()
		return vtc.Timecode{}, ErrNoSenderReport
	}
	ticks := s.anchorOffset(pkt.Timestamp)
	seconds := new(big.Rat).Add(s.anchorTOD, big.NewRat(ticks, int64(s.clockRate)))
	s.mu.Unlock()

	return vtc.FromSeconds(wrapDay(seconds), s.rate)
}

// ntpTimeOfDay returns the seconds since midnight UTC of a 64-bit NTP timestamp.
// The NTP epoch falls on a midnight.
func ntpTimeOfDay(ntp uint64) *big.Rat {
	sec := int64(ntp>>32) % secondsPerDay
	frac := big.NewRat(int64(ntp&0xffffffff), 1<<32)
	return frac.Add(frac, big.NewRat(sec, 1))
}

// wrapDay reduces seconds into [0, 86400).
func wrapDay(seconds *big.Rat) *big.Rat {
	day := new(big.Int).Mul(seconds.Denom(), big.NewInt(secondsPerDay))
	days := new(big.Int).Div(seconds.Num(), day)
	if days.Sign() == 0 {
		return seconds
	}
	days.Mul(days, big.NewInt(secondsPerDay))
	return new(big.Rat).Sub(seconds, new(big.Rat).SetInt(days))
}
