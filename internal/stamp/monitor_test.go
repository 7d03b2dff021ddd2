package stamp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/vtc/internal/config"
	"github.com/zsiec/vtc/internal/logger"
)

func testStampConfig() *config.StampConfig {
	return &config.StampConfig{
		ListenAddr:    "127.0.0.1:0",
		ClockRate:     90000,
		Rate:          "24",
		StartTimecode: "10:00:00:00",
		BufferSize:    1500,
	}
}

func newTestMonitor(t *testing.T) *Monitor {
	t.Helper()
	m, err := NewMonitor(testStampConfig(), logger.NewDiscard())
	require.NoError(t, err)
	return m
}

func marshalRTP(t *testing.T, ssrc uint32, seq uint16, ts uint32) []byte {
	t.Helper()
	pkt := &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    96,
			SequenceNumber: seq,
			Timestamp:      ts,
			SSRC:           ssrc,
		},
		Payload: []byte{0xde, 0xad, 0xbe, 0xef},
	}
	data, err := pkt.Marshal()
	require.NoError(t, err)
	return data
}

func marshalSR(t *testing.T, ssrc uint32, ntp uint64, ts uint32) []byte {
	t.Helper()
	data, err := rtcp.Marshal([]rtcp.Packet{
		&rtcp.SenderReport{SSRC: ssrc, NTPTime: ntp, RTPTime: ts, PacketCount: 1, OctetCount: 4},
	})
	require.NoError(t, err)
	return data
}

func TestNewMonitor(t *testing.T) {
	_, err := NewMonitor(testStampConfig(), logger.NewDiscard())
	require.NoError(t, err)

	bad := testStampConfig()
	bad.Rate = "24df"
	_, err = NewMonitor(bad, logger.NewDiscard())
	assert.Error(t, err)

	noClock := testStampConfig()
	noClock.ClockRate = 0
	_, err = NewMonitor(noClock, logger.NewDiscard())
	assert.Error(t, err)
}

func TestIsRTCP(t *testing.T) {
	assert.True(t, isRTCP([]byte{0x80, 200}))
	assert.True(t, isRTCP([]byte{0x80, 201, 0, 1}))
	assert.False(t, isRTCP([]byte{0x80, 96}))
	assert.False(t, isRTCP([]byte{0x80, 0x80 | 96}), "marker bit set on a dynamic payload type")
	assert.False(t, isRTCP([]byte{0x80}))
}

func TestHandleDatagram(t *testing.T) {
	m := newTestMonitor(t)

	first, err := m.HandleDatagram(marshalRTP(t, 0xaaaa, 1, 5000))
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, uint32(0xaaaa), first.SSRC)
	assert.Equal(t, uint16(1), first.Sequence)
	assert.Equal(t, uint32(5000), first.RTPTime)
	assert.Equal(t, "10:00:00:00", first.Timecode.Timecode())
	assert.Nil(t, first.TimeOfDay)

	next, err := m.HandleDatagram(marshalRTP(t, 0xaaaa, 2, 5000+90000))
	require.NoError(t, err)
	assert.Equal(t, "10:00:01:00", next.Timecode.Timecode())

	t.Run("streams are independent", func(t *testing.T) {
		other, err := m.HandleDatagram(marshalRTP(t, 0xbbbb, 1, 1<<31))
		require.NoError(t, err)
		assert.Equal(t, "10:00:00:00", other.Timecode.Timecode())
		assert.Equal(t, 2, m.StreamCount())
	})

	t.Run("sender report enables time of day", func(t *testing.T) {
		stamp, err := m.HandleDatagram(marshalSR(t, 0xaaaa, ntpTime(12*3600, 0), 5000+90000))
		require.NoError(t, err)
		assert.Nil(t, stamp)

		stamp, err = m.HandleDatagram(marshalRTP(t, 0xaaaa, 3, 5000+2*90000))
		require.NoError(t, err)
		assert.Equal(t, "10:00:02:00", stamp.Timecode.Timecode())
		require.NotNil(t, stamp.TimeOfDay)
		assert.Equal(t, "12:00:01:00", stamp.TimeOfDay.Timecode())
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.HandleDatagram([]byte{0x80})
		assert.Error(t, err)

		_, err = m.HandleDatagram([]byte{0x80, 200, 0xff})
		assert.Error(t, err)
	})
}

func TestHandleDatagramWrap(t *testing.T) {
	m := newTestMonitor(t)

	_, err := m.HandleDatagram(marshalRTP(t, 1, 1, 1<<32-3750))
	require.NoError(t, err)
	stamp, err := m.HandleDatagram(marshalRTP(t, 1, 2, 0))
	require.NoError(t, err)
	assert.Equal(t, "10:00:00:01", stamp.Timecode.Timecode())

	s, ok := m.Stamper(1)
	require.True(t, ok)
	assert.Equal(t, 1, s.Wraps())
}

func TestSenderReportBeforeMedia(t *testing.T) {
	m := newTestMonitor(t)

	_, err := m.HandleDatagram(marshalSR(t, 9, ntpTime(3600, 0), 0))
	require.NoError(t, err)
	assert.Equal(t, 1, m.StreamCount())

	stamp, err := m.HandleDatagram(marshalRTP(t, 9, 1, 45000))
	require.NoError(t, err)
	assert.Equal(t, "10:00:00:00", stamp.Timecode.Timecode())
	require.NotNil(t, stamp.TimeOfDay)
	assert.Equal(t, "01:00:00:12", stamp.TimeOfDay.Timecode())
}

func TestServe(t *testing.T) {
	m := newTestMonitor(t)

	stamps := make(chan Stamp, 4)
	m.OnStamp(func(s Stamp) { stamps <- s })

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, conn) }()

	client, err := net.Dial("udp", conn.LocalAddr().String())
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Write(marshalRTP(t, 42, 1, 0))
	require.NoError(t, err)
	_, err = client.Write(marshalRTP(t, 42, 2, 3750))
	require.NoError(t, err)

	var got []string
	for len(got) < 2 {
		select {
		case s := <-stamps:
			got = append(got, s.Timecode.Timecode())
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for stamps")
		}
	}
	assert.Equal(t, []string{"10:00:00:00", "10:00:00:01"}, got)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestRunCancelled(t *testing.T) {
	m := newTestMonitor(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, m.Run(ctx))

	busy, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := testStampConfig()
	cfg.ListenAddr = busy.LocalAddr().String()
	clash, err := NewMonitor(cfg, logger.NewDiscard())
	require.NoError(t, err)
	assert.Error(t, clash.Run(context.Background()))
}
