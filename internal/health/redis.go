package health

import (
	"context"
	"fmt"
	"runtime"

	"github.com/redis/go-redis/v9"

	"github.com/zsiec/vtc/pkg/vtc"
)

// RedisChecker checks Redis connectivity.
type RedisChecker struct {
	client redis.UniversalClient
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{client: client}
}

// Name returns the name of the checker.
func (r *RedisChecker) Name() string {
	return "redis"
}

// Check pings Redis.
func (r *RedisChecker) Check(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// TimecodeChecker runs a drop-frame round trip through the timecode engine.
type TimecodeChecker struct {
	rate   vtc.Framerate
	text   string
	frames int64
}

// NewTimecodeChecker creates a checker that expects ten minutes of 29.97 DF
// to be 17982 frames and to format back to the same string.
func NewTimecodeChecker() *TimecodeChecker {
	return &TimecodeChecker{
		rate:   vtc.F29_97_DF,
		text:   "00:10:00;00",
		frames: 17982,
	}
}

// Name returns the name of the checker.
func (c *TimecodeChecker) Name() string {
	return "timecode"
}

// Check performs the round trip.
func (c *TimecodeChecker) Check(ctx context.Context) error {
	tc, err := vtc.Parse(c.text, c.rate)
	if err != nil {
		return fmt.Errorf("parse %q: %w", c.text, err)
	}
	if got := tc.Frames(); got != c.frames {
		return fmt.Errorf("parse %q: expected frame %d, got %d", c.text, c.frames, got)
	}

	back, err := vtc.FromFrames(c.frames, c.rate)
	if err != nil {
		return fmt.Errorf("frames %d: %w", c.frames, err)
	}
	if got := back.Timecode(); got != c.text {
		return fmt.Errorf("frames %d: expected %q, got %q", c.frames, c.text, got)
	}
	return nil
}

// MemoryChecker fails when the Go heap grows past a limit.
type MemoryChecker struct {
	limitBytes uint64
}

// NewMemoryChecker creates a new memory checker. A zero limit never fails.
func NewMemoryChecker(limitBytes uint64) *MemoryChecker {
	return &MemoryChecker{limitBytes: limitBytes}
}

// Name returns the name of the checker.
func (m *MemoryChecker) Name() string {
	return "memory"
}

// Check compares the current heap allocation with the limit.
func (m *MemoryChecker) Check(ctx context.Context) error {
	if m.limitBytes == 0 {
		return nil
	}

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	if stats.HeapAlloc > m.limitBytes {
		return fmt.Errorf("heap allocation %d bytes exceeds limit of %d bytes", stats.HeapAlloc, m.limitBytes)
	}
	return nil
}
