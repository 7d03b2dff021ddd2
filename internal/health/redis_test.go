package health

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisChecker(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	checker := NewRedisChecker(client)
	assert.Equal(t, "redis", checker.Name())
	assert.NoError(t, checker.Check(context.Background()))

	mr.Close()
	err = checker.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}

func TestTimecodeChecker(t *testing.T) {
	checker := NewTimecodeChecker()
	assert.Equal(t, "timecode", checker.Name())
	assert.NoError(t, checker.Check(context.Background()))

	broken := &TimecodeChecker{rate: checker.rate, text: "00:10:00;00", frames: 18000}
	err := broken.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected frame 18000, got 17982")
}

func TestMemoryChecker(t *testing.T) {
	assert.Equal(t, "memory", NewMemoryChecker(0).Name())
	assert.NoError(t, NewMemoryChecker(0).Check(context.Background()))
	assert.NoError(t, NewMemoryChecker(1<<40).Check(context.Background()))

	err := NewMemoryChecker(1).Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")
}
