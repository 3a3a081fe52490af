package util

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDedupKey(t *testing.T) {
	assert.Equal(t, "dedup:create_routine:abc", DedupKey("create_routine", "abc"))
}

func TestAcquireOnceFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	d := NewDeduper(rdb, time.Minute, zap.New(core))

	assert.True(t, d.AcquireOnce(context.Background(), "create_routine", "k"))
	assert.True(t, d.AcquireOnce(context.Background(), "create_routine", "k"))
	assert.Equal(t, 2, logs.FilterMessage("Redis dedup check failed, allowing request").Len())
}
