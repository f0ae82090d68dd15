package utils

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeySetNoDuplicates(t *testing.T) {
	s := NewKeySet()

	assert.True(t, s.Add("https://www.bayut.com/property/1"), "first Add should return true")
	assert.False(t, s.Add("https://www.bayut.com/property/1"), "second Add of same key should return false")
	assert.True(t, s.Contains("https://www.bayut.com/property/1"))
	assert.False(t, s.Contains("https://www.bayut.com/property/2"))
	assert.Equal(t, 1, s.Size())
}

func TestKeySetConcurrency(t *testing.T) {
	s := NewKeySet()
	var added int64

	pool := NewWorkerPool(10, 0)
	for i := 0; i < 100; i++ {
		pool.Submit(func() {
			if s.Add("BAY-01-001") {
				atomic.AddInt64(&added, 1)
			}
		})
	}
	pool.Wait()

	assert.Equal(t, int64(1), added, "expected exactly 1 successful add")
}

func TestWorkerPoolRateLimit(t *testing.T) {
	rateLimitMs := 100
	pool := NewWorkerPool(1, rateLimitMs)

	var mu sync.Mutex
	var timestamps []time.Time

	for i := 0; i < 3; i++ {
		pool.Submit(func() {
			mu.Lock()
			timestamps = append(timestamps, time.Now())
			mu.Unlock()
		})
	}
	pool.Wait()

	assert.Len(t, timestamps, 3)
	minGap := time.Duration(rateLimitMs)*time.Millisecond - 10*time.Millisecond
	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		assert.GreaterOrEqual(t, gap, minGap, "gap between job %d and %d", i-1, i)
	}
}

func TestWorkerPoolSkipsCancelledJobs(t *testing.T) {
	pool := NewWorkerPool(1, 10_000)
	ctx, cancel := context.WithCancel(context.Background())

	var ran int64
	pool.SubmitContext(ctx, func() { atomic.AddInt64(&ran, 1) })
	pool.Wait()
	cancel()
	pool.SubmitContext(ctx, func() { atomic.AddInt64(&ran, 1) })
	pool.Wait()

	assert.Equal(t, int64(1), ran)
}
