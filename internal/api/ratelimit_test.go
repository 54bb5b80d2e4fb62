package api_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"acidbase/internal/api"
)

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := api.NewRateLimiter(3, time.Minute)
	l.SetClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		ok, _ := l.Allow("10.0.0.1")
		assert.True(t, ok, "request %d", i)
	}
	ok, wait := l.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.InDelta(t, 20*time.Second, wait, float64(time.Second))

	ok, _ = l.Allow("10.0.0.2")
	assert.True(t, ok, "clients are limited independently")

	now = now.Add(20 * time.Second)
	ok, _ = l.Allow("10.0.0.1")
	assert.True(t, ok, "one token refilled")

	now = now.Add(2 * time.Minute)
	_, _ = l.Allow("10.0.0.3")
	assert.Equal(t, 1, l.Len(), "idle clients are swept")
}
