package rate_limiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedEnforcesLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.IsAllowed("client-a"), "attempt %d should pass", i+1)
	}
	assert.False(t, rl.IsAllowed("client-a"))
}

func TestKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	assert.True(t, rl.IsAllowed("client-a"))
	assert.False(t, rl.IsAllowed("client-a"))
	assert.True(t, rl.IsAllowed("client-b"))
}

func TestWindowSlides(t *testing.T) {
	rl := NewRateLimiter(2, 50*time.Millisecond)

	assert.True(t, rl.IsAllowed("client-a"))
	assert.True(t, rl.IsAllowed("client-a"))
	assert.False(t, rl.IsAllowed("client-a"))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.IsAllowed("client-a"))
}

func TestGetRemainingRequests(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)

	assert.Equal(t, 5, rl.GetRemainingRequests("client-a"))

	rl.IsAllowed("client-a")
	rl.IsAllowed("client-a")
	assert.Equal(t, 3, rl.GetRemainingRequests("client-a"))
}
